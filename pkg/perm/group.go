package perm

import (
	"os"
	"sync/atomic"
)

// DefaultGroup is the system group that may share the state directory.
const DefaultGroup = "healthperm"

const (
	dirMode      os.FileMode = 0o770
	readableMode os.FileMode = 0o640
	writableMode os.FileMode = 0o660
)

var group atomic.Pointer[string]

func init() {
	UseGroup(DefaultGroup)
}

// UseGroup changes the sharing group for subsequent calls. An empty name
// turns sharing off.
func UseGroup(name string) {
	group.Store(&name)
}

func Group() string {
	return *group.Load()
}
