package types

import (
	"fmt"
	"strings"
)

const healthPermissionPrefix = "android.permission.health."

type PermissionID string

// Short strips the platform prefix, leaving e.g. READ_STEPS.
func (id PermissionID) Short() string {
	return strings.TrimPrefix(string(id), healthPermissionPrefix)
}

func (id PermissionID) String() string {
	return string(id)
}

// PermissionIDFromName accepts either a fully qualified id or the short form.
func PermissionIDFromName(name string) PermissionID {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, ".") {
		return PermissionID(name)
	}
	return PermissionID(healthPermissionPrefix + strings.ToUpper(name))
}

type AccessClass int

const (
	AccessUnspecified AccessClass = iota
	AccessRead
	AccessWrite
)

func (a AccessClass) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return "unspecified"
	}
}

func ParseAccessClass(s string) (AccessClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "read":
		return AccessRead, nil
	case "write":
		return AccessWrite, nil
	default:
		return AccessUnspecified, fmt.Errorf("unknown access class %q", s)
	}
}

// AccessFromName infers the access class from a READ_/WRITE_ prefixed
// permission name.
func AccessFromName(id PermissionID) AccessClass {
	switch short := id.Short(); {
	case strings.HasPrefix(short, "READ_"):
		return AccessRead
	case strings.HasPrefix(short, "WRITE_"):
		return AccessWrite
	default:
		return AccessUnspecified
	}
}
