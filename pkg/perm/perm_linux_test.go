//go:build linux

package perm

import (
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const absentGroup = "healthperm-test-no-such-group"

var setters = []struct {
	name     string
	call     func(string) error
	wantMode os.FileMode
}{
	{"SetGroupDir", SetGroupDir, dirMode},
	{"SetGroupReadable", SetGroupReadable, readableMode},
	{"SetGroupWritable", SetGroupWritable, writableMode},
}

func withGroup(t *testing.T, name string) {
	t.Helper()
	prev := Group()
	UseGroup(name)
	t.Cleanup(func() { UseGroup(prev) })
}

func privateFile(t *testing.T) string {
	t.Helper()
	f := filepath.Join(t.TempDir(), "grants.yaml")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o600))
	return f
}

func assertMode(t *testing.T, path string, want os.FileMode) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, want, info.Mode().Perm())
}

func TestDefaultGroup(t *testing.T) {
	assert.Equal(t, DefaultGroup, Group())
}

func TestLookupAbsentGroup(t *testing.T) {
	_, ok, err := lookupGID(absentGroup)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNoOpWhenGroupAbsent(t *testing.T) {
	withGroup(t, absentGroup)
	f := privateFile(t)

	for _, s := range setters {
		require.NoError(t, s.call(f), s.name)
	}
	assertMode(t, f, 0o600)
}

func TestNoOpWhenSharingOff(t *testing.T) {
	withGroup(t, "")
	f := privateFile(t)

	require.NoError(t, SetGroupWritable(f))
	assertMode(t, f, 0o600)
}

func TestMissingPathReported(t *testing.T) {
	grp, err := user.LookupGroupId(strconv.Itoa(os.Getgid()))
	if err != nil {
		t.Skip("primary group has no name")
	}
	withGroup(t, grp.Name)

	require.Error(t, SetGroupWritable(filepath.Join(t.TempDir(), "missing")))
}

// The caller's primary group always exists and the caller may always chown
// to it, so it stands in for the sharing group.
func TestAppliedWithPrimaryGroup(t *testing.T) {
	gid := os.Getgid()
	grp, err := user.LookupGroupId(strconv.Itoa(gid))
	if err != nil {
		t.Skip("primary group has no name")
	}
	withGroup(t, grp.Name)

	dir := t.TempDir()
	for _, s := range setters {
		t.Run(s.name, func(t *testing.T) {
			p := filepath.Join(dir, s.name)
			require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
			require.NoError(t, s.call(p))
			require.NoError(t, s.call(p))

			assertMode(t, p, s.wantMode)
			info, err := os.Stat(p)
			require.NoError(t, err)
			stat := info.Sys().(*syscall.Stat_t) //nolint:forcetypeassert
			assert.Equal(t, gid, int(stat.Gid))
		})
	}
}
