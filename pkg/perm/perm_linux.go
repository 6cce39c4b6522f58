//go:build linux

package perm

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"strconv"
	"syscall"
)

func lookupGID(name string) (int, bool, error) {
	grp, err := user.LookupGroup(name)
	switch {
	case errors.As(err, new(user.UnknownGroupError)):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("lookup group %s: %w", name, err)
	}

	gid, err := strconv.Atoi(grp.Gid)
	if err != nil {
		return 0, false, fmt.Errorf("group %s has non-numeric gid %q: %w", name, grp.Gid, err)
	}
	return gid, true, nil
}

// share hands path to the sharing group with mode. Ownership and mode are
// only touched when they differ, so repeated saves of an already shared file
// need no privileges.
func share(path string, mode os.FileMode) error {
	name := Group()
	if name == "" {
		return nil
	}
	gid, ok, err := lookupGID(name)
	if err != nil || !ok {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if st, isStat := info.Sys().(*syscall.Stat_t); !isStat || int(st.Gid) != gid {
		// Only the owner or root may change the group; others keep the
		// file private and still get the mode below.
		if err := os.Chown(path, -1, gid); err != nil && !errors.Is(err, syscall.EPERM) {
			return fmt.Errorf("chown %s to group %s: %w", path, name, err)
		}
	}
	if info.Mode().Perm() != mode {
		if err := os.Chmod(path, mode); err != nil {
			return fmt.Errorf("chmod %s: %w", path, err)
		}
	}
	return nil
}

func SetGroupDir(path string) error { return share(path, dirMode) }

func SetGroupReadable(path string) error { return share(path, readableMode) }

func SetGroupWritable(path string) error { return share(path, writableMode) }
