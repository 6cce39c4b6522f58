package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sambigeara/healthperm/pkg/perm"
)

const rootDir = ".healthperm"

// DefaultDir is ~/.healthperm.
func DefaultDir() (string, error) {
	base, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve user home dir: %w", err)
	}
	return filepath.Join(base, rootDir), nil
}

// EnsureDir creates dir if needed and opens it to the healthperm group.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("unable to create state dir: %w", err)
	}
	if err := perm.SetGroupDir(dir); err != nil {
		return fmt.Errorf("unable to set state dir permissions: %w", err)
	}
	return nil
}
