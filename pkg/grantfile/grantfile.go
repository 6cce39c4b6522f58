// Package grantfile is the persistence collaborator: it records which
// permissions each app holds in a YAML file and commits changes made through
// the grants store.
package grantfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/sambigeara/healthperm/pkg/perm"
	"github.com/sambigeara/healthperm/pkg/types"
)

const (
	FileName      = "grants.yaml"
	directoryPerm = 0o700
	filePerm      = 0o600
)

type AppGrants struct {
	Granted []types.PermissionID `yaml:"granted"`
}

type File struct {
	Apps map[string]AppGrants `yaml:"apps,omitempty"`
}

func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("read grants: %w", err)
	}

	f := &File{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return f, nil
	}
	if err := yaml.Unmarshal(raw, f); err != nil {
		return nil, fmt.Errorf("unmarshal grants: %w", err)
	}
	return f, nil
}

func Save(path string, f *File) error {
	if f == nil {
		f = &File{}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, directoryPerm); err != nil {
		return fmt.Errorf("create grants directory: %w", err)
	}

	encoded, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal grants: %w", err)
	}

	if err := renameio.WriteFile(path, encoded, filePerm); err != nil {
		return fmt.Errorf("write grants: %w", err)
	}
	if err := perm.SetGroupWritable(path); err != nil {
		return fmt.Errorf("set grants permissions: %w", err)
	}
	return nil
}

// Granted returns a lookup for app's grants, suitable for catalog.Items.
func (f *File) Granted(app string) func(types.PermissionID) bool {
	set := make(map[types.PermissionID]struct{})
	if f != nil {
		for _, id := range f.Apps[app].Granted {
			set[id] = struct{}{}
		}
	}
	return func(id types.PermissionID) bool {
		_, ok := set[id]
		return ok
	}
}

// Set replaces app's grants. An app with no grants is removed.
func (f *File) Set(app string, ids []types.PermissionID) {
	if len(ids) == 0 {
		delete(f.Apps, app)
		return
	}
	if f.Apps == nil {
		f.Apps = make(map[string]AppGrants)
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	f.Apps[app] = AppGrants{Granted: slices.Compact(sorted)}
}
