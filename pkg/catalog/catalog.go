// Package catalog is the metadata source for the permission screen: which
// app is asking and which health permissions it declares.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sambigeara/healthperm/pkg/grants"
	"github.com/sambigeara/healthperm/pkg/types"
)

type App struct {
	PackageName  string `yaml:"packageName"`
	Name         string `yaml:"name"`
	RationaleURL string `yaml:"rationaleUrl,omitempty"`
}

// Title is the display name, falling back to the package name.
func (a App) Title() string {
	if a.Name != "" {
		return a.Name
	}
	return a.PackageName
}

// Entry is one declared permission. In YAML it is either a bare name
// ("READ_STEPS") or a mapping with explicit fields.
type Entry struct {
	ID       types.PermissionID `yaml:"id"`
	Access   string             `yaml:"access,omitempty"`
	Category string             `yaml:"category,omitempty"`
	Label    string             `yaml:"label,omitempty"`
}

func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		e.ID = types.PermissionIDFromName(value.Value)
		return nil
	}

	type plain Entry
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*e = Entry(p)
	e.ID = types.PermissionIDFromName(string(e.ID))
	return nil
}

type Catalog struct {
	App         App     `yaml:"app"`
	Permissions []Entry `yaml:"permissions"`
}

type Source interface {
	Fetch(ctx context.Context) (*Catalog, error)
}

type FileSource struct {
	Path string
}

func (s FileSource) Fetch(ctx context.Context) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

// Static serves a fixed catalog.
type Static struct {
	Catalog *Catalog
}

func (s Static) Fetch(ctx context.Context) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Catalog == nil {
		return &Catalog{}, nil
	}
	return s.Catalog, nil
}

func Parse(raw []byte) (*Catalog, error) {
	c := &Catalog{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return c, nil
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	if len(c.Permissions) > 0 && strings.TrimSpace(c.App.PackageName) == "" {
		return errors.New("catalog declares permissions without app.packageName")
	}
	seen := make(map[types.PermissionID]struct{}, len(c.Permissions))
	for i, e := range c.Permissions {
		if e.ID == "" {
			return fmt.Errorf("permissions[%d]: missing id", i)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("permissions[%d]: duplicate id %s", i, e.ID)
		}
		seen[e.ID] = struct{}{}
		if _, err := e.access(); err != nil {
			return fmt.Errorf("permissions[%d]: %w", i, err)
		}
	}
	return nil
}

func (e Entry) access() (types.AccessClass, error) {
	if e.Access != "" {
		return types.ParseAccessClass(e.Access)
	}
	if a := types.AccessFromName(e.ID); a != types.AccessUnspecified {
		return a, nil
	}
	return types.AccessUnspecified, fmt.Errorf("cannot infer access class for %s", e.ID)
}

func (e Entry) display() grants.DisplayKey {
	d := grants.DisplayKey{Category: e.Category, Label: e.Label}

	short := e.ID.Short()
	short = strings.TrimPrefix(strings.TrimPrefix(short, "READ_"), "WRITE_")
	ht, known := healthTypes[short]
	if d.Category == "" {
		d.Category = CategoryOther
		if known {
			d.Category = ht.category
		}
	}
	if d.Label == "" {
		d.Label = short
		if known {
			d.Label = ht.label
		}
	}
	return d
}

// Items builds the store's list in declaration order. granted reports the
// initial state of each permission.
func (c *Catalog) Items(granted func(types.PermissionID) bool) ([]grants.Item, error) {
	items := make([]grants.Item, 0, len(c.Permissions))
	for _, e := range c.Permissions {
		access, err := e.access()
		if err != nil {
			return nil, err
		}
		items = append(items, grants.Item{
			ID:      e.ID,
			Access:  access,
			Granted: granted != nil && granted(e.ID),
			Display: e.display(),
		})
	}
	return items, nil
}
