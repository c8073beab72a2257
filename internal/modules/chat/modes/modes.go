package modes

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	Admission      Mode = "admission"
	StudentSupport Mode = "student-support"
	WebSearch      Mode = "web-search"
)

// Default is used when a request omits the mode.
const Default = Admission

// Config is the immutable per-mode reference data. Collection is the vector
// index backing the mode; it is empty for modes that never query an index.
type Config struct {
	ID           Mode
	Name         string
	Description  string
	Icon         string
	Collection   string
	SystemPrompt string
	Refusal      string
}

// RequiresIndex reports whether turns in this mode need a loaded vector index.
func (c Config) RequiresIndex() bool { return strings.TrimSpace(c.Collection) != "" }

type Catalog struct {
	byID  map[Mode]Config
	order []Mode
}

// NewCatalog returns the built-in three-mode catalog.
func NewCatalog() *Catalog {
	c := &Catalog{byID: map[Mode]Config{}}
	for _, cfg := range builtin() {
		c.byID[cfg.ID] = cfg
		c.order = append(c.order, cfg.ID)
	}
	return c
}

func (c *Catalog) Lookup(id string) (Config, bool) {
	cfg, ok := c.byID[Mode(strings.TrimSpace(id))]
	return cfg, ok
}

func (c *Catalog) All() []Config {
	out := make([]Config, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// IDs lists valid mode identifiers in catalog order.
func (c *Catalog) IDs() []string {
	out := make([]string, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, string(id))
	}
	return out
}

// Indexed lists the modes backed by a vector index.
func (c *Catalog) Indexed() []Config {
	var out []Config
	for _, cfg := range c.All() {
		if cfg.RequiresIndex() {
			out = append(out, cfg)
		}
	}
	return out
}

type overrideFile struct {
	Modes map[string]struct {
		Name        *string `yaml:"name"`
		Description *string `yaml:"description"`
		Icon        *string `yaml:"icon"`
		Collection  *string `yaml:"collection"`
	} `yaml:"modes"`
}

// LoadCatalog reads an optional YAML file overriding display fields and
// collection names. Unknown mode ids are rejected. An empty path yields the
// built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	c := NewCatalog()
	path = strings.TrimSpace(path)
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read modes config: %w", err)
	}
	var f overrideFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse modes config: %w", err)
	}
	ids := make([]string, 0, len(f.Modes))
	for id := range f.Modes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		cfg, ok := c.byID[Mode(id)]
		if !ok {
			return nil, fmt.Errorf("modes config: unknown mode %q (valid: %s)", id, strings.Join(c.IDs(), ", "))
		}
		o := f.Modes[id]
		if o.Name != nil {
			cfg.Name = *o.Name
		}
		if o.Description != nil {
			cfg.Description = *o.Description
		}
		if o.Icon != nil {
			cfg.Icon = *o.Icon
		}
		if o.Collection != nil && cfg.RequiresIndex() {
			cfg.Collection = strings.TrimSpace(*o.Collection)
			if cfg.Collection == "" {
				return nil, fmt.Errorf("modes config: %s requires a collection", id)
			}
		}
		c.byID[cfg.ID] = cfg
	}
	return c, nil
}
