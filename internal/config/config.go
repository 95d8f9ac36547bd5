package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/modresolve/internal/module"
)

// Config is one evaluation's declarative input: the configuration units with
// their manifest/workspace files, explicit module declarations, overrides,
// and the modules other build dependencies already provide.
type Config struct {
	Strictness string     `yaml:"strictness"`
	Units      []Unit     `yaml:"units"`
	External   []External `yaml:"external"`
}

// Unit is one configuration unit. At most one unit carries the root marker;
// without one the first unit is the privileged root.
type Unit struct {
	Name   string   `yaml:"name"`
	Root   bool     `yaml:"root"`
	GoMod  string   `yaml:"go_mod"`
	GoWork string   `yaml:"go_work"`
	GoSum  []string `yaml:"go_sum"`

	Modules []Module `yaml:"modules"`

	ArchiveOverrides   []ArchiveOverride   `yaml:"archive_overrides"`
	DirectiveOverrides []DirectiveOverride `yaml:"directive_overrides"`
	PatchOverrides     []PatchOverride     `yaml:"patch_overrides"`
}

// Module is an explicit module declaration, the non-file way to require a
// version.
type Module struct {
	Path     string `yaml:"path"`
	Version  string `yaml:"version"`
	Sum      string `yaml:"sum"`
	Indirect bool   `yaml:"indirect"`
	Dev      bool   `yaml:"dev"`
}

// External names a module some other build dependency already provides.
type External struct {
	Path    string `yaml:"path"`
	Version string `yaml:"version"`
}

// ArchiveOverride fetches a module from explicit archive URLs.
type ArchiveOverride struct {
	Path        string   `yaml:"path"`
	URLs        []string `yaml:"urls"`
	StripPrefix string   `yaml:"strip_prefix"`
	SHA256      string   `yaml:"sha256"`
	Patches     []string `yaml:"patches"`
}

// DirectiveOverride attaches build-file generation directives to a module.
type DirectiveOverride struct {
	Path                string   `yaml:"path"`
	Directives          []string `yaml:"directives"`
	BuildFileGeneration string   `yaml:"build_file_generation"`
}

// PatchOverride applies patches on top of a module's fetched source.
type PatchOverride struct {
	Path       string   `yaml:"path"`
	Patches    []string `yaml:"patches"`
	PatchStrip int      `yaml:"patch_strip"`
}

// Load reads and validates an evaluation config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := module.ParseStrictness(c.Strictness); err != nil {
		return err
	}
	if len(c.Units) == 0 {
		return fmt.Errorf("no units declared")
	}

	roots := 0
	seen := make(map[string]bool)
	for i, u := range c.Units {
		if u.Name == "" {
			return fmt.Errorf("unit %d has no name", i+1)
		}
		if seen[u.Name] {
			return fmt.Errorf("duplicate unit name %q", u.Name)
		}
		seen[u.Name] = true
		if u.Root {
			roots++
		}
		for _, m := range u.Modules {
			if m.Path == "" || m.Version == "" {
				return fmt.Errorf("unit %s: module declarations need both path and version", u.Name)
			}
		}
	}
	if roots > 1 {
		return fmt.Errorf("more than one unit marked root")
	}

	for _, e := range c.External {
		if e.Path == "" || e.Version == "" {
			return fmt.Errorf("external entries need both path and version")
		}
	}
	return nil
}

// rootIndex returns the index of the privileged unit. Without an explicit
// root marker the first unit is the root.
func (c *Config) rootIndex() int {
	for i, u := range c.Units {
		if u.Root {
			return i
		}
	}
	return 0
}
