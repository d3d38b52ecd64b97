package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds the input/output paths, re-orientation switches and preview settings.
type Config struct {
	// Paths
	BaseDir    string `json:"base_dir" yaml:"base_dir" toml:"base_dir"`
	Reference  string `json:"reference" yaml:"reference" toml:"reference"`
	Target     string `json:"target" yaml:"target" toml:"target"`
	Mapping    string `json:"mapping" yaml:"mapping" toml:"mapping"`
	Output     string `json:"output" yaml:"output" toml:"output"`
	Report     string `json:"report" yaml:"report" toml:"report"`
	Journal    string `json:"journal" yaml:"journal" toml:"journal"`
	PreviewDir string `json:"preview_dir" yaml:"preview_dir" toml:"preview_dir"`
	Backdrop   string `json:"backdrop" yaml:"backdrop" toml:"backdrop"`

	// Re-orientation
	SnapPositions bool `json:"snap_positions" yaml:"snap_positions" toml:"snap_positions"`
	MoveChildren  bool `json:"move_children" yaml:"move_children" toml:"move_children"`
	ExcludeMirror bool `json:"exclude_mirror" yaml:"exclude_mirror" toml:"exclude_mirror"`
	LegacyZSource bool `json:"legacy_z_source" yaml:"legacy_z_source" toml:"legacy_z_source"`

	// Preview settings
	Preview     bool   `json:"preview" yaml:"preview" toml:"preview"`
	RenderSize  int    `json:"render_size" yaml:"render_size" toml:"render_size"`
	Supersample int    `json:"supersample" yaml:"supersample" toml:"supersample"`
	View        string `json:"view" yaml:"view" toml:"view"`
	Workers     int    `json:"workers" yaml:"workers" toml:"workers"`
}

// Load reads a config file; the format follows the extension (.json, .yaml/.yml, .toml).
// Fields not set in the file keep their zero values. A relative base_dir is taken from the
// file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config: %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.BaseDir == "" {
		cfg.BaseDir = filepath.Dir(path)
	} else if !filepath.IsAbs(cfg.BaseDir) {
		cfg.BaseDir = filepath.Join(filepath.Dir(path), cfg.BaseDir)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	BaseDir    string
	Reference  string
	Target     string
	Mapping    string
	Output     string
	PreviewDir string
	View       string
	Workers    int

	SnapPositions bool
	MoveChildren  bool
	ExcludeMirror bool
	LegacyZSource bool
	Preview       bool
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&c.BaseDir, flags.BaseDir)
	override(&c.Reference, flags.Reference)
	override(&c.Target, flags.Target)
	override(&c.Mapping, flags.Mapping)
	override(&c.Output, flags.Output)
	override(&c.PreviewDir, flags.PreviewDir)
	override(&c.View, flags.View)
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	c.SnapPositions = c.SnapPositions || flags.SnapPositions
	c.MoveChildren = c.MoveChildren || flags.MoveChildren
	c.ExcludeMirror = c.ExcludeMirror || flags.ExcludeMirror
	c.LegacyZSource = c.LegacyZSource || flags.LegacyZSource
	c.Preview = c.Preview || flags.Preview

	if c.BaseDir == "" {
		c.BaseDir, _ = os.Getwd()
	}

	// Resolve relative paths against base dir
	for _, p := range []struct {
		dst *string
		def string
	}{
		{&c.Reference, ""},
		{&c.Target, ""},
		{&c.Mapping, ""},
		{&c.Backdrop, ""},
		{&c.Output, filepath.Join("out", "reoriented.json")},
		{&c.Report, filepath.Join("out", "report.json")},
		{&c.Journal, filepath.Join("out", "journal.db")},
		{&c.PreviewDir, filepath.Join("out", "preview")},
	} {
		if *p.dst == "" {
			*p.dst = p.def
		}
		if *p.dst != "" && !filepath.IsAbs(*p.dst) {
			*p.dst = filepath.Join(c.BaseDir, *p.dst)
		}
	}

	// Defaults for preview settings
	if c.RenderSize <= 0 {
		c.RenderSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.View == "" {
		c.View = "persp"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate reports the first missing input.
func (c *Config) Validate() error {
	switch {
	case c.Reference == "":
		return fmt.Errorf("config: no reference datablock")
	case c.Target == "":
		return fmt.Errorf("config: no target datablock")
	case c.Mapping == "":
		return fmt.Errorf("config: no naming standard")
	case c.RenderSize > 4096:
		return fmt.Errorf("config: render_size %d above 4096", c.RenderSize)
	}
	return nil
}
