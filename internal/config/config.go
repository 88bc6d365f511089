// Package config loads scriptgraph.toml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/phobologic/scriptgraph/internal/lang"
	"github.com/phobologic/scriptgraph/internal/render"
)

// DefaultPath is read when no -config flag is given.
const DefaultPath = "scriptgraph.toml"

// Formats lists the accepted output formats.
var Formats = []string{"mermaid", "dot", "toon"}

// Config holds the settings read from scriptgraph.toml. Command-line flags
// override individual fields after loading.
type Config struct {
	Title           string            `toml:"title"`
	Root            string            `toml:"root"`
	Format          string            `toml:"format"`
	Direction       string            `toml:"direction"`
	DefaultLanguage string            `toml:"default_language"`
	MaxFileSize     int64             `toml:"max_file_size"`
	Exclude         []string          `toml:"exclude"`
	Extensions      map[string]string `toml:"extensions"`
	Watch           Watch             `toml:"watch"`
}

// Watch configures -watch mode.
type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the TOML file at path. When path is empty, DefaultPath is tried
// and a missing file yields the defaults; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Format == "" {
		c.Format = "mermaid"
	}
	if c.Direction == "" {
		c.Direction = "TD"
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = "powershell"
	}
	if c.MaxFileSize == 0 {
		c.MaxFileSize = 1_000_000
	}
	// Default debounce if not set
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}

	// Extension keys are matched lowercased with a leading dot.
	if len(c.Extensions) > 0 {
		normalized := make(map[string]string, len(c.Extensions))
		for ext, name := range c.Extensions {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			normalized[ext] = strings.ToLower(strings.TrimSpace(name))
		}
		c.Extensions = normalized
	}
}

// Validate rejects unknown formats, directions and dialects.
func (c *Config) Validate() error {
	c.Format = strings.ToLower(c.Format)
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("unknown format %q (want one of %s)", c.Format, strings.Join(Formats, ", "))
	}
	c.Direction = strings.ToUpper(c.Direction)
	if !slices.Contains(render.Directions, c.Direction) {
		return fmt.Errorf("unknown direction %q (want one of %s)", c.Direction, strings.Join(render.Directions, ", "))
	}
	if _, ok := lang.Languages[c.DefaultLanguage]; !ok {
		return fmt.Errorf("unsupported default_language %q", c.DefaultLanguage)
	}
	for ext, name := range c.Extensions {
		if _, ok := lang.Languages[name]; !ok {
			return fmt.Errorf("extension %s: unsupported language %q", ext, name)
		}
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must not be negative")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}
