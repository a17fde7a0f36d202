// Package config loads engine settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/skosovsky/view"
)

// ErrInvalidConfig is returned for malformed or incomplete config files.
var ErrInvalidConfig = errors.New("config: invalid config")

// Config is the YAML shape of an engine file. The mapstructure tags let viper
// unmarshal the same keys from flags and VIEW_* environment variables.
type Config struct {
	Root            string         `yaml:"root" mapstructure:"root"`
	Debug           bool           `yaml:"debug" mapstructure:"debug"`
	Suffix          string         `yaml:"suffix" mapstructure:"suffix"`
	CacheTTL        time.Duration  `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	MaxIncludeDepth int            `yaml:"max_include_depth" mapstructure:"max_include_depth"`
	Globals         map[string]any `yaml:"globals" mapstructure:"globals"`
}

// ParseBytes parses and validates a YAML config.
func ParseBytes(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ParseFile reads and parses a config file.
func ParseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return ParseBytes(data)
}

// ParseFS reads and parses a config from fs.FS (e.g. embed.FS).
func ParseFS(fsys fs.FS, name string) (*Config, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("config: read fs: %w", err)
	}
	return ParseBytes(data)
}

// Validate checks the fields the engine cannot default.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("%w: missing root", ErrInvalidConfig)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: negative cache_ttl %s", ErrInvalidConfig, c.CacheTTL)
	}
	if c.MaxIncludeDepth < 0 {
		return fmt.Errorf("%w: negative max_include_depth %d", ErrInvalidConfig, c.MaxIncludeDepth)
	}
	return nil
}

// Options converts the config to engine options. Zero values keep engine defaults.
func (c *Config) Options() []view.Option {
	opts := []view.Option{view.WithDebug(c.Debug)}
	if c.Suffix != "" {
		opts = append(opts, view.WithSuffix(c.Suffix))
	}
	if c.CacheTTL > 0 {
		opts = append(opts, view.WithCacheTTL(c.CacheTTL))
	}
	if c.MaxIncludeDepth > 0 {
		opts = append(opts, view.WithMaxIncludeDepth(c.MaxIncludeDepth))
	}
	return opts
}

// NewEngine builds an engine from c and seeds its globals. extra options are
// applied after the config's own.
func (c *Config) NewEngine(extra ...view.Option) (*view.Engine, error) {
	e, err := view.New(c.Root, append(c.Options(), extra...)...)
	if err != nil {
		return nil, err
	}
	for _, k := range slices.Sorted(maps.Keys(c.Globals)) {
		e.AddGlobalData(k, c.Globals[k])
	}
	return e, nil
}
