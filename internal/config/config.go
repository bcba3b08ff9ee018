// Package config loads the hintbind.toml file read by the CLI.
//
//	[binder]
//	tag_key = "mark"
//	strict = true
//
//	[output]
//	format = "table"   # table, json or msgpack
//	color = "auto"     # auto, on or off
//
//	[log]
//	level = "warn"
//
//	[sources]
//	definitions = ["defs/*.yaml"]
//	openapi = ["api/openapi.yaml"]
//	packages = ["./store"]
//
// Command line flags override file values.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"hintbind/hint"
)

// DefaultFile is looked up in the working directory when --config is not
// given.
const DefaultFile = "hintbind.toml"

type Config struct {
	Binder  Binder  `toml:"binder"`
	Output  Output  `toml:"output"`
	Log     Log     `toml:"log"`
	Sources Sources `toml:"sources"`
}

type Binder struct {
	TagKey string `toml:"tag_key"`
	Strict bool   `toml:"strict"`
}

type Output struct {
	Format string `toml:"format"`
	Color  string `toml:"color"`
}

type Log struct {
	Level string `toml:"level"`
}

// Sources lists where `check` finds targets when no arguments are given.
// Entries may be globs; relative paths are resolved against the config
// file's directory.
type Sources struct {
	Definitions []string `toml:"definitions"`
	OpenAPI     []string `toml:"openapi"`
	Packages    []string `toml:"packages"`
}

var (
	Formats     = []string{"table", "json", "msgpack"}
	ColorModes  = []string{"auto", "on", "off"}
	LogLevels   = []string{"debug", "info", "warn", "error"}
	errNoConfig = errors.New("config: nil config")
)

// Default is the configuration used without a file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)

	return cfg
}

// Load decodes path. Keys the schema does not know are errors.
func Load(path string) (*Config, error) {
	var cfg Config

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	applyDefaults(&cfg)
	cfg.Sources.resolve(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &cfg, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Binder.TagKey == "" {
		cfg.Binder.TagKey = hint.DefaultTagKey
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = "table"
	}

	if cfg.Output.Color == "" {
		cfg.Output.Color = "auto"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
}

func (s *Sources) resolve(dir string) {
	for _, list := range []*[]string{&s.Definitions, &s.OpenAPI} {
		for i, p := range *list {
			if !filepath.IsAbs(p) {
				(*list)[i] = filepath.Join(dir, p)
			}
		}
	}
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	if c == nil {
		return errNoConfig
	}

	var errs []error

	check := func(key, value string, allowed []string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("%s: %q is not one of %s", key, value, strings.Join(allowed, ", ")))
		}
	}

	check("output.format", c.Output.Format, Formats)
	check("output.color", c.Output.Color, ColorModes)
	check("log.level", c.Log.Level, LogLevels)

	return errors.Join(errs...)
}

// Expand resolves the globs of a source list. Patterns without matches
// are kept so that the caller reports the missing file.
func Expand(patterns []string) ([]string, error) {
	var out []string

	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("config: bad pattern %q: %w", p, err)
		}

		if len(matches) == 0 {
			out = append(out, p)
			continue
		}

		out = append(out, matches...)
	}

	return out, nil
}
