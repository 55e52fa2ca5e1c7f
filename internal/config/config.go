package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/minerops/launchspec/internal/env"
	"github.com/minerops/launchspec/internal/logger"
	"github.com/minerops/launchspec/internal/spec"
)

// ServerConfig configures the registry daemon started by `launchspec serve`.
type ServerConfig struct {
	Listen   string `toml:"listen" mapstructure:"listen"`
	BasePath string `toml:"base_path" mapstructure:"base_path"`
}

// Config is the top-level file structure. Specs live in [[specs]] tables
// (TOML) or a "specs" array (JSON).
type Config struct {
	Env      []string       `toml:"env" mapstructure:"env"`
	EnvFiles []string       `toml:"env_files" mapstructure:"env_files"`
	UseOSEnv bool           `toml:"use_os_env" mapstructure:"use_os_env"`
	Log      *logger.Config `toml:"log" mapstructure:"log"`
	Specs    []spec.Spec    `toml:"specs" mapstructure:"specs"`

	StoreDSN   string       `toml:"store" mapstructure:"store"`
	HistoryDSN string       `toml:"history" mapstructure:"history"`
	Server     ServerConfig `toml:"server" mapstructure:"server"`

	// Dir is the directory the config file was loaded from; relative
	// env_file entries resolve against it.
	Dir string `toml:"-" mapstructure:"-"`
}

func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		spec.DurationHookFunc(),
		spec.SizeHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// Load reads a TOML or JSON config file, applies defaults, and resolves
// relative env_file paths against the file's directory. Specs are normalized
// but not validated; call Validate per spec so callers can aggregate errors.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if t := configType(path); t != "" {
		v.SetConfigType(t)
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c, decodeHook()); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.Dir = filepath.Dir(path)
	seen := make(map[string]bool, len(c.Specs))
	for i := range c.Specs {
		s := &c.Specs[i]
		s.Normalize()
		s.ResolveEnvFile(c.Dir)
		if s.Name != "" && seen[s.Name] {
			return nil, fmt.Errorf("config %s: duplicate spec name %q", path, s.Name)
		}
		seen[s.Name] = true
	}
	for i, p := range c.EnvFiles {
		if p != "" && !filepath.IsAbs(p) {
			c.EnvFiles[i] = filepath.Join(c.Dir, p)
		}
	}
	return &c, nil
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	default:
		return ""
	}
}

// LoadSpecs is a convenience wrapper returning only the normalized specs.
func LoadSpecs(path string) ([]spec.Spec, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	return c.Specs, nil
}

// LoadSpec loads a file expected to describe exactly one spec. A file with a
// single top-level spec (no [[specs]] table) is also accepted.
func LoadSpec(path string) (spec.Spec, error) {
	c, err := Load(path)
	if err != nil {
		// A bare spec carries env as a map, which does not fit the
		// config form's env list; retry with the bare shape before
		// surfacing the decode error.
		if s, bareErr := loadBareSpec(path); bareErr == nil {
			return s, nil
		}
		return spec.Spec{}, err
	}
	switch len(c.Specs) {
	case 1:
		return c.Specs[0], nil
	case 0:
		return loadBareSpec(path)
	default:
		return spec.Spec{}, fmt.Errorf("config %s: expected one spec, found %d", path, len(c.Specs))
	}
}

// loadBareSpec parses a file whose top level is the spec itself, the shape
// the registry API accepts.
func loadBareSpec(path string) (spec.Spec, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if t := configType(path); t != "" {
		v.SetConfigType(t)
	}
	if err := v.ReadInConfig(); err != nil {
		return spec.Spec{}, fmt.Errorf("read spec %s: %w", path, err)
	}
	var s spec.Spec
	if err := v.Unmarshal(&s, decodeHook()); err != nil {
		return spec.Spec{}, fmt.Errorf("parse spec %s: %w", path, err)
	}
	if s.Name == "" && s.Script == "" {
		return spec.Spec{}, fmt.Errorf("spec %s: no spec found", path)
	}
	s.Normalize()
	s.ResolveEnvFile(filepath.Dir(path))
	return s, nil
}

// ComposedEnv builds the final "K=V" environment for one spec: OS env when
// enabled, global env list, global env_files, the spec's env_file, then the
// spec's env map.
func (c *Config) ComposedEnv(s *spec.Spec) ([]string, error) {
	e := env.New()
	if c.UseOSEnv {
		e.FromOS()
	} else {
		e.WithoutOS()
	}
	for _, kv := range c.Env {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			e.Set(kv[:i], kv[i+1:])
		}
	}
	filePairs := make(env.Var)
	for _, p := range c.EnvFiles {
		pairs, err := env.LoadFile(p)
		if err != nil {
			return nil, fmt.Errorf("env file %s: %w", p, err)
		}
		for k, v := range pairs {
			filePairs[k] = v
		}
	}
	if s.EnvFile != "" {
		pairs, err := env.LoadFile(s.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("env file %s: %w", s.EnvFile, err)
		}
		for k, v := range pairs {
			filePairs[k] = v
		}
	}
	return e.Merge(filePairs, s.Env), nil
}

// LogConfigFor merges the global log defaults with one spec's sink fields.
// The spec's explicit paths win over the global directory convention.
func (c *Config) LogConfigFor(s *spec.Spec) logger.Config {
	var lc logger.Config
	if c.Log != nil {
		lc = *c.Log
	}
	if s.OutFile != "" {
		lc.OutPath = s.OutFile
	}
	if s.ErrorFile != "" {
		lc.ErrPath = s.ErrorFile
	}
	if s.LogFile != "" {
		lc.MergedPath = s.LogFile
	}
	return lc
}
