// Package config loads funjit.yaml, the project-level translation
// configuration: extra annotation aliases, missing-annotation policies
// and backend settings, turned into manager options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/funjit/internal/backend"
	"github.com/funvibe/funjit/internal/jit"
	"github.com/funvibe/funjit/internal/native"
	"github.com/funvibe/funjit/internal/signature"
)

// Config represents the top-level funjit.yaml configuration.
type Config struct {
	// Mappings maps annotation aliases to native type names, merged over
	// the default mapping. Type names use the native.TypeByName syntax,
	// so "[]float64" declares an array alias.
	Mappings map[string]string `yaml:"mappings,omitempty"`

	// OnMissingArg is the policy for parameters without an annotation:
	// "raise" (the default) fails the signature build, any native type
	// name is used as the fallback annotation instead.
	OnMissingArg string `yaml:"on_missing_arg,omitempty"`

	// OnMissingRet is the policy for a missing return annotation, with
	// the same values as OnMissingArg.
	OnMissingRet string `yaml:"on_missing_ret,omitempty"`

	// DisableJit turns compilation off: compile calls return the
	// original function untouched. Setting FUNJIT_DISABLE=1 in the
	// environment disables compilation even when this is false.
	DisableJit bool `yaml:"disable_jit,omitempty"`

	// Strict rejects functions whose Go parameter types need a numeric
	// conversion to match the signature's native types.
	Strict bool `yaml:"strict,omitempty"`

	// Verbose makes the backend log every compilation to stderr.
	Verbose bool `yaml:"verbose,omitempty"`
}

// Load reads and parses a funjit.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses funjit.yaml content from bytes.
// The path argument is used only for error messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Find searches for funjit.yaml starting from dir and walking up to
// parent directories, similar to how .gitignore is found.
// Returns the path to the config file and nil error if found,
// or empty string and nil error if not found.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, "funjit.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		// Also check funjit.yml (common alternative)
		candidate = filepath.Join(dir, "funjit.yml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for structural errors. Type names
// are resolved later, in Mapping and ManagerOptions, so that the check
// command can report every bad entry instead of the first.
func (c *Config) validate(path string) error {
	for alias := range c.Mappings {
		if alias == "" {
			return fmt.Errorf("%s: mappings: empty alias", path)
		}
	}
	return nil
}

// Mapping translates the configured aliases into a mapping merged over
// the default one. Unknown type names are collected and joined into one
// error, each naming the offending alias, so the check command can list
// every bad entry in a single run.
func (c *Config) Mapping() (signature.Mapping, error) {
	extra := make(signature.Mapping, len(c.Mappings))
	aliases := make([]string, 0, len(c.Mappings))
	for alias := range c.Mappings {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	var errs []error
	for _, alias := range aliases {
		name := c.Mappings[alias]
		t, ok := native.TypeByName(name)
		if !ok {
			errs = append(errs, fmt.Errorf("mapping alias %q: unknown native type %q", alias, name))
			continue
		}
		extra[alias] = t
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return signature.DefaultMapping().Merge(extra), nil
}

// policy translates a policy string: empty or "raise" is the Raise
// sentinel, anything else must be a native type name and becomes the
// fallback annotation.
func policy(field, value string) (any, error) {
	if value == "" || value == "raise" {
		return signature.Raise, nil
	}
	t, ok := native.TypeByName(value)
	if !ok {
		return nil, fmt.Errorf("%s: unknown native type %q", field, value)
	}
	return t, nil
}

// Builder returns a signature builder carrying the configured mapping
// and missing-annotation policies. Mapping and policy failures are
// joined into one error.
func (c *Config) Builder() (*signature.Builder, error) {
	mapping, merr := c.Mapping()
	onArg, aerr := policy("on_missing_arg", c.OnMissingArg)
	onRet, rerr := policy("on_missing_ret", c.OnMissingRet)
	if err := errors.Join(merr, aerr, rerr); err != nil {
		return nil, err
	}
	return signature.NewBuilder(mapping, onArg, onRet), nil
}

// ManagerOptions translates the configuration into options for
// jit.NewManager. DisableJit is only passed through when set, so a
// FUNJIT_DISABLE environment override stays in force otherwise.
func (c *Config) ManagerOptions() ([]jit.ManagerOption, error) {
	mapping, err := c.Mapping()
	if err != nil {
		return nil, err
	}
	onArg, err := policy("on_missing_arg", c.OnMissingArg)
	if err != nil {
		return nil, err
	}
	onRet, err := policy("on_missing_ret", c.OnMissingRet)
	if err != nil {
		return nil, err
	}

	opts := []jit.ManagerOption{
		jit.WithMapping(mapping),
		jit.WithOnMissingArg(onArg),
		jit.WithOnMissingRet(onRet),
	}
	if c.DisableJit {
		opts = append(opts, jit.WithDisabled(true))
	}

	var compileOpts []backend.Option
	if c.Strict {
		compileOpts = append(compileOpts, backend.WithStrict(true))
	}
	if c.Verbose {
		compileOpts = append(compileOpts, backend.WithVerbose(true))
	}
	if len(compileOpts) > 0 {
		opts = append(opts, jit.WithCompileOptions(compileOpts...))
	}

	return opts, nil
}
