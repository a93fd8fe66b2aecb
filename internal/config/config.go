// Package config holds the translator's run options: defaults, an optional
// YAML file, command-line overrides and static validation.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"pauliqasm/internal/assemble"
	"pauliqasm/internal/reduce"
)

// ErrInvalidOptions wraps every validation failure.
var ErrInvalidOptions = errors.New("invalid options")

// Options is read once and never changes during a run.
type Options struct {
	Input        string   `yaml:"input"`
	Output       string   `yaml:"output"`
	Version      int      `yaml:"version"`
	Strategy     string   `yaml:"strategy"`
	Workers      int      `yaml:"workers"`
	Parameterize bool     `yaml:"parameterize"`
	Multiplier   *float64 `yaml:"multiplier"`
	Logging      Logging  `yaml:"logging"`
}

// Logging selects the slog handler.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the options used when nothing else is configured.
func Default() Options {
	return Options{
		Version:  int(assemble.V2),
		Strategy: reduce.NamePool,
		Workers:  runtime.NumCPU(),
		Logging:  Logging{Level: "warn", Format: "text"},
	}
}

// Load reads a YAML file. Unknown keys are an error; an empty file yields
// zero Options.
func Load(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return Options{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses YAML options from r.
func Decode(r io.Reader) (Options, error) {
	var o Options
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("config: %w", err)
	}
	return o, nil
}

// Merge overlays over onto base. Zero values in over leave base untouched,
// so Parameterize can only be switched on here; callers holding an explicit
// false assign it after merging.
func Merge(base, over Options) Options {
	out := base
	if s := strings.TrimSpace(over.Input); s != "" {
		out.Input = s
	}
	if s := strings.TrimSpace(over.Output); s != "" {
		out.Output = s
	}
	if over.Version != 0 {
		out.Version = over.Version
	}
	if s := strings.TrimSpace(over.Strategy); s != "" {
		out.Strategy = s
	}
	if over.Workers != 0 {
		out.Workers = over.Workers
	}
	if over.Parameterize {
		out.Parameterize = true
	}
	if over.Multiplier != nil {
		m := *over.Multiplier
		out.Multiplier = &m
	}
	if s := strings.TrimSpace(over.Logging.Level); s != "" {
		out.Logging.Level = s
	}
	if s := strings.TrimSpace(over.Logging.Format); s != "" {
		out.Logging.Format = s
	}
	return out
}

// Validate checks the merged options before any input is read.
func (o Options) Validate() error {
	if !assemble.Version(o.Version).Valid() {
		return fmt.Errorf("%w: qasm version %d, want 2 or 3", ErrInvalidOptions, o.Version)
	}
	if o.Parameterize && o.Version == int(assemble.V2) {
		return fmt.Errorf("%w: parameterized output needs OpenQASM 3 input declarations", ErrInvalidOptions)
	}
	if !slices.Contains(reduce.Names(), o.Strategy) {
		return fmt.Errorf("%w: strategy %q, want one of %s", ErrInvalidOptions, o.Strategy, strings.Join(reduce.Names(), ", "))
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0", ErrInvalidOptions)
	}
	if o.Multiplier != nil && *o.Multiplier == 0 {
		return fmt.Errorf("%w: multiplier must be non-zero", ErrInvalidOptions)
	}
	if _, err := ParseLevel(o.Logging.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	switch o.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidOptions, o.Logging.Format)
	}
	return nil
}
