package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	o := Default()
	if err := o.Validate(); err != nil {
		t.Fatalf("default options invalid: %v", err)
	}
	if o.Version != 2 || o.Parameterize || o.Multiplier != nil {
		t.Errorf("unexpected defaults: %+v", o)
	}
	if o.Workers < 1 {
		t.Errorf("Workers = %d, want >= 1", o.Workers)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pauliqasm.yaml")
	raw := "version: 3\nstrategy: fanout\nworkers: 4\nparameterize: true\nmultiplier: 0.5\nlogging:\n  level: debug\n  format: json\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	o, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if o.Version != 3 || o.Strategy != "fanout" || o.Workers != 4 || !o.Parameterize {
		t.Errorf("fields not mapped: %+v", o)
	}
	if o.Multiplier == nil || *o.Multiplier != 0.5 {
		t.Errorf("Multiplier = %v, want 0.5", o.Multiplier)
	}
	if o.Logging.Level != "debug" || o.Logging.Format != "json" {
		t.Errorf("Logging = %+v", o.Logging)
	}
}

func TestDecodeUnknownField(t *testing.T) {
	if _, err := Decode(strings.NewReader("versoin: 3\n")); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestDecodeEmpty(t *testing.T) {
	o, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Decode empty: %v", err)
	}
	if o != (Options{}) {
		t.Errorf("expected zero options, got %+v", o)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestMerge(t *testing.T) {
	m := 1.5
	base := Default()
	base.Output = "file.qasm"
	over := Options{Version: 3, Parameterize: true, Multiplier: &m, Strategy: " sequential ", Logging: Logging{Level: "info"}}

	got := Merge(base, over)
	if got.Version != 3 || !got.Parameterize || got.Strategy != "sequential" {
		t.Errorf("overlay not applied: %+v", got)
	}
	if got.Output != "file.qasm" || got.Workers != base.Workers || got.Logging.Format != "text" {
		t.Errorf("base fields lost: %+v", got)
	}
	m = 9
	if *got.Multiplier != 1.5 {
		t.Error("Merge must copy the multiplier")
	}
}

func TestValidate(t *testing.T) {
	zero := 0.0
	tests := []struct {
		name string
		edit func(*Options)
		ok   bool
	}{
		{"v3 parameterized", func(o *Options) { o.Version = 3; o.Parameterize = true }, true},
		{"v2 parameterized", func(o *Options) { o.Parameterize = true }, false},
		{"bad version", func(o *Options) { o.Version = 4 }, false},
		{"bad strategy", func(o *Options) { o.Strategy = "openmp" }, false},
		{"negative workers", func(o *Options) { o.Workers = -1 }, false},
		{"zero workers means auto", func(o *Options) { o.Workers = 0 }, true},
		{"zero multiplier", func(o *Options) { o.Multiplier = &zero }, false},
		{"bad level", func(o *Options) { o.Logging.Level = "loud" }, false},
		{"bad format", func(o *Options) { o.Logging.Format = "xml" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Default()
			tt.edit(&o)
			err := o.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("expected ErrInvalidOptions, got %v", err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace": LevelTrace,
		"DEBUG": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"":      slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := Logging{Level: "info", Format: "json"}.NewLogger(&buf)
	log.Debug("hidden")
	log.Info("shown", "operators", 3)
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"operators":3`) {
		t.Errorf("unexpected log output: %s", out)
	}
}
