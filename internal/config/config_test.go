package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Algorithm != AlgorithmSymmetric {
		t.Errorf("expected algorithm symmetric, got %s", cfg.Algorithm)
	}
	if cfg.Physics != physics.DefaultParams() {
		t.Errorf("unexpected physics %+v", cfg.Physics)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"unknown algorithm", func(c *Config) { c.Algorithm = "barnes-hut" }, ErrAlgorithm},
		{"negative threads", func(c *Config) { c.Threads = -1 }, ErrThreads},
		{"negative block size", func(c *Config) { c.BlockSize = -4 }, ErrBlockSize},
		{"zero gravity", func(c *Config) { c.Physics.G = 0 }, ErrGravity},
		{"negative softening", func(c *Config) { c.Physics.Softening = -1 }, ErrSoftening},
		{"zero dt", func(c *Config) { c.Dt = 0 }, dynamo.ErrTimeStep},
		{"zero duration", func(c *Config) { c.Duration = 0 }, dynamo.ErrTotalTime},
		{"duration below dt", func(c *Config) { c.Dt, c.Duration = 1, 0.5 }, dynamo.ErrTotalBelowStep},
		{"negative outputs", func(c *Config) { c.Outputs = -3 }, dynamo.ErrOutputs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an unknown log level")
	}
}

func TestRunConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Diagnostics {
		t.Error("diagnostics should be off by default")
	}
	cfg.Dt, cfg.Duration, cfg.Outputs = 0.5, 3, 2
	cfg.ValidateState, cfg.Diagnostics = true, true

	want := dynamo.Config{Dt: 0.5, Duration: 3, Outputs: 2, ValidateState: true, Diagnostics: true}
	if got := cfg.RunConfig(); got != want {
		t.Errorf("RunConfig() = %+v, want %+v", got, want)
	}
	plan, err := cfg.Plan()
	if err != nil || plan.NumSteps != 6 || plan.Stride != 3 {
		t.Errorf("Plan() = %+v, %v", plan, err)
	}
}

func TestResolvedBlockSize(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ResolvedBlockSize(1); got != SerialBlockSize {
		t.Errorf("serial: %d", got)
	}
	if got := cfg.ResolvedBlockSize(8); got != ParallelBlockSize {
		t.Errorf("parallel: %d", got)
	}
	cfg.BlockSize = 16
	if got := cfg.ResolvedBlockSize(8); got != 16 {
		t.Errorf("configured: %d", got)
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")

	cfg := DefaultConfig()
	cfg.Algorithm = AlgorithmDirect
	cfg.Threads = 3
	cfg.Physics.G = 2.5
	cfg.Init.Seed = 99

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *cfg {
		t.Errorf("round trip: got %+v, want %+v", got, cfg)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("algorithm: direct\ngravity: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Algorithm != AlgorithmDirect || cfg.Physics.G != 1 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Physics.Softening != physics.DefaultSoftening || cfg.Outputs != DefaultOutputs {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Level() != logrus.WarnLevel {
		t.Errorf("Level() = %v", cfg.Level())
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v", err)
	}
}

func TestPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("ListPresets() = %v", names)
	}
	for _, name := range names {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %s missing", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}

	a := GetPreset("natural")
	a.Threads = 7
	if Presets["natural"].Threads == 7 {
		t.Error("GetPreset returned the shared preset")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}
