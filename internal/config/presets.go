package config

import (
	"sort"

	"github.com/san-kum/gravsim/internal/physics"
)

// Presets are starting points; a config file and command line flags are
// applied on top.
var Presets = map[string]*Config{
	"si": {
		Algorithm: AlgorithmSymmetric, Physics: physics.DefaultParams(),
		Dt: 60, Duration: 27.3 * 86400, Outputs: 500,
		Init: InitConfig{Model: "earth-moon", Bodies: 2},
	},
	"natural": {
		Algorithm: AlgorithmSymmetric, Physics: physics.Params{G: 1, Softening: 1e-4},
		Dt: 0.001, Duration: 10, Outputs: 200,
		Init: InitConfig{Model: "cloud", Bodies: 256, Seed: 1, Mass: 1, Radius: 1},
	},
	"ring": {
		Algorithm: AlgorithmDirect, Physics: physics.Params{G: 1, Softening: 0},
		Dt: 0.0005, Duration: 5, Outputs: 100, ValidateState: true,
		Init: InitConfig{Model: "ring", Bodies: 16, Mass: 1, Radius: 1},
	},
	"fast": {
		Algorithm: AlgorithmSymmetric, BlockSize: ParallelBlockSize, Physics: physics.Params{G: 1, Softening: 1e-2},
		Dt: 0.01, Duration: 1, Outputs: 10,
		Init: InitConfig{Model: "cloud", Bodies: 1024, Seed: 1, Mass: 1, Radius: 10},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultConfig().LogLevel
	}
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
