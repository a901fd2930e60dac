package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

const (
	AlgorithmDirect    = "direct"
	AlgorithmSymmetric = "symmetric"

	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultOutputs  = 100

	// Block sizes used when none is configured. Parallel runs use the
	// smaller one so each worker's share spans more blocks.
	SerialBlockSize   = 64
	ParallelBlockSize = 32
)

var (
	ErrAlgorithm = errors.New("config: unknown algorithm")
	ErrThreads   = errors.New("config: threads must be >= 0")
	ErrBlockSize = errors.New("config: block_size must be >= 0")
	ErrGravity   = errors.New("config: gravity must be positive")
	ErrSoftening = errors.New("config: softening must be >= 0")
)

type Config struct {
	Algorithm     string         `yaml:"algorithm"`
	Threads       int            `yaml:"threads"`
	BlockSize     int            `yaml:"block_size"`
	Physics       physics.Params `yaml:",inline"`
	Dt            float64        `yaml:"dt"`
	Duration      float64        `yaml:"duration"`
	Outputs       int            `yaml:"outputs"`
	ValidateState bool           `yaml:"validate_state"`
	Diagnostics   bool           `yaml:"diagnostics"`
	LogLevel      string         `yaml:"log_level"`
	Init          InitConfig     `yaml:"init"`
}

// InitConfig drives the generate command.
type InitConfig struct {
	Model  string  `yaml:"model"`
	Bodies int     `yaml:"bodies"`
	Seed   uint64  `yaml:"seed"`
	Mass   float64 `yaml:"mass"`
	Radius float64 `yaml:"radius"`
}

func DefaultConfig() *Config {
	return &Config{
		Algorithm: AlgorithmSymmetric,
		Physics:   physics.DefaultParams(),
		Dt:        DefaultDt,
		Duration:  DefaultDuration,
		Outputs:   DefaultOutputs,
		LogLevel:  logrus.WarnLevel.String(),
		Init: InitConfig{
			Model:  "cloud",
			Bodies: 100,
			Seed:   1,
			Mass:   1,
			Radius: 1,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every field, time parameters included, so a bad
// configuration is reported before any input is read.
func (c *Config) Validate() error {
	if _, err := c.Plan(); err != nil {
		return err
	}
	switch c.Algorithm {
	case AlgorithmDirect, AlgorithmSymmetric:
	default:
		return fmt.Errorf("%w %q (want %s or %s)", ErrAlgorithm, c.Algorithm, AlgorithmDirect, AlgorithmSymmetric)
	}
	if c.Threads < 0 {
		return fmt.Errorf("%w, got %d", ErrThreads, c.Threads)
	}
	if c.BlockSize < 0 {
		return fmt.Errorf("%w, got %d", ErrBlockSize, c.BlockSize)
	}
	if !(c.Physics.G > 0) {
		return fmt.Errorf("%w, got %g", ErrGravity, c.Physics.G)
	}
	if !(c.Physics.Softening >= 0) {
		return fmt.Errorf("%w, got %g", ErrSoftening, c.Physics.Softening)
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

// Plan derives the step and output schedule from dt, duration and outputs.
func (c *Config) Plan() (dynamo.Plan, error) {
	return dynamo.NewPlan(c.Dt, c.Duration, c.Outputs)
}

// RunConfig is the simulator view of the configuration.
func (c *Config) RunConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		Outputs:       c.Outputs,
		ValidateState: c.ValidateState,
		Diagnostics:   c.Diagnostics,
	}
}

// ResolvedBlockSize returns the configured block size, or the default for
// the given worker count.
func (c *Config) ResolvedBlockSize(workers int) int {
	if c.BlockSize > 0 {
		return c.BlockSize
	}
	if workers > 1 {
		return ParallelBlockSize
	}
	return SerialBlockSize
}

func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
