package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"voxelforge/internal/world"
)

// Config is the daemon configuration. Zero fields fall back to defaults,
// so a config file only needs to name what it overrides.
type Config struct {
	ListenAddr string          `yaml:"listen_addr"`
	Workers    int             `yaml:"workers"`
	QueueSize  int             `yaml:"queue_size"`
	CachePath  string          `yaml:"cache_path"`
	Worldgen   world.GenConfig `yaml:"worldgen"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr: ":8642",
		Workers:    4,
		QueueSize:  64,
		Worldgen:   world.DefaultGenConfig(),
	}
}

// Load reads a yaml config file. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	def := Default()
	if c.ListenAddr == "" {
		c.ListenAddr = def.ListenAddr
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = def.QueueSize
	}
	if c.Worldgen == (world.GenConfig{}) {
		c.Worldgen = def.Worldgen
	}
}

func (c *Config) validate() error {
	if c.Worldgen.Octaves < 1 {
		return fmt.Errorf("worldgen.octaves must be at least 1, got %d", c.Worldgen.Octaves)
	}
	if c.Worldgen.Frequency <= 0 {
		return fmt.Errorf("worldgen.frequency must be positive, got %g", c.Worldgen.Frequency)
	}
	if c.Worldgen.SeaLevel < 0 || c.Worldgen.SeaLevel >= world.ChunkSizeY {
		return fmt.Errorf("worldgen.sea_level out of range: %d", c.Worldgen.SeaLevel)
	}
	return nil
}
