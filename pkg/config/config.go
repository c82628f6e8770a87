// Package config loads and saves brushwork settings as YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/geom"
)

// Kernel names accepted by GeometryConfig.Kernel.
const (
	KernelBrush = "brush" // exact convex brushes
	KernelSDF   = "sdf"   // signed distance fields, marching cubes
)

// Config holds all brushwork configuration.
type Config struct {
	World    WorldConfig    `yaml:"world"`
	Geometry GeometryConfig `yaml:"geometry"`
	Engine   EngineConfig   `yaml:"engine"`
	Logging  LoggingConfig  `yaml:"logging"`
	Export   ExportConfig   `yaml:"export"`
}

// WorldConfig describes the space brushes live in.
type WorldConfig struct {
	Size     float64 `yaml:"size"`     // half-extent along each axis
	Material string  `yaml:"material"` // material of brushes that name none
	Units    string  `yaml:"units"`
}

// GeometryConfig selects and tunes the geometry kernel.
type GeometryConfig struct {
	Kernel    string `yaml:"kernel"`     // brush, sdf
	MeshCells int    `yaml:"mesh_cells"` // sdf resolution along the longest axis
	UVLock    bool   `yaml:"uv_lock"`    // keep textures fixed when moving vertices
}

// EngineConfig configures script evaluation.
type EngineConfig struct {
	Timeout string `yaml:"timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error
	Encoding string `yaml:"encoding"` // json, console
}

// ExportConfig configures the SVG exporter.
type ExportConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Margin int     `yaml:"margin"`
	View   string  `yaml:"view"` // top, front, side
	Stroke float64 `yaml:"stroke"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		World: WorldConfig{
			Size:     geom.DefaultWorldSize,
			Material: brush.NoMaterialName,
			Units:    "units",
		},
		Geometry: GeometryConfig{
			Kernel:    KernelBrush,
			MeshCells: 200,
			UVLock:    true,
		},
		Engine: EngineConfig{
			Timeout: "5s",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
		},
		Export: ExportConfig{
			Width:  800,
			Height: 800,
			Margin: 20,
			View:   "top",
			Stroke: 1,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if level := os.Getenv("BRUSHWORK_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if size := os.Getenv("BRUSHWORK_WORLD_SIZE"); size != "" {
		f, err := strconv.ParseFloat(size, 64)
		if err != nil {
			return fmt.Errorf("invalid BRUSHWORK_WORLD_SIZE %q: %w", size, err)
		}
		c.World.Size = f
	}
	return nil
}

// Validate checks the configuration for values the tools cannot use.
func (c *Config) Validate() error {
	if c.World.Size <= 0 {
		return fmt.Errorf("world.size must be positive, got %g", c.World.Size)
	}
	switch c.Geometry.Kernel {
	case KernelBrush, KernelSDF:
	default:
		return fmt.Errorf("geometry.kernel must be %q or %q, got %q", KernelBrush, KernelSDF, c.Geometry.Kernel)
	}
	if c.Geometry.MeshCells <= 0 {
		return fmt.Errorf("geometry.mesh_cells must be positive, got %d", c.Geometry.MeshCells)
	}
	if _, err := time.ParseDuration(c.Engine.Timeout); err != nil {
		return fmt.Errorf("engine.timeout: %w", err)
	}
	switch c.Export.View {
	case "top", "front", "side":
	default:
		return fmt.Errorf("export.view must be top, front or side, got %q", c.Export.View)
	}
	if c.Export.Width <= 2*c.Export.Margin || c.Export.Height <= 2*c.Export.Margin {
		return fmt.Errorf("export size %dx%d leaves no room inside margin %d",
			c.Export.Width, c.Export.Height, c.Export.Margin)
	}
	return nil
}

// GetEngineTimeout returns the evaluation timeout, falling back to five
// seconds when the configured value does not parse.
func (c *Config) GetEngineTimeout() time.Duration {
	d, err := time.ParseDuration(c.Engine.Timeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}
