// Package config loads the run configuration: the camera model, solver
// limits, photometry inputs and logging.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-astrometry/internal/geometry"
	"github.com/litescript/ls-astrometry/internal/photometry"
	"github.com/litescript/ls-astrometry/internal/platepar"
	"github.com/litescript/ls-astrometry/internal/projection"
)

// Config is the top-level YAML document.
type Config struct {
	LogLevel   string                `yaml:"log_level"`
	LogFormat  string                `yaml:"log_format"`
	Camera     platepar.CameraModel  `yaml:"camera"`
	Solver     geometry.SolverConfig `yaml:"solver"`
	Photometry Photometry            `yaml:"photometry"`
	Tracks     []projection.Track    `yaml:"tracks"`
}

// Photometry lists the matched stars used to fit the photometric offset.
type Photometry struct {
	// CentralOnly restricts the fit to stars near the image center.
	CentralOnly bool                         `yaml:"central_only"`
	Stars       []photometry.StarMeasurement `yaml:"stars"`
}

// Default returns the built-in demo configuration.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Camera:    platepar.Demo(),
		Solver:    geometry.DefaultSolverConfig(),
		Photometry: Photometry{
			CentralOnly: true,
		},
	}
}

// Load reads and validates a configuration file. Keys missing from the file
// keep their Default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	// A camera block replaces the demo camera entirely, not field by field.
	var probe struct {
		Camera *yaml.Node `yaml:"camera"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if probe.Camera != nil {
		cfg.Camera = platepar.CameraModel{}
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration and fills derived fields. A camera
// without a reference hour angle gets the one implied by its JD.
func (c *Config) Validate() error {
	if c.Camera.Ho == 0 && c.Camera.JD != 0 {
		c.Camera.Ho = platepar.ReferenceHourAngle(c.Camera.JD)
	}
	if err := c.Camera.Validate(); err != nil {
		return fmt.Errorf("camera: %w", err)
	}

	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("log_format %q: want text or json", c.LogFormat)
	}

	for i, tr := range c.Tracks {
		if !(tr.FPS > 0) {
			return fmt.Errorf("tracks[%d]: %w: fps must be positive", i, projection.ErrInvalidTrack)
		}
	}
	return nil
}

// PhotometryStars returns the stars to fit, restricted to the central part
// of the image when configured.
func (c Config) PhotometryStars() []photometry.StarMeasurement {
	if c.Photometry.CentralOnly {
		return photometry.SelectCentral(c.Photometry.Stars, c.Camera.XRes, c.Camera.YRes)
	}
	return c.Photometry.Stars
}
