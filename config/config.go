// Package config holds the parameters of a boids simulation
// and reads them from TOML or YAML files.
package config

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/PrincetonUniversity/boids"
)

// DriveConfig holds one parameter per drive.
type DriveConfig struct {
	Separation float64 `toml:"separation" yaml:"separation"`
	Alignment  float64 `toml:"alignment" yaml:"alignment"`
	Cohesion   float64 `toml:"cohesion" yaml:"cohesion"`
}

// PerDrive converts d to the representation used by the simulation core.
func (d DriveConfig) PerDrive() boids.PerDrive {
	return boids.PerDrive{
		boids.Separation: d.Separation,
		boids.Alignment:  d.Alignment,
		boids.Cohesion:   d.Cohesion,
	}
}

// Config holds the various parameters required for running a simulation.
type Config struct {
	// Output is either a filename (path) for the recording, whose format
	// is chosen by extension (.csv, .csv.zst, .sqlite, .db, .h5, .hdf5),
	// or the empty string for an interactive simulation.
	Output string `toml:"output" yaml:"output"`

	// Viewer is the interactive front-end: opengl or terminal.
	Viewer string `toml:"viewer" yaml:"viewer"`

	Dim       int    `toml:"dim" yaml:"dim"`               // dimension of space (2 or 3 usually)
	FlockSize int    `toml:"flock_size" yaml:"flock_size"` // number of boids
	Steps     int    `toml:"steps" yaml:"steps"`           // number of ticks (recording only)
	Seed      uint64 `toml:"seed" yaml:"seed"`             // 0 picks a seed from the clock
	Workers   int    `toml:"workers" yaml:"workers"`       // 0 uses GOMAXPROCS

	// Initial conditions
	Spawn         string  `toml:"spawn" yaml:"spawn"`                   // possible values: box, disc
	PositionRange float64 `toml:"position_range" yaml:"position_range"` // unit: length
	VelocityRange float64 `toml:"velocity_range" yaml:"velocity_range"` // unit: length/tick

	// Boids parameters
	PerceptionDistance DriveConfig `toml:"perception_distance" yaml:"perception_distance"` // unit: length
	FieldOfView        DriveConfig `toml:"field_of_view" yaml:"field_of_view"`             // unit: rad
	Weights            DriveConfig `toml:"weights" yaml:"weights"`                         // unit: 1
	Mass               float64     `toml:"mass" yaml:"mass"`                               // unit: mass
	MaxVelocity        float64     `toml:"max_velocity" yaml:"max_velocity"`               // unit: length/tick
	MaxForce           float64     `toml:"max_force" yaml:"max_force"`                     // unit: mass*length/tick²

	// Logging
	LogLevel      string `toml:"log_level" yaml:"log_level"`   // debug, info, warn, error
	LogFormat     string `toml:"log_format" yaml:"log_format"` // text, json
	ProgressEvery int    `toml:"progress_every" yaml:"progress_every"`

	// Interactive display
	FrameMillis int     `toml:"frame_millis" yaml:"frame_millis"` // minimum duration of a frame
	Xmin        float64 `toml:"xmin" yaml:"xmin"`                 // bounds of default viewport
	Ymin        float64 `toml:"ymin" yaml:"ymin"`
	Xmax        float64 `toml:"xmax" yaml:"xmax"`
	Ymax        float64 `toml:"ymax" yaml:"ymax"`
}

// Default returns the default parameters.
func Default() *Config {
	return &Config{
		Output:        "",
		Viewer:        "terminal",
		Dim:           2,
		FlockSize:     20,
		Steps:         200,
		Seed:          0,
		Workers:       0,
		Spawn:         "box",
		PositionRange: 10,
		VelocityRange: 1,
		PerceptionDistance: DriveConfig{
			Separation: 5,
			Alignment:  10,
			Cohesion:   15,
		},
		FieldOfView: DriveConfig{
			Separation: math.Pi / 2,
			Alignment:  2 * math.Pi / 3,
			Cohesion:   math.Pi,
		},
		Weights: DriveConfig{
			Separation: 1.0 / 3,
			Alignment:  1.0 / 3,
			Cohesion:   1.0 / 3,
		},
		Mass:          1,
		MaxVelocity:   10,
		MaxForce:      5,
		LogLevel:      "info",
		LogFormat:     "text",
		ProgressEvery: 100,
		FrameMillis:   50,
		Xmin:          -50,
		Ymin:          -50,
		Xmax:          50,
		Ymax:          50,
	}
}

// Load parses the TOML (.toml) or YAML (.yaml, .yml) config file whose
// path is provided. Values in the file override the defaults.
func Load(path string) (*Config, error) {
	conf := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.DecodeFile(path, conf)
		if err != nil {
			return nil, err
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, fmt.Errorf("%s: unknown keys %v", path, keys)
		}
	case ".yaml", ".yml":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(conf); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported config format (want .toml, .yaml or .yml)", path)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return conf, nil
}

// Validate rejects parameters the simulation cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Dim < 1:
		return fmt.Errorf("config: dim must be positive, got %d", c.Dim)
	case c.FlockSize < 0:
		return fmt.Errorf("config: negative flock size %d", c.FlockSize)
	case c.Steps < 0:
		return fmt.Errorf("config: negative number of steps %d", c.Steps)
	case c.Workers < 0:
		return fmt.Errorf("config: negative number of workers %d", c.Workers)
	case c.Mass == 0:
		return fmt.Errorf("config: mass must not be zero")
	case c.MaxVelocity < 0 || c.MaxForce < 0:
		return fmt.Errorf("config: velocity and force limits must not be negative")
	case c.PositionRange < 0 || c.VelocityRange <= 0:
		return fmt.Errorf("config: position range must not be negative and velocity range must be positive")
	case c.Xmin >= c.Xmax || c.Ymin >= c.Ymax:
		return fmt.Errorf("config: empty viewport")
	}
	switch c.Spawn {
	case "box", "disc":
	default:
		return fmt.Errorf("config: bad spawn type %q", c.Spawn)
	}
	switch c.Viewer {
	case "opengl", "terminal":
	default:
		return fmt.Errorf("config: bad viewer %q", c.Viewer)
	}
	return nil
}

// Template returns the state of a boid shared by the whole flock:
// everything but the id, position and velocity.
func (c *Config) Template() boids.State {
	return boids.State{
		PerceptionDistance: c.PerceptionDistance.PerDrive(),
		FieldOfView:        c.FieldOfView.PerDrive(),
		Weights:            c.Weights.PerDrive(),
		Mass:               c.Mass,
		MaxVelocity:        c.MaxVelocity,
		MaxForce:           c.MaxForce,
	}
}
