// Package config holds runtime settings shared by the batch commands, with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/jmylchreest/vecprep/internal/image"
	"github.com/jmylchreest/vecprep/internal/region"
)

// Environment variables read by Builder.WithEnvConfig.
const (
	EnvWorkers   = "VECPREP_WORKERS"
	EnvMaxPixels = "VECPREP_MAX_PIXELS"
	EnvMinArea   = "VECPREP_MIN_AREA"
	EnvTracer    = "VECPREP_TRACER"
)

// Config holds runtime settings.
type Config struct {
	// Workers is the number of classification goroutines.
	Workers int

	// MaxPixels is the pixel count above which inputs are downscaled.
	// Zero disables downscaling.
	MaxPixels int

	// MinArea is the smallest region kept by segmentation.
	MinArea int

	// TracerPath is the default tracer plugin executable.
	TracerPath string
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Workers:   runtime.GOMAXPROCS(0),
		MaxPixels: image.DefaultMaxPixels,
		MinArea:   region.DefaultMinArea,
	}
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxPixels < 0 {
		return fmt.Errorf("max pixels must not be negative, got %d", c.MaxPixels)
	}
	if c.MinArea < 0 {
		return fmt.Errorf("min area must not be negative, got %d", c.MinArea)
	}
	return nil
}

// Builder provides a fluent interface for constructing a Config.
type Builder struct {
	config Config
	useEnv bool
}

// NewBuilder creates a builder starting from Default.
func NewBuilder() *Builder {
	return &Builder{config: Default()}
}

// WithConfig replaces the base configuration.
func (b *Builder) WithConfig(config Config) *Builder {
	b.config = config
	return b
}

// WithEnvConfig applies VECPREP_WORKERS, VECPREP_MAX_PIXELS, VECPREP_MIN_AREA and
// VECPREP_TRACER when they are set.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// Build returns the validated configuration.
func (b *Builder) Build() (Config, error) {
	config := b.config

	if b.useEnv {
		for _, v := range []struct {
			name string
			dst  *int
		}{
			{EnvWorkers, &config.Workers},
			{EnvMaxPixels, &config.MaxPixels},
			{EnvMinArea, &config.MinArea},
		} {
			s := os.Getenv(v.name)
			if s == "" {
				continue
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s=%q: %w", v.name, s, err)
			}
			*v.dst = n
		}
		if tracer := os.Getenv(EnvTracer); tracer != "" {
			config.TracerPath = tracer
		}
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
