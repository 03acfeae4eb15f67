package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds the noise model of the per-track box estimator.
// Every field is optional; the Get* methods fall back to the SORT values,
// so an empty file is a valid configuration.
type TuningConfig struct {
	// Process noise (σ² added per predict step)
	ProcessNoisePos     *float64 `json:"process_noise_pos,omitempty"`      // cx, cy, area, ratio
	ProcessNoiseVel     *float64 `json:"process_noise_vel,omitempty"`      // vcx, vcy
	ProcessNoiseAreaVel *float64 `json:"process_noise_area_vel,omitempty"` // varea

	// Measurement noise (σ²)
	MeasurementNoisePos   *float64 `json:"measurement_noise_pos,omitempty"`   // cx, cy
	MeasurementNoiseShape *float64 `json:"measurement_noise_shape,omitempty"` // area, ratio

	// Initial estimate covariance
	InitialCovObserved *float64 `json:"initial_cov_observed,omitempty"` // cx, cy, area, ratio
	InitialCovVelocity *float64 `json:"initial_cov_velocity,omitempty"` // vcx, vcy, varea
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted
// from the file keep their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/tracking/debug/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that every configured variance is finite. Process noise
// may be zero; measurement noise and initial covariance must be positive,
// otherwise the innovation covariance can become singular.
func (c *TuningConfig) Validate() error {
	nonNegative := []struct {
		name string
		v    *float64
	}{
		{"process_noise_pos", c.ProcessNoisePos},
		{"process_noise_vel", c.ProcessNoiseVel},
		{"process_noise_area_vel", c.ProcessNoiseAreaVel},
	}
	for _, f := range nonNegative {
		if f.v == nil {
			continue
		}
		if !finite(*f.v) || *f.v < 0 {
			return fmt.Errorf("%s must be a finite non-negative variance, got %v", f.name, *f.v)
		}
	}

	positive := []struct {
		name string
		v    *float64
	}{
		{"measurement_noise_pos", c.MeasurementNoisePos},
		{"measurement_noise_shape", c.MeasurementNoiseShape},
		{"initial_cov_observed", c.InitialCovObserved},
		{"initial_cov_velocity", c.InitialCovVelocity},
	}
	for _, f := range positive {
		if f.v == nil {
			continue
		}
		if !finite(*f.v) || *f.v <= 0 {
			return fmt.Errorf("%s must be a finite positive variance, got %v", f.name, *f.v)
		}
	}

	return nil
}

// GetProcessNoisePos returns the process_noise_pos value or the default.
func (c *TuningConfig) GetProcessNoisePos() float64 {
	if c.ProcessNoisePos == nil {
		return 1
	}
	return *c.ProcessNoisePos
}

// GetProcessNoiseVel returns the process_noise_vel value or the default.
func (c *TuningConfig) GetProcessNoiseVel() float64 {
	if c.ProcessNoiseVel == nil {
		return 0.01
	}
	return *c.ProcessNoiseVel
}

// GetProcessNoiseAreaVel returns the process_noise_area_vel value or the default.
func (c *TuningConfig) GetProcessNoiseAreaVel() float64 {
	if c.ProcessNoiseAreaVel == nil {
		return 0.0001
	}
	return *c.ProcessNoiseAreaVel
}

// GetMeasurementNoisePos returns the measurement_noise_pos value or the default.
func (c *TuningConfig) GetMeasurementNoisePos() float64 {
	if c.MeasurementNoisePos == nil {
		return 1
	}
	return *c.MeasurementNoisePos
}

// GetMeasurementNoiseShape returns the measurement_noise_shape value or the default.
func (c *TuningConfig) GetMeasurementNoiseShape() float64 {
	if c.MeasurementNoiseShape == nil {
		return 10
	}
	return *c.MeasurementNoiseShape
}

// GetInitialCovObserved returns the initial_cov_observed value or the default.
func (c *TuningConfig) GetInitialCovObserved() float64 {
	if c.InitialCovObserved == nil {
		return 10
	}
	return *c.InitialCovObserved
}

// GetInitialCovVelocity returns the initial_cov_velocity value or the default.
func (c *TuningConfig) GetInitialCovVelocity() float64 {
	if c.InitialCovVelocity == nil {
		return 10000
	}
	return *c.InitialCovVelocity
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
