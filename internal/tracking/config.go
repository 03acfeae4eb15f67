package tracking

import (
	"errors"
	"fmt"

	"github.com/banshee-data/boxtrack/internal/config"
	"github.com/banshee-data/boxtrack/internal/geom"
	"github.com/banshee-data/boxtrack/internal/kalman"
)

// ErrInvalidConfig is returned by NewEstimator for a Config whose variances
// are negative, non-finite, or zero where the filter needs them positive.
var ErrInvalidConfig = errors.New("invalid estimator config")

// Config holds the noise model of the constant-velocity box filter.
// All values are variances (σ²).
type Config struct {
	ProcessNoisePos       float64 // cx, cy, area, ratio growth per step
	ProcessNoiseVel       float64 // vcx, vcy growth per step
	ProcessNoiseAreaVel   float64 // varea growth per step
	MeasurementNoisePos   float64 // cx, cy
	MeasurementNoiseShape float64 // area, ratio
	InitialCovObserved    float64 // cx, cy, area, ratio at birth
	InitialCovVelocity    float64 // vcx, vcy, varea at birth
}

// DefaultConfig returns the SORT noise model. It does not read any file.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		ProcessNoisePos:       cfg.GetProcessNoisePos(),
		ProcessNoiseVel:       cfg.GetProcessNoiseVel(),
		ProcessNoiseAreaVel:   cfg.GetProcessNoiseAreaVel(),
		MeasurementNoisePos:   cfg.GetMeasurementNoisePos(),
		MeasurementNoiseShape: cfg.GetMeasurementNoiseShape(),
		InitialCovObserved:    cfg.GetInitialCovObserved(),
		InitialCovVelocity:    cfg.GetInitialCovVelocity(),
	}
}

// Validate applies the same rules as config.TuningConfig.Validate.
func (c Config) Validate() error {
	if err := c.tuning().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) tuning() *config.TuningConfig {
	return &config.TuningConfig{
		ProcessNoisePos:       &c.ProcessNoisePos,
		ProcessNoiseVel:       &c.ProcessNoiseVel,
		ProcessNoiseAreaVel:   &c.ProcessNoiseAreaVel,
		MeasurementNoisePos:   &c.MeasurementNoisePos,
		MeasurementNoiseShape: &c.MeasurementNoiseShape,
		InitialCovObserved:    &c.InitialCovObserved,
		InitialCovVelocity:    &c.InitialCovVelocity,
	}
}

// model builds the filter matrices for c.
//
//	F = [1 0 0 0 1 0 0]    H = [1 0 0 0 0 0 0]
//	    [0 1 0 0 0 1 0]        [0 1 0 0 0 0 0]
//	    [0 0 1 0 0 0 1]        [0 0 1 0 0 0 0]
//	    [0 0 0 1 0 0 0]        [0 0 0 1 0 0 0]
//	    [0 0 0 0 1 0 0]
//	    [0 0 0 0 0 1 0]
//	    [0 0 0 0 0 0 1]
//
// Ratio has no velocity coupling.
func (c Config) model() (kalman.Model, kalman.Matrix) {
	var m kalman.Model
	var p0 kalman.Matrix

	for i := 0; i < kalman.N; i++ {
		m.F[i][i] = 1
	}
	m.F[geom.IdxCX][geom.IdxVCX] = 1
	m.F[geom.IdxCY][geom.IdxVCY] = 1
	m.F[geom.IdxArea][geom.IdxVArea] = 1

	for i := 0; i < kalman.M; i++ {
		m.H[i][i] = 1
	}

	for i := geom.IdxCX; i <= geom.IdxRatio; i++ {
		m.Q[i][i] = c.ProcessNoisePos
		p0[i][i] = c.InitialCovObserved
	}
	m.Q[geom.IdxVCX][geom.IdxVCX] = c.ProcessNoiseVel
	m.Q[geom.IdxVCY][geom.IdxVCY] = c.ProcessNoiseVel
	m.Q[geom.IdxVArea][geom.IdxVArea] = c.ProcessNoiseAreaVel
	for i := geom.IdxVCX; i <= geom.IdxVArea; i++ {
		p0[i][i] = c.InitialCovVelocity
	}

	m.R[geom.IdxCX][geom.IdxCX] = c.MeasurementNoisePos
	m.R[geom.IdxCY][geom.IdxCY] = c.MeasurementNoisePos
	m.R[geom.IdxArea][geom.IdxArea] = c.MeasurementNoiseShape
	m.R[geom.IdxRatio][geom.IdxRatio] = c.MeasurementNoiseShape

	return m, p0
}
