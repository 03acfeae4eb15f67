// Package debug provides instrumentation for the box estimator.
// The DebugCollector captures filter internals (one-step predictions,
// innovations, degenerate states) for visualisation and tuning.
package debug

import (
	"math"

	"github.com/banshee-data/boxtrack/internal/geom"
)

// Pre-allocation capacities for debug frame slices. A busy frame carries
// ~10-20 live tracks, each producing one prediction or one innovation.
const (
	defaultPredictionCapacity = 16
	defaultInnovationCapacity = 16
	defaultDegenerateCapacity = 4
)

// DebugCollector accumulates debug artifacts during a single frame's processing.
//
// The collector is stateful: call BeginFrame, let estimators call the
// Record*() methods, then Emit() at frame completion. It is not safe for
// concurrent use, matching the single-owner estimators that feed it.
type DebugCollector struct {
	enabled bool
	current *DebugFrame
}

// DebugFrame contains all debug artifacts for a single frame.
type DebugFrame struct {
	FrameID uint64

	// Advance: one-step predictions of tracks with no matching detection
	StatePredictions []StatePrediction

	// Correct: measurement residuals against the projected state
	Innovations []KalmanInnovation

	// Clamped or collapsed states
	Degenerate []DegenerateState
}

// TrackKey identifies a track within a frame.
type TrackKey struct {
	ClassName string
	ID        int
}

// StatePrediction is a track's state after an Advance.
type StatePrediction struct {
	Track TrackKey
	State geom.State
	Box   geom.BoundingBox
}

// KalmanInnovation is the residual between a measurement and the projected
// state it corrected.
type KalmanInnovation struct {
	Track     TrackKey
	Predicted geom.Measurement
	Measured  geom.Measurement
	// CentreResidual is the Euclidean distance between predicted and
	// measured centres, in pixels.
	CentreResidual float64
}

// DegenerateState records a state whose box had to be clamped or collapsed.
type DegenerateState struct {
	Track TrackKey
	Area  float64
	Ratio float64
}

// NewDebugCollector creates a collector that's initially disabled.
// Call SetEnabled(true) to begin collecting artifacts.
func NewDebugCollector() *DebugCollector {
	return &DebugCollector{}
}

// SetEnabled controls whether the collector records artifacts.
// When disabled, all Record*() calls are no-ops.
func (c *DebugCollector) SetEnabled(enabled bool) {
	c.enabled = enabled
}

// IsEnabled returns true if the collector is actively recording.
func (c *DebugCollector) IsEnabled() bool {
	return c.enabled
}

// BeginFrame initialises collection for a new frame.
// Must be called before any Record*() calls.
func (c *DebugCollector) BeginFrame(frameID uint64) {
	if !c.enabled {
		return
	}
	c.current = &DebugFrame{
		FrameID:          frameID,
		StatePredictions: make([]StatePrediction, 0, defaultPredictionCapacity),
		Innovations:      make([]KalmanInnovation, 0, defaultInnovationCapacity),
		Degenerate:       make([]DegenerateState, 0, defaultDegenerateCapacity),
	}
}

// RecordPrediction captures a track's state after an Advance.
func (c *DebugCollector) RecordPrediction(className string, id int, predicted geom.State) {
	if !c.enabled || c.current == nil {
		return
	}
	c.current.StatePredictions = append(c.current.StatePredictions, StatePrediction{
		Track: TrackKey{ClassName: className, ID: id},
		State: predicted,
		Box:   geom.BoxFromState(predicted),
	})
}

// RecordInnovation captures a measurement residual from a Correct.
func (c *DebugCollector) RecordInnovation(className string, id int, predicted, measured geom.Measurement) {
	if !c.enabled || c.current == nil {
		return
	}
	dx := measured[geom.IdxCX] - predicted[geom.IdxCX]
	dy := measured[geom.IdxCY] - predicted[geom.IdxCY]
	c.current.Innovations = append(c.current.Innovations, KalmanInnovation{
		Track:          TrackKey{ClassName: className, ID: id},
		Predicted:      predicted,
		Measured:       measured,
		CentreResidual: math.Hypot(dx, dy),
	})
}

// RecordDegenerate captures a clamped or collapsed state.
func (c *DebugCollector) RecordDegenerate(className string, id int, state geom.State) {
	if !c.enabled || c.current == nil {
		return
	}
	c.current.Degenerate = append(c.current.Degenerate, DegenerateState{
		Track: TrackKey{ClassName: className, ID: id},
		Area:  state[geom.IdxArea],
		Ratio: state[geom.IdxRatio],
	})
}

// Emit returns the accumulated debug frame and prepares for the next frame.
// Returns nil if collection is disabled or no frame was begun.
func (c *DebugCollector) Emit() *DebugFrame {
	if !c.enabled || c.current == nil {
		return nil
	}
	frame := c.current
	c.current = nil
	return frame
}

// Reset clears any pending artifacts without emitting them.
func (c *DebugCollector) Reset() {
	c.current = nil
}
