package tracking

import (
	"errors"
	"fmt"

	"github.com/banshee-data/boxtrack/internal/geom"
	"github.com/banshee-data/boxtrack/internal/kalman"
	"github.com/google/uuid"
)

var (
	// ErrClassMismatch is returned by Correct when the detection's class
	// differs from the track's class.
	ErrClassMismatch = errors.New("detection class does not match track")
	// ErrEstimatorMoved is returned by Correct on an estimator whose filter
	// was transferred away with Move.
	ErrEstimatorMoved = errors.New("estimator has been moved")
	// ErrNilRegistry is returned by NewEstimator when no IDRegistry is given.
	ErrNilRegistry = errors.New("nil id registry")
)

// DebugCollector receives filter internals for visualisation and tuning.
// Implementations must be cheap when IsEnabled reports false.
type DebugCollector interface {
	IsEnabled() bool
	RecordPrediction(className string, id int, predicted geom.State)
	RecordInnovation(className string, id int, predicted, measured geom.Measurement)
	RecordDegenerate(className string, id int, state geom.State)
}

// Option configures an Estimator at construction.
type Option func(*Estimator)

// WithConfig overrides the default noise model. NewEstimator rejects a
// Config that fails Validate.
func WithConfig(cfg Config) Option {
	return func(e *Estimator) {
		e.cfg = cfg
	}
}

// WithDebugCollector attaches a collector for predictions, innovations and
// degenerate states.
func WithDebugCollector(dc DebugCollector) Option {
	return func(e *Estimator) {
		e.debug = dc
	}
}

// Estimator is the motion-state estimate of one tracked object.
//
// Each cycle the owner calls exactly one of Advance (no matching detection)
// or Correct (matched detection). An Estimator is not safe for concurrent
// use; it is owned by a single caller.
type Estimator struct {
	filter *kalman.Filter
	cfg    Config
	debug  DebugCollector

	className string
	id        int
	uuid      uuid.UUID

	timeSinceUpdate int
	hitStreak       int
	age             int
}

// NewEstimator starts a track from its first detection. The filter is seeded
// directly from the detection with zero velocity, and the track claims the
// next identity for the detection's class from reg. Invalid detections are
// rejected before an identity is claimed.
func NewEstimator(reg *IDRegistry, det geom.Detection, opts ...Option) (*Estimator, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if err := det.Validate(); err != nil {
		Opsf("rejecting new track: %v", err)
		return nil, err
	}

	e := &Estimator{
		cfg:       DefaultConfig(),
		className: det.ClassName,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.cfg.Validate(); err != nil {
		Opsf("rejecting new track: %v", err)
		return nil, err
	}

	f, err := kalman.New(e.cfg.model())
	if err != nil {
		return nil, fmt.Errorf("build filter for class %q: %w", det.ClassName, err)
	}
	if _, err := f.Update(kalman.Measurement(geom.MeasurementFromBox(det.Box))); err != nil {
		return nil, fmt.Errorf("seed filter for class %q: %w", det.ClassName, err)
	}
	e.filter = f
	e.id = reg.Next(det.ClassName)
	e.uuid = uuid.New()

	Tracef("track %s#%d created at %s", e.className, e.id, det.Box)
	return e, nil
}

// Advance moves the estimate one step forward with no measurement. The
// track has missed this cycle: time since update grows and the hit streak
// is broken. Advance on a moved estimator does nothing.
func (e *Estimator) Advance() {
	if e.filter == nil {
		return
	}
	e.filter.Predict()
	e.timeSinceUpdate++
	e.hitStreak = 0
	e.age++

	state := e.State()
	if e.debugEnabled() {
		e.debug.RecordPrediction(e.className, e.id, state)
	}
	e.checkDegenerate(state)
	if traceEnabled() {
		Tracef("track %s#%d advance: tsu=%d box=%s", e.className, e.id, e.timeSinceUpdate, geom.BoxFromState(state))
	}
}

// Correct folds a matched detection into the estimate. The detection's
// class must equal the track's class. On error nothing is changed: neither
// the filter nor the counters.
func (e *Estimator) Correct(det geom.Detection) error {
	if e.filter == nil {
		return ErrEstimatorMoved
	}
	if err := det.Validate(); err != nil {
		Opsf("track %s#%d: rejecting correction: %v", e.className, e.id, err)
		return err
	}
	if det.ClassName != e.className {
		return fmt.Errorf("%w: track %s#%d, detection %q", ErrClassMismatch, e.className, e.id, det.ClassName)
	}

	z := geom.MeasurementFromBox(det.Box)
	var predicted geom.Measurement
	if e.debugEnabled() {
		xb := e.filter.PredictedNextState()
		copy(predicted[:], xb[:geom.NumMeasurements])
	}

	if _, err := e.filter.Update(kalman.Measurement(z)); err != nil {
		Opsf("track %s#%d: correction failed: %v", e.className, e.id, err)
		return fmt.Errorf("track %s#%d: %w", e.className, e.id, err)
	}
	e.timeSinceUpdate = 0
	e.hitStreak++
	e.age++

	state := e.State()
	if e.debugEnabled() {
		e.debug.RecordInnovation(e.className, e.id, predicted, z)
	}
	e.checkDegenerate(state)
	if traceEnabled() {
		Tracef("track %s#%d correct: streak=%d box=%s", e.className, e.id, e.hitStreak, geom.BoxFromState(state))
	}
	return nil
}

// PredictedNextDetection returns the box the track expects at the next
// cycle, projected one step ahead without advancing the filter.
func (e *Estimator) PredictedNextDetection() geom.Detection {
	if e.filter == nil {
		return geom.Detection{}
	}
	return geom.Detection{
		ClassName: e.className,
		Box:       geom.BoxFromState(geom.State(e.filter.PredictedNextState())),
	}
}

// Tracking returns the current belief after the latest Advance or Correct.
func (e *Estimator) Tracking() geom.Tracking {
	if e.filter == nil {
		return geom.Tracking{}
	}
	return geom.Tracking{
		ClassName: e.className,
		ID:        e.id,
		Box:       geom.BoxFromState(e.State()),
	}
}

// State returns the current filter state.
func (e *Estimator) State() geom.State {
	if e.filter == nil {
		return geom.State{}
	}
	return geom.State(e.filter.CurrentState())
}

// Velocity returns the inferred per-step velocities of centre and area.
func (e *Estimator) Velocity() (vcx, vcy, varea float64) {
	s := e.State()
	return s[geom.IdxVCX], s[geom.IdxVCY], s[geom.IdxVArea]
}

// TimeSinceUpdate is the number of consecutive Advance calls since the last
// Correct.
func (e *Estimator) TimeSinceUpdate() int { return e.timeSinceUpdate }

// HitStreak is the number of consecutive Correct calls since the last
// Advance.
func (e *Estimator) HitStreak() int { return e.hitStreak }

// Age is the number of Advance and Correct calls since creation.
func (e *Estimator) Age() int { return e.age }

// ID is the per-class identity, starting at 1.
func (e *Estimator) ID() int { return e.id }

// ClassName is the class label the track was created with.
func (e *Estimator) ClassName() string { return e.className }

// UUID identifies the track across all classes.
func (e *Estimator) UUID() uuid.UUID { return e.uuid }

// Valid reports whether the estimator still owns its filter.
func (e *Estimator) Valid() bool { return e.filter != nil }

// Move transfers the estimator, filter included, to a new value and leaves
// e empty. An empty estimator reports Valid() == false, ignores Advance,
// rejects Correct with ErrEstimatorMoved and returns zero snapshots.
func (e *Estimator) Move() *Estimator {
	moved := *e
	*e = Estimator{}
	return &moved
}

func (e *Estimator) String() string {
	if e.filter == nil {
		return "<moved>"
	}
	return e.PredictedNextDetection().String()
}

func (e *Estimator) debugEnabled() bool {
	return e.debug != nil && e.debug.IsEnabled()
}

// checkDegenerate reports states whose box had to be clamped or collapsed.
// The state itself is left alone: later corrections can recover it.
func (e *Estimator) checkDegenerate(s geom.State) {
	if !geom.IsDegenerate(s) {
		return
	}
	if e.debugEnabled() {
		e.debug.RecordDegenerate(e.className, e.id, s)
	}
	if diagEnabled() {
		Diagf("track %s#%d degenerate state: area=%.3f ratio=%.3f (tsu=%d)",
			e.className, e.id, s[geom.IdxArea], s[geom.IdxRatio], e.timeSinceUpdate)
	}
	if opsEnabled() && !e.filter.IsFinite() {
		Opsf("track %s#%d filter is no longer finite", e.className, e.id)
	}
}
