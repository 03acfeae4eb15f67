package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDetection is returned for detections whose geometry cannot be
// converted into a measurement (non-positive or non-finite width/height,
// non-finite centre, or a missing class label).
var ErrInvalidDetection = errors.New("invalid detection")

// BoundingBox is an axis-aligned box described by its centre and size,
// in image pixels.
type BoundingBox struct {
	CX     float64
	CY     float64
	Width  float64
	Height float64
}

// BoxFromCorners builds a BoundingBox from top-left (x1, y1) and
// bottom-right (x2, y2) corners, the layout most detectors emit.
func BoxFromCorners(x1, y1, x2, y2 float64) BoundingBox {
	w := x2 - x1
	h := y2 - y1
	return BoundingBox{
		CX:     x1 + w/2,
		CY:     y1 + h/2,
		Width:  w,
		Height: h,
	}
}

// Area returns Width*Height.
func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}

// Ratio returns the aspect ratio Width/Height.
func (b BoundingBox) Ratio() float64 {
	return b.Width / b.Height
}

// Corners returns the top-left and bottom-right corners.
func (b BoundingBox) Corners() (x1, y1, x2, y2 float64) {
	return b.CX - b.Width/2, b.CY - b.Height/2, b.CX + b.Width/2, b.CY + b.Height/2
}

// IsEmpty reports whether the box has collapsed to zero size. BoxFromState
// produces empty boxes for degenerate filter states.
func (b BoundingBox) IsEmpty() bool {
	return b.Width == 0 || b.Height == 0
}

// Validate checks that the box can be turned into a finite measurement.
func (b BoundingBox) Validate() error {
	if !isFinite(b.CX) || !isFinite(b.CY) {
		return fmt.Errorf("%w: non-finite centre (%g, %g)", ErrInvalidDetection, b.CX, b.CY)
	}
	if !isFinite(b.Width) || !isFinite(b.Height) {
		return fmt.Errorf("%w: non-finite size %gx%g", ErrInvalidDetection, b.Width, b.Height)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: non-positive size %gx%g", ErrInvalidDetection, b.Width, b.Height)
	}
	return nil
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[cx=%.2f cy=%.2f w=%.2f h=%.2f]", b.CX, b.CY, b.Width, b.Height)
}

// Detection is a single labelled box produced by an upstream detector.
type Detection struct {
	ClassName string
	Box       BoundingBox
}

// Validate rejects detections that would corrupt a filter if folded in.
func (d Detection) Validate() error {
	if d.ClassName == "" {
		return fmt.Errorf("%w: empty class name", ErrInvalidDetection)
	}
	if err := d.Box.Validate(); err != nil {
		return fmt.Errorf("class %q: %w", d.ClassName, err)
	}
	return nil
}

func (d Detection) String() string {
	return fmt.Sprintf("%s %s", d.ClassName, d.Box)
}

// Tracking is the externally visible belief of one track.
type Tracking struct {
	ClassName string
	ID        int
	Box       BoundingBox
}

func (t Tracking) String() string {
	return fmt.Sprintf("%s#%d %s", t.ClassName, t.ID, t.Box)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
