package geom

import "math"

// Dimensions of the constant-velocity box model.
const (
	NumStates       = 7
	NumMeasurements = 4
)

// State indices.
const (
	IdxCX = iota
	IdxCY
	IdxArea
	IdxRatio
	IdxVCX
	IdxVCY
	IdxVArea
)

// State is the filter state [cx, cy, area, ratio, vcx, vcy, varea].
// Aspect ratio has no velocity term: it is assumed constant over one step.
type State [NumStates]float64

// Measurement is the observed part of the state [cx, cy, area, ratio].
type Measurement [NumMeasurements]float64

// MeasurementFromBox converts a box into the observed quantities.
func MeasurementFromBox(b BoundingBox) Measurement {
	return Measurement{b.CX, b.CY, b.Area(), b.Ratio()}
}

// StateFromBox returns the state that represents b exactly, with all
// velocities set to zero.
func StateFromBox(b BoundingBox) State {
	var s State
	m := MeasurementFromBox(b)
	copy(s[:NumMeasurements], m[:])
	return s
}

// BoxFromState maps a filter state back to box geometry.
//
// Area is clamped to zero: a constant-velocity prediction can drive the
// area negative after several missed corrections. When the clamped area
// times the ratio is not positive (zero area, or a non-positive ratio) or
// the result is not finite, the box collapses to zero size at the state's
// centre instead of producing NaN dimensions.
func BoxFromState(s State) BoundingBox {
	area := RectifiedArea(s)
	wsq := area * s[IdxRatio]
	box := BoundingBox{CX: s[IdxCX], CY: s[IdxCY]}
	if !(wsq > 0) || math.IsInf(wsq, 0) {
		return box
	}
	w := math.Sqrt(wsq)
	h := area / w
	if !isFinite(h) {
		return box
	}
	box.Width = w
	box.Height = h
	return box
}

// RectifiedArea returns max(area, 0) for s.
func RectifiedArea(s State) float64 {
	return math.Max(s[IdxArea], 0)
}

// IsDegenerate reports whether BoxFromState would have to clamp the area or
// collapse the box for s.
func IsDegenerate(s State) bool {
	return !(s[IdxArea] > 0) || BoxFromState(s).IsEmpty()
}
