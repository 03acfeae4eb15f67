// Package kalman implements a small fixed-size linear Kalman filter.
//
// All matrices are Go arrays sized at compile time (N states, M
// measurements) so Predict and Update run without heap allocation.
package kalman

import (
	"errors"
	"math"
)

// Filter dimensions.
const (
	N = 7 // states
	M = 4 // measurements
)

var (
	// ErrSingularInnovation is returned by Update when H P Hᵀ + R cannot be
	// inverted. The filter is left untouched.
	ErrSingularInnovation = errors.New("kalman: singular innovation covariance")
	// ErrRankDeficientObservation is returned by New when H Hᵀ is singular,
	// i.e. H cannot be used to seed the state from the first measurement.
	ErrRankDeficientObservation = errors.New("kalman: observation model is rank deficient")
)

type (
	// Vector is a state vector.
	Vector [N]float64
	// Measurement is an observation vector.
	Measurement [M]float64
	// Matrix is an N×N state matrix (transition, covariance).
	Matrix [N][N]float64
	// Observation maps state to measurement space (M×N).
	Observation [M][N]float64
	// MeasCov is an M×M measurement-space matrix.
	MeasCov [M][M]float64
	// Gain is an N×M matrix.
	Gain [N][M]float64
)

// Model is the fixed linear model of a filter.
type Model struct {
	F Matrix      // transition
	H Observation // observation
	Q Matrix      // process noise covariance
	R MeasCov     // measurement noise covariance
}

// Filter tracks the current state x, its covariance P and the one-step
// prediction xb = F x.
//
// Update folds the covariance propagation and the correction into one step:
// a cycle is either Predict (no measurement) or Update (measurement), never
// both. The very first Update has no prior prediction and seeds the state
// from the measurement via the pseudo-inverse of H, which leaves unobserved
// components at zero.
type Filter struct {
	model Model
	pinvH Gain

	x  Vector
	xb Vector
	P  Matrix

	gotFirst bool
}

// New builds a filter for m with initial estimate covariance p0.
func New(m Model, p0 Matrix) (*Filter, error) {
	pinv, ok := pseudoInverse(&m.H)
	if !ok {
		return nil, ErrRankDeficientObservation
	}
	return &Filter{
		model: m,
		pinvH: pinv,
		P:     p0,
	}, nil
}

// Update propagates the covariance one step and corrects the estimate with
// measurement z. It returns the innovation z - H xb (zero for the first
// measurement).
func (f *Filter) Update(z Measurement) (Measurement, error) {
	var innovation Measurement

	p := f.propagatedCovariance()

	// S = H P Hᵀ + R
	var pht Gain
	mulPHt(&pht, &p, &f.model.H)
	var s MeasCov
	for i := 0; i < M; i++ {
		for j := 0; j < M; j++ {
			var sum float64
			for k := 0; k < N; k++ {
				sum += f.model.H[i][k] * pht[k][j]
			}
			s[i][j] = sum + f.model.R[i][j]
		}
	}

	sinv, ok := invert(&s)
	if !ok {
		return innovation, ErrSingularInnovation
	}

	// K = P Hᵀ S⁻¹
	var k Gain
	for i := 0; i < N; i++ {
		for j := 0; j < M; j++ {
			var sum float64
			for l := 0; l < M; l++ {
				sum += pht[i][l] * sinv[l][j]
			}
			k[i][j] = sum
		}
	}

	if f.gotFirst {
		for i := 0; i < M; i++ {
			var hx float64
			for j := 0; j < N; j++ {
				hx += f.model.H[i][j] * f.xb[j]
			}
			innovation[i] = z[i] - hx
		}
		for i := 0; i < N; i++ {
			v := f.xb[i]
			for j := 0; j < M; j++ {
				v += k[i][j] * innovation[j]
			}
			f.x[i] = v
		}
	} else {
		for i := 0; i < N; i++ {
			var v float64
			for j := 0; j < M; j++ {
				v += f.pinvH[i][j] * z[j]
			}
			f.x[i] = v
		}
		f.gotFirst = true
	}

	// P = (I - K H) P
	var kh Matrix
	for i := 0; i < N; i++ {
		for j := 0; j < N; j++ {
			var sum float64
			for l := 0; l < M; l++ {
				sum += k[i][l] * f.model.H[l][j]
			}
			kh[i][j] = -sum
		}
		kh[i][i] += 1
	}
	mulNN(&f.P, &kh, &p)

	f.xb = f.transition(&f.x)
	return innovation, nil
}

// Predict advances the filter one step without a measurement.
func (f *Filter) Predict() {
	f.P = f.propagatedCovariance()
	f.x = f.xb
	f.xb = f.transition(&f.x)
}

// CurrentState returns the latest estimate x.
func (f *Filter) CurrentState() Vector {
	return f.x
}

// PredictedNextState returns F x, the one-step-ahead projection, without
// advancing the filter.
func (f *Filter) PredictedNextState() Vector {
	return f.xb
}

// Covariance returns a copy of the estimate error covariance.
func (f *Filter) Covariance() Matrix {
	return f.P
}

// Initialized reports whether the filter has received its first measurement.
func (f *Filter) Initialized() bool {
	return f.gotFirst
}

// IsFinite reports whether every element of the state and covariance is
// finite.
func (f *Filter) IsFinite() bool {
	for i := 0; i < N; i++ {
		if !finite(f.x[i]) || !finite(f.xb[i]) {
			return false
		}
		for j := 0; j < N; j++ {
			if !finite(f.P[i][j]) {
				return false
			}
		}
	}
	return true
}

// propagatedCovariance returns F P Fᵀ + Q.
func (f *Filter) propagatedCovariance() Matrix {
	var fp, out Matrix
	mulNN(&fp, &f.model.F, &f.P)
	for i := 0; i < N; i++ {
		for j := 0; j < N; j++ {
			var sum float64
			for k := 0; k < N; k++ {
				sum += fp[i][k] * f.model.F[j][k]
			}
			out[i][j] = sum + f.model.Q[i][j]
		}
	}
	return out
}

func (f *Filter) transition(v *Vector) Vector {
	var out Vector
	for i := 0; i < N; i++ {
		var sum float64
		for j := 0; j < N; j++ {
			sum += f.model.F[i][j] * v[j]
		}
		out[i] = sum
	}
	return out
}

// mulNN sets dst = a * b. dst must not alias a or b.
func mulNN(dst, a, b *Matrix) {
	for i := 0; i < N; i++ {
		for j := 0; j < N; j++ {
			var sum float64
			for k := 0; k < N; k++ {
				sum += a[i][k] * b[k][j]
			}
			dst[i][j] = sum
		}
	}
}

// mulPHt sets dst = p * hᵀ.
func mulPHt(dst *Gain, p *Matrix, h *Observation) {
	for i := 0; i < N; i++ {
		for j := 0; j < M; j++ {
			var sum float64
			for k := 0; k < N; k++ {
				sum += p[i][k] * h[j][k]
			}
			dst[i][j] = sum
		}
	}
}

// pseudoInverse returns Hᵀ (H Hᵀ)⁻¹, the right inverse of a full row rank H.
func pseudoInverse(h *Observation) (Gain, bool) {
	var hht MeasCov
	for i := 0; i < M; i++ {
		for j := 0; j < M; j++ {
			var sum float64
			for k := 0; k < N; k++ {
				sum += h[i][k] * h[j][k]
			}
			hht[i][j] = sum
		}
	}
	inv, ok := invert(&hht)
	if !ok {
		return Gain{}, false
	}
	var out Gain
	for i := 0; i < N; i++ {
		for j := 0; j < M; j++ {
			var sum float64
			for k := 0; k < M; k++ {
				sum += h[k][i] * inv[k][j]
			}
			out[i][j] = sum
		}
	}
	return out, true
}

// minPivot is the smallest pivot magnitude accepted by invert.
const minPivot = 1e-12

// invert computes a⁻¹ by Gauss-Jordan elimination with partial pivoting.
func invert(a *MeasCov) (MeasCov, bool) {
	m := *a
	var inv MeasCov
	for i := 0; i < M; i++ {
		inv[i][i] = 1
	}

	for col := 0; col < M; col++ {
		pivot := col
		best := math.Abs(m[col][col])
		for r := col + 1; r < M; r++ {
			if v := math.Abs(m[r][col]); v > best {
				best = v
				pivot = r
			}
		}
		if !(best > minPivot) {
			return MeasCov{}, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		inv[col], inv[pivot] = inv[pivot], inv[col]

		d := m[col][col]
		for j := 0; j < M; j++ {
			m[col][j] /= d
			inv[col][j] /= d
		}
		for r := 0; r < M; r++ {
			if r == col {
				continue
			}
			factor := m[r][col]
			if factor == 0 {
				continue
			}
			for j := 0; j < M; j++ {
				m[r][j] -= factor * m[col][j]
				inv[r][j] -= factor * inv[col][j]
			}
		}
	}
	return inv, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
