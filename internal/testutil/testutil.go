// Package testutil provides shared test fixtures and assertions for the
// tracking packages.
package testutil

import (
	"math"
	"testing"

	"github.com/banshee-data/boxtrack/internal/geom"
)

// Det builds a detection from centre and size.
func Det(class string, cx, cy, w, h float64) geom.Detection {
	return geom.Detection{ClassName: class, Box: geom.BoundingBox{CX: cx, CY: cy, Width: w, Height: h}}
}

// AssertBoxInDelta fails the test if any field of got differs from want by
// more than delta.
func AssertBoxInDelta(t testing.TB, want, got geom.BoundingBox, delta float64) {
	t.Helper()
	fields := []struct {
		name      string
		want, got float64
	}{
		{"CX", want.CX, got.CX},
		{"CY", want.CY, got.CY},
		{"Width", want.Width, got.Width},
		{"Height", want.Height, got.Height},
	}
	for _, f := range fields {
		if math.IsNaN(f.got) || math.Abs(f.want-f.got) > delta {
			t.Errorf("box %s = %v, want %v ± %v (got %s, want %s)", f.name, f.got, f.want, delta, got, want)
		}
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
