package debug

import (
	"testing"

	"github.com/banshee-data/boxtrack/internal/geom"
)

func TestNewDebugCollector_InitiallyDisabled(t *testing.T) {
	collector := NewDebugCollector()

	if collector.IsEnabled() {
		t.Error("Expected collector to be initially disabled")
	}
}

func TestDebugCollector_EnableDisable(t *testing.T) {
	collector := NewDebugCollector()

	collector.SetEnabled(true)
	if !collector.IsEnabled() {
		t.Error("Expected collector to be enabled after SetEnabled(true)")
	}

	collector.SetEnabled(false)
	if collector.IsEnabled() {
		t.Error("Expected collector to be disabled after SetEnabled(false)")
	}
}

func TestDebugCollector_BeginFrame_WhenDisabled(t *testing.T) {
	collector := NewDebugCollector()
	collector.BeginFrame(123)

	if frame := collector.Emit(); frame != nil {
		t.Error("Expected nil frame when collector is disabled")
	}
}

func TestDebugCollector_RecordWhenDisabled(t *testing.T) {
	collector := NewDebugCollector()
	collector.SetEnabled(true)
	collector.BeginFrame(1)
	collector.SetEnabled(false)

	// Should be no-ops.
	collector.RecordPrediction("car", 1, geom.State{})
	collector.RecordInnovation("car", 1, geom.Measurement{}, geom.Measurement{})
	collector.RecordDegenerate("car", 1, geom.State{})

	collector.SetEnabled(true)
	frame := collector.Emit()
	if frame == nil {
		t.Fatal("Expected pending frame")
	}
	if len(frame.StatePredictions)+len(frame.Innovations)+len(frame.Degenerate) != 0 {
		t.Errorf("Expected no records while disabled, got %+v", frame)
	}
}

func TestDebugCollector_RecordWithoutFrame(t *testing.T) {
	collector := NewDebugCollector()
	collector.SetEnabled(true)

	// No BeginFrame: must not panic.
	collector.RecordPrediction("car", 1, geom.State{})
	if frame := collector.Emit(); frame != nil {
		t.Error("Expected nil frame without BeginFrame")
	}
}

func TestDebugCollector_Records(t *testing.T) {
	collector := NewDebugCollector()
	collector.SetEnabled(true)
	collector.BeginFrame(42)

	state := geom.StateFromBox(geom.BoundingBox{CX: 100, CY: 50, Width: 40, Height: 20})
	collector.RecordPrediction("car", 2, state)
	collector.RecordInnovation("car", 2, geom.Measurement{100, 50, 800, 2}, geom.Measurement{103, 54, 800, 2})
	collector.RecordDegenerate("truck", 1, geom.State{0, 0, -10, 1})

	frame := collector.Emit()
	if frame == nil {
		t.Fatal("Expected non-nil frame")
	}
	if frame.FrameID != 42 {
		t.Errorf("Expected FrameID=42, got %d", frame.FrameID)
	}

	if len(frame.StatePredictions) != 1 {
		t.Fatalf("Expected 1 prediction, got %d", len(frame.StatePredictions))
	}
	pred := frame.StatePredictions[0]
	if pred.Track != (TrackKey{ClassName: "car", ID: 2}) {
		t.Errorf("Unexpected prediction track %+v", pred.Track)
	}
	if pred.Box.Width < 39.999 || pred.Box.Width > 40.001 {
		t.Errorf("Expected predicted box width 40, got %v", pred.Box.Width)
	}

	if len(frame.Innovations) != 1 {
		t.Fatalf("Expected 1 innovation, got %d", len(frame.Innovations))
	}
	if got := frame.Innovations[0].CentreResidual; got != 5 {
		t.Errorf("Expected centre residual 5, got %v", got)
	}

	if len(frame.Degenerate) != 1 || frame.Degenerate[0].Area != -10 {
		t.Errorf("Unexpected degenerate records %+v", frame.Degenerate)
	}

	// Emit clears the frame.
	if collector.Emit() != nil {
		t.Error("Expected nil frame after Emit")
	}
}

func TestDebugCollector_Reset(t *testing.T) {
	collector := NewDebugCollector()
	collector.SetEnabled(true)
	collector.BeginFrame(7)
	collector.RecordPrediction("car", 1, geom.State{})
	collector.Reset()

	if collector.Emit() != nil {
		t.Error("Expected nil frame after Reset")
	}
}
