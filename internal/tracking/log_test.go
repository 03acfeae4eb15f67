package tracking

import (
	"bytes"
	"strings"
	"testing"

	"github.com/banshee-data/boxtrack/internal/testutil"
)

func TestSetLogWriters(t *testing.T) {
	defer SetLogWriters(LogWriters{})

	var ops, diag, trace bytes.Buffer
	SetLogWriters(LogWriters{Ops: &ops, Diag: &diag, Trace: &trace})

	Opsf("ops %d", 1)
	Diagf("diag %d", 2)
	Tracef("trace %d", 3)

	if !strings.Contains(ops.String(), "[tracking] ") || !strings.Contains(ops.String(), "ops 1") {
		t.Errorf("ops output = %q", ops.String())
	}
	if !strings.Contains(diag.String(), "diag 2") {
		t.Errorf("diag output = %q", diag.String())
	}
	if !strings.Contains(trace.String(), "trace 3") {
		t.Errorf("trace output = %q", trace.String())
	}
	if strings.Contains(ops.String(), "diag") || strings.Contains(diag.String(), "trace") {
		t.Error("streams must not cross")
	}

	// Disabling a stream drops its output.
	SetLogWriters(LogWriters{Ops: &ops})
	diag.Reset()
	Diagf("should not appear")
	if diag.Len() > 0 {
		t.Errorf("diag output after disabling = %q, want empty", diag.String())
	}
	if traceEnabled() || diagEnabled() {
		t.Error("trace and diag streams should be disabled")
	}
	if !opsEnabled() {
		t.Error("ops stream should be enabled")
	}
}

func TestEstimatorLogging(t *testing.T) {
	defer SetLogWriters(LogWriters{})

	var ops, diag, trace bytes.Buffer
	SetLogWriters(LogWriters{Ops: &ops, Diag: &diag, Trace: &trace})

	reg := NewIDRegistry()
	_, err := NewEstimator(reg, det("car", 0, 0, -1, 1))
	testutil.AssertError(t, err)
	if !strings.Contains(ops.String(), "rejecting new track") {
		t.Errorf("ops output = %q, want rejection", ops.String())
	}

	e, err := NewEstimator(reg, det("car", 10, 10, 4, 4))
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, e.Correct(det("car", 10, 10, 2, 2)))
	e.Advance()
	for _, want := range []string{"car#1 created", "car#1 correct", "car#1 advance"} {
		if !strings.Contains(trace.String(), want) {
			t.Errorf("trace output missing %q:\n%s", want, trace.String())
		}
	}

	for i := 0; i < 20; i++ {
		e.Advance()
	}
	if !strings.Contains(diag.String(), "car#1 degenerate state") {
		t.Errorf("diag output = %q, want degenerate report", diag.String())
	}
}
