package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"
)

func TestSpinnerWritesFrames(t *testing.T) {
	var buf bytes.Buffer
	s := startSpinnerTo(&buf, "Converting sketch.json")

	time.Sleep(4 * spinnerInterval)
	s.Stop()

	if buf.Len() == 0 {
		t.Fatal("spinner should have written output")
	}
	if !strings.Contains(buf.String(), "Converting sketch.json") {
		t.Errorf("spinner output missing message:\n%q", buf.String())
	}
}

func TestSpinnerSetMessage(t *testing.T) {
	var buf bytes.Buffer
	s := startSpinnerTo(&buf, "first.json")

	time.Sleep(3 * spinnerInterval)
	s.SetMessage("second.json")
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "first.json") {
		t.Error("spinner never showed the first message")
	}
	if !strings.Contains(out, "second.json") {
		t.Error("spinner never picked up the swapped message")
	}
}

func TestSpinnerClearsLineOnStop(t *testing.T) {
	var buf bytes.Buffer
	s := startSpinnerTo(&buf, "busy")

	time.Sleep(3 * spinnerInterval)
	s.Stop()

	if !strings.HasSuffix(buf.String(), "\r\x1b[K") {
		t.Errorf("spinner should clear its line on stop, got tail %q", tail(buf.String(), 8))
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := startSpinnerTo(io.Discard, "x")

	s.Stop()
	s.Stop()
	s.Stop()
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
