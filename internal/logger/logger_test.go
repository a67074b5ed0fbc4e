package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_VerboseEmitsDebug(t *testing.T) {
	var buf bytes.Buffer
	lg := New(&buf, true)

	lg.Debug("considered commit", "hash", "abc123", "rule", "minor")

	out := buf.String()
	assert.Contains(t, out, "considered commit")
	assert.Contains(t, out, "abc123")
}

func TestNew_QuietSuppressesDebugAndInfo(t *testing.T) {
	var buf bytes.Buffer
	lg := New(&buf, false)

	lg.Debug("should not appear")
	lg.Info("should not appear either")
	assert.Empty(t, buf.String())

	lg.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestWithPackage_AttachesField(t *testing.T) {
	var buf bytes.Buffer
	lg := New(&buf, true).WithPackage("first")

	lg.Debug("planning")

	assert.Contains(t, buf.String(), "first")
}

func TestNop_DiscardsEverything(t *testing.T) {
	lg := Nop()
	lg.Error("goes nowhere")
}
