package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	resetLogger(t)

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestVerboseLevels(t *testing.T) {
	t.Run("print when verbose", func(t *testing.T) {
		buf := resetLogger(t)
		SetVerbose(true)

		Debug("retrieved %d candidates", 5)
		Info("indexed %d chunks", 3)
		Section("Question Answering")

		got := buf.String()
		assert.Contains(t, got, "[DEBUG] retrieved 5 candidates\n")
		assert.Contains(t, got, "[INFO] indexed 3 chunks\n")
		assert.Contains(t, got, "\n--- Question Answering ---\n")
	})

	t.Run("silent otherwise", func(t *testing.T) {
		buf := resetLogger(t)
		SetVerbose(false)

		Debug("should not appear")
		Info("should not appear")
		Section("Ingestion")

		assert.Zero(t, buf.Len())
	})
}

func TestWarn_AlwaysPrints(t *testing.T) {
	buf := resetLogger(t)
	SetVerbose(false)

	Warn("vector index unavailable: %v", os.ErrNotExist)

	assert.Contains(t, buf.String(), "[WARN] vector index unavailable")
}
