package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func reset(t *testing.T) *bytes.Buffer {
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
	reset(t)

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)

	Debug("test message %s", "arg")

	assert.Equal(t, "[DEBUG] test message arg\n", buf.String())
}

func TestDebugAndInfo_WhenNotVerbose(t *testing.T) {
	buf := reset(t)
	SetVerbose(false)

	Debug("hidden")
	Info("hidden")
	Section("hidden")

	assert.Zero(t, buf.Len())
}

func TestWarnAndError_AlwaysPrinted(t *testing.T) {
	buf := reset(t)
	SetVerbose(false)

	Warn("skipped %s", "a.md")
	Error("index %d failed", 2)

	assert.Equal(t, "[WARN] skipped a.md\n[ERROR] index 2 failed\n", buf.String())
}

func TestSection(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)

	Section("Retrieval")

	assert.Equal(t, "\n=== Retrieval ===\n", buf.String())
}

func TestEnabled(t *testing.T) {
	reset(t)

	tests := []struct {
		level   Level
		verbose bool
		want    bool
	}{
		{LevelDebug, false, false},
		{LevelInfo, false, false},
		{LevelWarn, false, true},
		{LevelError, false, true},
		{LevelDebug, true, true},
		{LevelInfo, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			SetVerbose(tt.verbose)
			assert.Equal(t, tt.want, Enabled(tt.level))
		})
	}
}

func TestConcurrentLogging(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Info("worker %d", n)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, bytes.Count(buf.Bytes(), []byte("[INFO]")))
}
