package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStopwatchLaps(t *testing.T) {
	sw := StartStopwatch()
	time.Sleep(5 * time.Millisecond)
	first := sw.Lap("ai")
	second := sw.Lap("impi")

	assert.GreaterOrEqual(t, first, 5*time.Millisecond)
	assert.Less(t, second, first)

	fields := sw.Fields()
	assert.Contains(t, fields, "ai_ms")
	assert.Contains(t, fields, "impi_ms")
	assert.GreaterOrEqual(t, fields["total_ms"], int64(5))
}

func TestNilStopwatchElapsed(t *testing.T) {
	var sw *Stopwatch
	assert.Zero(t, sw.ElapsedMs())
}
