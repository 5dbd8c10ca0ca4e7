package util

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Stopwatch records named laps for the stages of a single consultation.
// Not safe for concurrent use.
type Stopwatch struct {
	start time.Time
	last  time.Time
	laps  []lap
}

type lap struct {
	name     string
	duration time.Duration
}

// StartStopwatch returns a stopwatch running from now.
func StartStopwatch() *Stopwatch {
	now := time.Now()
	return &Stopwatch{start: now, last: now}
}

// Lap closes the current stage under name and returns its duration.
func (s *Stopwatch) Lap(name string) time.Duration {
	now := time.Now()
	d := now.Sub(s.last)
	s.last = now
	s.laps = append(s.laps, lap{name: name, duration: d})
	return d
}

// ElapsedMs returns the milliseconds since the stopwatch started.
func (s *Stopwatch) ElapsedMs() int64 {
	if s == nil || s.start.IsZero() {
		return 0
	}
	return time.Since(s.start).Milliseconds()
}

// Fields renders every lap as "<name>_ms" plus "total_ms" for structured logging.
func (s *Stopwatch) Fields() logrus.Fields {
	fields := logrus.Fields{"total_ms": s.ElapsedMs()}
	for _, l := range s.laps {
		fields[l.name+"_ms"] = l.duration.Milliseconds()
	}
	return fields
}
