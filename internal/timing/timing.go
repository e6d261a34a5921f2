package timing

import (
	"sync"
	"time"
)

// Stage is a single timed step of a pipeline run.
type Stage struct {
	Name       string
	DurationMs int64
}

// Stopwatch records how long the named stages of a pipeline run take.
// Safe for concurrent use.
type Stopwatch struct {
	mu     sync.Mutex
	start  time.Time
	last   time.Time
	stages []Stage
}

// NewStopwatch returns a stopwatch with the clock already running.
func NewStopwatch() *Stopwatch {
	now := time.Now()
	return &Stopwatch{
		start: now,
		last:  now,
	}
}

// Lap closes the current stage under the given name and starts the next one.
// It returns the stage duration in milliseconds.
func (s *Stopwatch) Lap(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	duration := now.Sub(s.last).Milliseconds()
	s.stages = append(s.stages, Stage{
		Name:       name,
		DurationMs: duration,
	})
	s.last = now

	return duration
}

// Stages returns the recorded stages in order.
func (s *Stopwatch) Stages() []Stage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Stage, len(s.stages))
	copy(out, s.stages)
	return out
}

// TotalMs returns the elapsed milliseconds since the stopwatch started.
func (s *Stopwatch) TotalMs() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return time.Since(s.start).Milliseconds()
}
