package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// slowThreshold is the duration above which a timed operation is logged at warn level
const slowThreshold = 30 * time.Second

// Timer measures how long an operation takes and logs it when stopped
type Timer struct {
	start time.Time
	name  string
	log   zerolog.Logger
}

// NewTimer starts a timer for the named operation
func NewTimer(name string, log zerolog.Logger) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
		log:   log,
	}
}

// Stop logs the elapsed time, adding the given integer counters as fields
func (t *Timer) Stop(counters map[string]int) time.Duration {
	duration := time.Since(t.start)

	event := t.log.Debug()
	if duration > slowThreshold {
		event = t.log.Warn()
	}
	event = event.Str("operation", t.name).Dur("duration", duration)
	for key, value := range counters {
		event = event.Int(key, value)
	}
	event.Msg("Operation finished")

	return duration
}
