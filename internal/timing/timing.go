// Package timing measures the phases of a completion round trip.
package timing

import (
	"fmt"
	"strings"
	"time"
)

// Mark is a named checkpoint measured from the timer start
type Mark struct {
	Label   string
	Elapsed time.Duration
}

// Timer records ordered checkpoints
type Timer struct {
	start time.Time
	marks []Mark
	now   func() time.Time
}

// NewTimer creates a timer started now
func NewTimer() *Timer {
	return newTimerWithClock(time.Now)
}

func newTimerWithClock(now func() time.Time) *Timer {
	return &Timer{start: now(), now: now}
}

// Mark records a checkpoint and returns the time since start
func (t *Timer) Mark(label string) time.Duration {
	elapsed := t.now().Sub(t.start)
	t.marks = append(t.marks, Mark{Label: label, Elapsed: elapsed})
	return elapsed
}

// Elapsed returns the time since start
func (t *Timer) Elapsed() time.Duration {
	return t.now().Sub(t.start)
}

// Get returns the most recent checkpoint with the given label
func (t *Timer) Get(label string) (time.Duration, bool) {
	for i := len(t.marks) - 1; i >= 0; i-- {
		if t.marks[i].Label == label {
			return t.marks[i].Elapsed, true
		}
	}
	return 0, false
}

// Marks returns the checkpoints in recording order
func (t *Timer) Marks() []Mark {
	out := make([]Mark, len(t.marks))
	copy(out, t.marks)
	return out
}

// Summary formats the total and every checkpoint in milliseconds
func (t *Timer) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total: %.3fms", ms(t.Elapsed()))

	if len(t.marks) > 0 {
		b.WriteString(" (")
		for i, m := range t.marks {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %.3fms", m.Label, ms(m.Elapsed))
		}
		b.WriteString(")")
	}
	return b.String()
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
