package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	businessDayOpen  = 8 * time.Hour
	businessDayClose = 17 * time.Hour
)

// TimeSpan is a half-open range [Start, End). Two spans that share only a
// boundary instant do not overlap.
type TimeSpan struct {
	Start time.Time
	End   time.Time
}

func (s TimeSpan) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

func (s TimeSpan) Overlaps(other TimeSpan) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

func (s TimeSpan) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

func (s TimeSpan) ContainsSpan(other TimeSpan) bool {
	return !other.Start.Before(s.Start) && !s.End.Before(other.End)
}

func (s TimeSpan) IsAdjacentTo(other TimeSpan) bool {
	return s.End.Equal(other.Start) || other.End.Equal(s.Start)
}

func (s TimeSpan) IsWithinBusinessHours() bool {
	switch s.Start.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	day := startOfDay(s.Start)
	if !startOfDay(s.End.Add(-time.Nanosecond)).Equal(day) {
		return false
	}

	open := day.Add(businessDayOpen)
	close := day.Add(businessDayClose)
	return !s.Start.Before(open) && !s.End.After(close)
}

// unionSpan covers both spans; only meaningful when they overlap or touch.
func (s TimeSpan) unionSpan(other TimeSpan) TimeSpan {
	out := s
	if other.Start.Before(out.Start) {
		out.Start = other.Start
	}
	if other.End.After(out.End) {
		out.End = other.End
	}
	return out
}

func (s TimeSpan) mergeableWith(other TimeSpan) bool {
	return s.Overlaps(other) || s.IsAdjacentTo(other)
}

// Interval is the capability set shared by the schedule's variants
// (Appointment, UnavailabilityBlock).
type Interval interface {
	IntervalID() uuid.UUID
	Span() TimeSpan

	// Validate returns human-readable rule violations; it never mutates.
	Validate() []string

	// MergeWith returns a new interval of the same variant covering both
	// inputs when they overlap or touch and are compatible. The false
	// return means "no merge", not an error.
	MergeWith(other Interval) (Interval, bool)
}

func IsValid(iv Interval) bool {
	return len(iv.Validate()) == 0
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func atClock(t time.Time, sinceMidnight time.Duration) time.Time {
	return startOfDay(t).Add(sinceMidnight)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
