package domain

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	slotIncrement = 15 * time.Minute
	searchHorizon = 30 * 24 * time.Hour

	optimalHourStart = 9
	optimalHourEnd   = 12
)

// DayWindow is a bookable window within one weekday, as offsets from
// midnight.
type DayWindow struct {
	Open  time.Duration
	Close time.Duration
}

// DefaultStandardAvailability is Mon-Fri 08:00-17:00.
func DefaultStandardAvailability() map[time.Weekday]DayWindow {
	out := make(map[time.Weekday]DayWindow, 5)
	for wd := time.Monday; wd <= time.Friday; wd++ {
		out[wd] = DayWindow{Open: businessDayOpen, Close: businessDayClose}
	}
	return out
}

// AppointmentSlot is a candidate booking window produced by slot search. It
// is a query result, never persisted. IsOptimal is informational only.
type AppointmentSlot struct {
	StartTime   time.Time
	EndTime     time.Time
	PhysicianID uuid.UUID
	IsOptimal   bool
}

type AvailabilitySummary struct {
	Date               time.Time
	BookedHours        float64
	AvailableHours     float64
	UtilizationPercent float64
}

// PhysicianSchedule owns one physician's appointments and blackout blocks.
// One schedule is one lock domain: every structural mutation and every
// conflict-sensitive read runs under the same mutex, so check-then-insert is
// atomic. The mutex is not re-entrant; locked variants carry the suffix.
type PhysicianSchedule struct {
	physicianID uuid.UUID

	mu           sync.Mutex
	appointments []*Appointment
	blocks       []*UnavailabilityBlock
	availability map[time.Weekday]DayWindow
}

func NewPhysicianSchedule(physicianID uuid.UUID) *PhysicianSchedule {
	return &PhysicianSchedule{
		physicianID:  physicianID,
		availability: DefaultStandardAvailability(),
	}
}

func (s *PhysicianSchedule) PhysicianID() uuid.UUID {
	return s.physicianID
}

// SetAvailability replaces the window for one weekday. A weekday without a
// window is a day the physician does not work.
func (s *PhysicianSchedule) SetAvailability(wd time.Weekday, window DayWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.availability[wd] = window
}

func (s *PhysicianSchedule) ClearAvailability(wd time.Weekday) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.availability, wd)
}

func (s *PhysicianSchedule) WindowFor(wd time.Weekday) (DayWindow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.availability[wd]
	return w, ok
}

// TryAddAppointment atomically checks for conflicts and inserts. A false
// return leaves the schedule untouched; it is the expected answer for a
// conflicting or foreign appointment, not an error. An ID already present is
// rejected, so a keyed booking can never be recorded twice.
func (s *PhysicianSchedule) TryAddAppointment(appt *Appointment) bool {
	if appt == nil || appt.PhysicianID != s.physicianID {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.appointments {
		if a.ID == appt.ID {
			return false
		}
	}
	if s.hasConflictLocked(appt.ID, appt.Span()) {
		return false
	}
	s.insertLocked(appt)
	return true
}

// LoadAppointment restores persisted state before concurrent access begins.
// It bypasses conflict checking by design; the storage layer owns the
// integrity of loaded data.
func (s *PhysicianSchedule) LoadAppointment(appt *Appointment) {
	if appt == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(appt)
}

func (s *PhysicianSchedule) RemoveAppointment(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.appointments {
		if a.ID == id {
			s.appointments = append(s.appointments[:i], s.appointments[i+1:]...)
			return true
		}
	}
	return false
}

// AddUnavailableBlock registers a blackout window, defaulting its scope to
// the owning physician when unset.
func (s *PhysicianSchedule) AddUnavailableBlock(block *UnavailabilityBlock) {
	if block == nil {
		return
	}
	if block.PhysicianID == nil {
		owner := s.physicianID
		block.PhysicianID = &owner
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = append(s.blocks, block)
}

// GetAppointment returns an independent copy of the stored appointment.
func (s *PhysicianSchedule) GetAppointment(id uuid.UUID) (Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.appointments {
		if a.ID == id {
			return *a, true
		}
	}
	return Appointment{}, false
}

// WithAppointment runs fn on the stored appointment inside the schedule's
// critical section. Lifecycle mutations must go through here so status
// changes are never observed half-applied by conflict checks.
func (s *PhysicianSchedule) WithAppointment(id uuid.UUID, fn func(*Appointment) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.appointments {
		if a.ID == id {
			return fn(a)
		}
	}
	return ErrAppointmentNotFound
}

// RescheduleAppointment cancels the stored appointment and inserts its
// successor in one critical section, so the freed window and the new booking
// appear together. The successor's window is conflict-checked against
// everything except the appointment being replaced.
func (s *PhysicianSchedule) RescheduleAppointment(id uuid.UUID, newStart, newEnd time.Time) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var original *Appointment
	for _, a := range s.appointments {
		if a.ID == id {
			original = a
			break
		}
	}
	if original == nil {
		return nil, ErrAppointmentNotFound
	}
	if original.Status != AppointmentScheduled {
		return nil, ErrInvalidTransition
	}

	span := TimeSpan{Start: newStart.UTC(), End: newEnd.UTC()}
	if !span.End.After(span.Start) {
		return nil, ErrInvalidSpan
	}
	if s.hasConflictLocked(id, span) {
		return nil, ErrScheduleConflict
	}

	next, err := original.Reschedule(newStart, newEnd)
	if err != nil {
		return nil, err
	}
	s.insertLocked(next)
	return next, nil
}

// HasConflict reports whether the proposed appointment overlaps any scheduled
// appointment (other than itself) or any blackout block.
func (s *PhysicianSchedule) HasConflict(proposed *Appointment) bool {
	if proposed == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasConflictLocked(proposed.ID, proposed.Span())
}

func (s *PhysicianSchedule) IsTimeSlotAvailable(start, end time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isTimeSlotAvailableLocked(start.UTC(), end.UTC())
}

// FindNextAvailableSlot scans forward from afterTime in 15-minute steps,
// skipping weekends and non-working days, for up to 30 days.
func (s *PhysicianSchedule) FindNextAvailableSlot(duration time.Duration, afterTime time.Time) (AppointmentSlot, bool) {
	if duration <= 0 {
		return AppointmentSlot{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := roundUpToIncrement(afterTime.UTC())
	horizon := afterTime.UTC().Add(searchHorizon)

	for candidate.Before(horizon) {
		if isWeekend(candidate) {
			candidate = nextMondayMorning(candidate)
			continue
		}

		window, ok := s.availability[candidate.Weekday()]
		if !ok {
			candidate = nextDayMorning(candidate)
			continue
		}

		if open := atClock(candidate, window.Open); candidate.Before(open) {
			candidate = open
		}

		end := candidate.Add(duration)
		if end.After(atClock(candidate, window.Close)) {
			candidate = nextDayMorning(candidate)
			continue
		}

		if s.isTimeSlotAvailableLocked(candidate, end) {
			return NewSlot(s.physicianID, candidate, end), true
		}
		candidate = candidate.Add(slotIncrement)
	}

	return AppointmentSlot{}, false
}

// GetAppointmentsForDate returns independent copies of the day's
// appointments, sorted by start time.
func (s *PhysicianSchedule) GetAppointmentsForDate(date time.Time) []Appointment {
	day := startOfDay(date.UTC())
	return s.GetAppointmentsInRange(day, day.AddDate(0, 0, 1))
}

// GetAppointmentsInRange returns copies of every appointment overlapping
// [start, end), sorted by start time.
func (s *PhysicianSchedule) GetAppointmentsInRange(start, end time.Time) []Appointment {
	start = start.UTC()
	end = end.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		if a.StartTime.Before(end) && a.EndTime.After(start) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// GetAvailabilitySummary reports booked hours, the day's bookable hours, and
// utilization for one calendar date.
func (s *PhysicianSchedule) GetAvailabilitySummary(date time.Time) AvailabilitySummary {
	day := startOfDay(date.UTC())
	dayEnd := day.AddDate(0, 0, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	var booked time.Duration
	for _, a := range s.appointments {
		if a.Status != AppointmentScheduled {
			continue
		}
		if a.StartTime.Before(dayEnd) && a.EndTime.After(day) {
			booked += a.Duration()
		}
	}

	var available time.Duration
	if window, ok := s.availability[day.Weekday()]; ok {
		available = window.Close - window.Open
	}

	summary := AvailabilitySummary{
		Date:           day,
		BookedHours:    booked.Hours(),
		AvailableHours: available.Hours(),
	}
	if available > 0 {
		summary.UtilizationPercent = booked.Hours() / available.Hours() * 100
	}
	return summary
}

// ClearOldAppointments purges appointments that ended before the given time
// and returns how many were removed.
func (s *PhysicianSchedule) ClearOldAppointments(before time.Time) int {
	before = before.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.appointments[:0]
	removed := 0
	for _, a := range s.appointments {
		if a.EndTime.Before(before) {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	s.appointments = kept
	return removed
}

func (s *PhysicianSchedule) hasConflictLocked(excludeID uuid.UUID, span TimeSpan) bool {
	for _, a := range s.appointments {
		if a.ID == excludeID || a.Status != AppointmentScheduled {
			continue
		}
		if a.Span().Overlaps(span) {
			return true
		}
	}
	for _, b := range s.blocks {
		if b.Span().Overlaps(span) {
			return true
		}
	}
	return false
}

func (s *PhysicianSchedule) isTimeSlotAvailableLocked(start, end time.Time) bool {
	if !end.After(start) {
		return false
	}
	return !s.hasConflictLocked(uuid.Nil, TimeSpan{Start: start, End: end}) &&
		s.isWithinStandardAvailabilityLocked(start, end)
}

func (s *PhysicianSchedule) isWithinStandardAvailabilityLocked(start, end time.Time) bool {
	window, ok := s.availability[start.Weekday()]
	if !ok {
		return false
	}

	day := startOfDay(start)
	// A slot never crosses midnight.
	if !startOfDay(end.Add(-time.Nanosecond)).Equal(day) {
		return false
	}

	return !start.Before(day.Add(window.Open)) && !end.After(day.Add(window.Close))
}

// insertLocked keeps appointments ordered by start time.
func (s *PhysicianSchedule) insertLocked(appt *Appointment) {
	i := sort.Search(len(s.appointments), func(i int) bool {
		return s.appointments[i].StartTime.After(appt.StartTime)
	})
	s.appointments = append(s.appointments, nil)
	copy(s.appointments[i+1:], s.appointments[i:])
	s.appointments[i] = appt
}

// NewSlot stamps the candidate with the informational morning-window flag.
func NewSlot(physicianID uuid.UUID, start, end time.Time) AppointmentSlot {
	hour := start.Hour()
	return AppointmentSlot{
		StartTime:   start,
		EndTime:     end,
		PhysicianID: physicianID,
		IsOptimal:   hour >= optimalHourStart && hour < optimalHourEnd,
	}
}

func roundUpToIncrement(t time.Time) time.Time {
	r := t.Truncate(slotIncrement)
	if r.Before(t) {
		r = r.Add(slotIncrement)
	}
	return r
}

func nextDayMorning(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(businessDayOpen)
}

func nextMondayMorning(t time.Time) time.Time {
	d := startOfDay(t).AddDate(0, 0, 1)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Add(businessDayOpen)
}
