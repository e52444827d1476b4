package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStrategy is a pluggable forward search over one physician's
// schedule. Strategies only read schedule state; a returned slot can be
// claimed by another caller before it is booked, so bookings must re-validate
// at commit time through TryAddAppointment.
type BookingStrategy interface {
	FindNextAvailableSlot(schedule *PhysicianSchedule, duration time.Duration, earliestTime time.Time, facilityBlocks []*UnavailabilityBlock) (AppointmentSlot, bool)
	FindAvailableSlots(schedule *PhysicianSchedule, duration time.Duration, earliestTime time.Time, maxResults int, facilityBlocks []*UnavailabilityBlock) []AppointmentSlot
}

// FirstAvailable walks the schedule in 15-minute steps and returns the
// earliest fitting slots, additionally rejecting candidates covered by
// facility-wide blocks.
type FirstAvailable struct{}

func NewFirstAvailable() FirstAvailable {
	return FirstAvailable{}
}

func (f FirstAvailable) FindNextAvailableSlot(schedule *PhysicianSchedule, duration time.Duration, earliestTime time.Time, facilityBlocks []*UnavailabilityBlock) (AppointmentSlot, bool) {
	slots := f.FindAvailableSlots(schedule, duration, earliestTime, 1, facilityBlocks)
	if len(slots) == 0 {
		return AppointmentSlot{}, false
	}
	return slots[0], true
}

func (f FirstAvailable) FindAvailableSlots(schedule *PhysicianSchedule, duration time.Duration, earliestTime time.Time, maxResults int, facilityBlocks []*UnavailabilityBlock) []AppointmentSlot {
	if schedule == nil || duration <= 0 || maxResults <= 0 {
		return nil
	}

	physicianID := schedule.PhysicianID()
	candidate := roundUpToIncrement(earliestTime.UTC())
	horizon := earliestTime.UTC().Add(searchHorizon)

	var out []AppointmentSlot
	for candidate.Before(horizon) && len(out) < maxResults {
		if isWeekend(candidate) {
			candidate = nextMondayMorning(candidate)
			continue
		}

		window, ok := schedule.WindowFor(candidate.Weekday())
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

		if blockedByFacility(physicianID, candidate, end, facilityBlocks) ||
			!schedule.IsTimeSlotAvailable(candidate, end) {
			candidate = candidate.Add(slotIncrement)
			continue
		}

		out = append(out, NewSlot(physicianID, candidate, end))
		// Resume at the slot's end so suggestions never overlap.
		candidate = end
	}
	return out
}

func blockedByFacility(physicianID uuid.UUID, start, end time.Time, blocks []*UnavailabilityBlock) bool {
	for _, b := range blocks {
		if b == nil || !b.AppliesTo(physicianID) {
			continue
		}
		if b.BlocksTimeSlot(start, end) {
			return true
		}
	}
	return false
}
