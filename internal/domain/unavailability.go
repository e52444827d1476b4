package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BlockReason string

const (
	BlockNonBusinessHours BlockReason = "non_business_hours"
	BlockLunch            BlockReason = "lunch"
	BlockMeeting          BlockReason = "meeting"
	BlockVacation         BlockReason = "vacation"
	BlockSickLeave        BlockReason = "sick_leave"
	BlockHoliday          BlockReason = "holiday"
	BlockAdministrative   BlockReason = "administrative"
	BlockEmergency        BlockReason = "emergency"
	BlockOther            BlockReason = "other"
)

const maxBlockDuration = 365 * 24 * time.Hour

// UnavailabilityBlock is a blackout window. A nil PhysicianID means the block
// is facility-wide and applies to every physician. Recurrence fields are
// descriptive only; the engine never expands them.
type UnavailabilityBlock struct {
	bun.BaseModel `bun:"table:unavailability_blocks"`

	ID          uuid.UUID   `bun:"id,pk,type:uuid"`
	PhysicianID *uuid.UUID  `bun:"physician_id,type:uuid"`
	StartTime   time.Time   `bun:"start_time,notnull"`
	EndTime     time.Time   `bun:"end_time,notnull"`
	Description string      `bun:"description"`
	Reason      BlockReason `bun:"reason,notnull"`

	IsRecurring       bool   `bun:"is_recurring,notnull,default:false"`
	RecurrencePattern string `bun:"recurrence_pattern"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func NewUnavailabilityBlock(reason BlockReason, physicianID *uuid.UUID, start, end time.Time, description string) (*UnavailabilityBlock, error) {
	start = start.UTC()
	end = end.UTC()
	if !end.After(start) {
		return nil, ErrInvalidSpan
	}

	var scope *uuid.UUID
	if physicianID != nil {
		id := *physicianID
		scope = &id
	}

	return &UnavailabilityBlock{
		ID:          uuid.New(),
		PhysicianID: scope,
		StartTime:   start,
		EndTime:     end,
		Description: description,
		Reason:      reason,
	}, nil
}

// NewLunchBreak returns the fixed 12:00-13:00 daily recurring lunch block for
// the given day, optionally scoped to one physician.
func NewLunchBreak(day time.Time, physicianID *uuid.UUID) *UnavailabilityBlock {
	b, _ := NewUnavailabilityBlock(
		BlockLunch,
		physicianID,
		atClock(day.UTC(), 12*time.Hour),
		atClock(day.UTC(), 13*time.Hour),
		"Lunch break",
	)
	b.IsRecurring = true
	b.RecurrencePattern = "daily"
	return b
}

// NonBusinessHoursBlocks returns the two facility-wide blocks covering the
// hours outside 08:00-17:00 on the given calendar day.
func NonBusinessHoursBlocks(day time.Time) []*UnavailabilityBlock {
	day = day.UTC()
	early, _ := NewUnavailabilityBlock(
		BlockNonBusinessHours,
		nil,
		startOfDay(day),
		atClock(day, businessDayOpen),
		"Before opening hours",
	)
	late, _ := NewUnavailabilityBlock(
		BlockNonBusinessHours,
		nil,
		atClock(day, businessDayClose),
		startOfDay(day).AddDate(0, 0, 1),
		"After closing hours",
	)
	return []*UnavailabilityBlock{early, late}
}

// WeekendBlocks walks the 7-day window starting at windowStart and returns a
// full-day facility-wide block for every Saturday and Sunday found.
func WeekendBlocks(windowStart time.Time) []*UnavailabilityBlock {
	day := startOfDay(windowStart.UTC())

	var out []*UnavailabilityBlock
	for i := 0; i < 7; i++ {
		d := day.AddDate(0, 0, i)
		if !isWeekend(d) {
			continue
		}
		b, _ := NewUnavailabilityBlock(
			BlockNonBusinessHours,
			nil,
			d,
			d.AddDate(0, 0, 1),
			"Weekend",
		)
		out = append(out, b)
	}
	return out
}

func (b *UnavailabilityBlock) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		b.UpdatedAt = now
	}
	return nil
}

func (b *UnavailabilityBlock) IntervalID() uuid.UUID {
	return b.ID
}

func (b *UnavailabilityBlock) Span() TimeSpan {
	return TimeSpan{Start: b.StartTime, End: b.EndTime}
}

func (b *UnavailabilityBlock) IsFacilityWide() bool {
	return b.PhysicianID == nil
}

// AppliesTo reports whether the block constrains the given physician.
func (b *UnavailabilityBlock) AppliesTo(physicianID uuid.UUID) bool {
	return b.PhysicianID == nil || *b.PhysicianID == physicianID
}

func (b *UnavailabilityBlock) BlocksTimeSlot(start, end time.Time) bool {
	return b.Span().Overlaps(TimeSpan{Start: start, End: end})
}

// Validate intentionally skips the business-hours rule: blocks legitimately
// live outside business hours.
func (b *UnavailabilityBlock) Validate() []string {
	var violations []string

	if !b.EndTime.After(b.StartTime) {
		violations = append(violations, "end time must be after start time")
	} else if b.Span().Duration() > maxBlockDuration {
		violations = append(violations, "block must not exceed 365 days")
	}

	if b.PhysicianID == nil && b.Reason == BlockOther && b.Description == "" {
		violations = append(violations, "facility-wide block with reason other requires a description")
	}

	return violations
}

// MergeWith combines two overlapping or adjacent blocks with the same reason
// and the same physician scope.
func (b *UnavailabilityBlock) MergeWith(other Interval) (Interval, bool) {
	o, ok := other.(*UnavailabilityBlock)
	if !ok {
		return nil, false
	}
	if b.Reason != o.Reason || !sameScope(b.PhysicianID, o.PhysicianID) {
		return nil, false
	}
	if !b.Span().mergeableWith(o.Span()) {
		return nil, false
	}

	span := b.Span().unionSpan(o.Span())
	merged, err := NewUnavailabilityBlock(b.Reason, b.PhysicianID, span.Start, span.End, b.Description)
	if err != nil {
		return nil, false
	}
	merged.IsRecurring = b.IsRecurring
	merged.RecurrencePattern = b.RecurrencePattern
	return merged, true
}

func sameScope(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
