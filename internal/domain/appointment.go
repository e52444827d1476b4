package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AppointmentStatus string

const (
	AppointmentScheduled   AppointmentStatus = "scheduled"
	AppointmentCompleted   AppointmentStatus = "completed"
	AppointmentCancelled   AppointmentStatus = "cancelled"
	AppointmentNoShow      AppointmentStatus = "no_show"
	AppointmentInProgress  AppointmentStatus = "in_progress"
	AppointmentTentative   AppointmentStatus = "tentative"
	AppointmentRescheduled AppointmentStatus = "rescheduled"
)

const (
	MinAppointmentDuration = 15 * time.Minute
	MaxAppointmentDuration = 3 * time.Hour

	// CancellationReasonRescheduled marks an appointment replaced by a
	// successor carrying RescheduledFromID.
	CancellationReasonRescheduled = "Rescheduled"
)

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	PatientID   uuid.UUID `bun:"patient_id,notnull,type:uuid"`
	PhysicianID uuid.UUID `bun:"physician_id,notnull,type:uuid"`
	StartTime   time.Time `bun:"start_time,notnull"`
	EndTime     time.Time `bun:"end_time,notnull"`
	Description string    `bun:"description"`

	Status          AppointmentStatus `bun:"status,notnull"`
	AppointmentType string            `bun:"appointment_type,notnull"`
	ReasonForVisit  string            `bun:"reason_for_visit"`
	Notes           string            `bun:"notes"`

	ClinicalDocumentID *uuid.UUID `bun:"clinical_document_id,type:uuid"`
	RescheduledFromID  *uuid.UUID `bun:"rescheduled_from_id,type:uuid"`
	CancellationReason string     `bun:"cancellation_reason"`
	CompletedAt        *time.Time `bun:"completed_at"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func NewAppointment(patientID, physicianID uuid.UUID, start, end time.Time, reasonForVisit string) (*Appointment, error) {
	if patientID == uuid.Nil {
		return nil, ErrPatientRequired
	}
	if physicianID == uuid.Nil {
		return nil, ErrPhysicianRequired
	}

	start = start.UTC()
	end = end.UTC()
	if !end.After(start) {
		return nil, ErrInvalidSpan
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	return &Appointment{
		ID:              id,
		PatientID:       patientID,
		PhysicianID:     physicianID,
		StartTime:       start,
		EndTime:         end,
		Status:          AppointmentScheduled,
		AppointmentType: AppointmentTypeFor(end.Sub(start)),
		ReasonForVisit:  reasonForVisit,
	}, nil
}

// AppointmentTypeFor buckets a duration into the visit label derived once at
// construction time.
func AppointmentTypeFor(d time.Duration) string {
	switch {
	case d <= 15*time.Minute:
		return "Quick Checkup"
	case d <= 30*time.Minute:
		return "Standard Visit"
	case d <= 45*time.Minute:
		return "Extended Consultation"
	case d <= time.Hour:
		return "Comprehensive Exam"
	default:
		return "Extended Procedure"
	}
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

func (a *Appointment) IntervalID() uuid.UUID {
	return a.ID
}

func (a *Appointment) Span() TimeSpan {
	return TimeSpan{Start: a.StartTime, End: a.EndTime}
}

func (a *Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

func (a *Appointment) IsTerminal() bool {
	switch a.Status {
	case AppointmentCompleted, AppointmentCancelled, AppointmentNoShow, AppointmentRescheduled:
		return true
	}
	return false
}

func (a *Appointment) MarkCompleted() error {
	if a.Status != AppointmentScheduled {
		return ErrInvalidTransition
	}
	now := time.Now().UTC()
	a.Status = AppointmentCompleted
	a.CompletedAt = &now
	return nil
}

func (a *Appointment) MarkNoShow() error {
	if a.Status != AppointmentScheduled {
		return ErrInvalidTransition
	}
	a.Status = AppointmentNoShow
	return nil
}

// CanCancel reports whether the appointment is still scheduled and has not
// started yet.
func (a *Appointment) CanCancel() bool {
	return a.Status == AppointmentScheduled && a.StartTime.After(time.Now().UTC())
}

func (a *Appointment) Cancel(reason string) error {
	if !a.CanCancel() {
		return ErrCancelNotAllowed
	}
	a.Status = AppointmentCancelled
	a.CancellationReason = reason
	return nil
}

// Reschedule creates the live successor and cancels the receiver. The two
// records are not persisted atomically by this method; the caller owns
// committing both together.
func (a *Appointment) Reschedule(newStart, newEnd time.Time) (*Appointment, error) {
	if a.Status != AppointmentScheduled {
		return nil, ErrInvalidTransition
	}

	next, err := NewAppointment(a.PatientID, a.PhysicianID, newStart, newEnd, a.ReasonForVisit)
	if err != nil {
		return nil, err
	}

	fromID := a.ID
	next.RescheduledFromID = &fromID
	next.Notes = fmt.Sprintf("Rescheduled from %s", a.StartTime.Format(time.RFC3339))

	a.Status = AppointmentCancelled
	a.CancellationReason = CancellationReasonRescheduled

	return next, nil
}

// ConflictsWith is true only for two distinct scheduled appointments of the
// same physician whose spans overlap.
func (a *Appointment) ConflictsWith(other *Appointment) bool {
	if other == nil || a.ID == other.ID {
		return false
	}
	if a.PhysicianID != other.PhysicianID {
		return false
	}
	if a.Status != AppointmentScheduled || other.Status != AppointmentScheduled {
		return false
	}
	return a.Span().Overlaps(other.Span())
}

func (a *Appointment) Validate() []string {
	var violations []string

	if !a.EndTime.After(a.StartTime) {
		violations = append(violations, "end time must be after start time")
	}
	if a.PatientID == uuid.Nil {
		violations = append(violations, "patient id is required")
	}
	if a.PhysicianID == uuid.Nil {
		violations = append(violations, "physician id is required")
	}

	if a.EndTime.After(a.StartTime) {
		d := a.Duration()
		if d < MinAppointmentDuration {
			violations = append(violations, "appointment must last at least 15 minutes")
		}
		if d > MaxAppointmentDuration {
			violations = append(violations, "appointment must not exceed 3 hours")
		}
		if !a.Span().IsWithinBusinessHours() {
			violations = append(violations, "appointment must fall within business hours")
		}
	}

	if a.Status == AppointmentScheduled && a.StartTime.Before(time.Now().UTC()) {
		violations = append(violations, "appointment cannot be scheduled in the past")
	}
	if a.Status == AppointmentCompleted && a.CompletedAt == nil {
		violations = append(violations, "completed appointment must record a completion time")
	}

	return violations
}

// MergeWith combines two overlapping or adjacent appointments of the same
// patient and physician into one covering appointment.
func (a *Appointment) MergeWith(other Interval) (Interval, bool) {
	o, ok := other.(*Appointment)
	if !ok {
		return nil, false
	}
	if a.PatientID != o.PatientID || a.PhysicianID != o.PhysicianID {
		return nil, false
	}
	if !a.Span().mergeableWith(o.Span()) {
		return nil, false
	}

	span := a.Span().unionSpan(o.Span())
	merged, err := NewAppointment(a.PatientID, a.PhysicianID, span.Start, span.End, a.ReasonForVisit)
	if err != nil {
		return nil, false
	}
	merged.Description = a.Description
	return merged, true
}
