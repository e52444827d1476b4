package httpapi

import (
	"time"

	"github.com/google/uuid"

	"medsched/backend/internal/domain"
)

type BookAppointmentRequest struct {
	PatientID      string    `json:"patient_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Description    string    `json:"description,omitempty"`
	ReasonForVisit string    `json:"reason_for_visit,omitempty"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

type RescheduleAppointmentRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type CreateBlockRequest struct {
	Reason      string    `json:"reason"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description string    `json:"description,omitempty"`
}

type AppointmentResponse struct {
	ID                 uuid.UUID  `json:"id"`
	PatientID          uuid.UUID  `json:"patient_id"`
	PhysicianID        uuid.UUID  `json:"physician_id"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	Status             string     `json:"status"`
	AppointmentType    string     `json:"appointment_type"`
	Description        string     `json:"description,omitempty"`
	ReasonForVisit     string     `json:"reason_for_visit,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	RescheduledFromID  *uuid.UUID `json:"rescheduled_from_id,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

type SlotResponse struct {
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	PhysicianID uuid.UUID `json:"physician_id"`
	IsOptimal   bool      `json:"is_optimal"`
}

type BlockResponse struct {
	ID          uuid.UUID  `json:"id"`
	PhysicianID *uuid.UUID `json:"physician_id,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Reason      string     `json:"reason"`
	Description string     `json:"description,omitempty"`
}

type SummaryResponse struct {
	Date               time.Time `json:"date"`
	BookedHours        float64   `json:"booked_hours"`
	AvailableHours     float64   `json:"available_hours"`
	UtilizationPercent float64   `json:"utilization_percent"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func appointmentResponse(a *domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:                 a.ID,
		PatientID:          a.PatientID,
		PhysicianID:        a.PhysicianID,
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		Status:             string(a.Status),
		AppointmentType:    a.AppointmentType,
		Description:        a.Description,
		ReasonForVisit:     a.ReasonForVisit,
		Notes:              a.Notes,
		RescheduledFromID:  a.RescheduledFromID,
		CancellationReason: a.CancellationReason,
		CompletedAt:        a.CompletedAt,
	}
}

func slotResponse(s domain.AppointmentSlot) SlotResponse {
	return SlotResponse{
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		PhysicianID: s.PhysicianID,
		IsOptimal:   s.IsOptimal,
	}
}

func blockResponse(b *domain.UnavailabilityBlock) BlockResponse {
	return BlockResponse{
		ID:          b.ID,
		PhysicianID: b.PhysicianID,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Reason:      string(b.Reason),
		Description: b.Description,
	}
}
