package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"medsched/backend/internal/domain"
)

// ScheduleRepository persists one clinic's appointments and blackout blocks.
// The schedule aggregate owns conflict correctness in memory; the repository
// owns durable state and the bulk-load path that hydrates schedules.
type ScheduleRepository interface {
	CreateAppointment(ctx context.Context, appt *domain.Appointment) error
	UpdateAppointment(ctx context.Context, appt *domain.Appointment) error
	ListAppointmentsByPhysician(ctx context.Context, physicianID uuid.UUID) ([]*domain.Appointment, error)
	DeleteAppointmentsEndingBefore(ctx context.Context, physicianID uuid.UUID, before time.Time) (int, error)

	CreateBlock(ctx context.Context, block *domain.UnavailabilityBlock) error
	ListBlocksForPhysician(ctx context.Context, physicianID uuid.UUID) ([]*domain.UnavailabilityBlock, error)
	ListFacilityBlocks(ctx context.Context) ([]*domain.UnavailabilityBlock, error)

	// CommitReschedule writes the cancelled original and its successor in
	// one transaction; the two records must never be committed separately.
	CommitReschedule(ctx context.Context, original *domain.Appointment, next *domain.Appointment) error
}

// ScheduleTx is the per-physician transactional surface the Postgres
// repository runs under its advisory lock.
type ScheduleTx interface {
	CreateAppointment(ctx context.Context, appt *domain.Appointment) error
	UpdateAppointment(ctx context.Context, appt *domain.Appointment) error
	DeleteAppointmentsEndingBefore(ctx context.Context, physicianID uuid.UUID, before time.Time) (int, error)
	CreateBlock(ctx context.Context, block *domain.UnavailabilityBlock) error
}
