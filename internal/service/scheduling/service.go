package scheduling

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"medsched/backend/internal/domain"
	"medsched/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// Service owns the in-memory schedule registry and keeps it consistent with
// the repository. Schedules are hydrated lazily, once per physician.
type Service struct {
	repo     store.ScheduleRepository
	strategy domain.BookingStrategy

	mu        sync.Mutex
	schedules map[uuid.UUID]*domain.PhysicianSchedule
}

func NewService(repo store.ScheduleRepository, strategy domain.BookingStrategy) *Service {
	return &Service{
		repo:      repo,
		strategy:  strategy,
		schedules: make(map[uuid.UUID]*domain.PhysicianSchedule),
	}
}

func (s *Service) scheduleFor(ctx context.Context, physicianID uuid.UUID) (*domain.PhysicianSchedule, error) {
	s.mu.Lock()
	if sched, ok := s.schedules[physicianID]; ok {
		s.mu.Unlock()
		return sched, nil
	}
	s.mu.Unlock()

	appts, err := s.repo.ListAppointmentsByPhysician(ctx, physicianID)
	if err != nil {
		return nil, err
	}
	blocks, err := s.repo.ListBlocksForPhysician(ctx, physicianID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent caller may have hydrated meanwhile; theirs wins.
	if sched, ok := s.schedules[physicianID]; ok {
		return sched, nil
	}

	sched := domain.NewPhysicianSchedule(physicianID)
	for _, appt := range appts {
		sched.LoadAppointment(appt)
	}
	for _, block := range blocks {
		sched.AddUnavailableBlock(block)
	}
	s.schedules[physicianID] = sched
	return sched, nil
}

type BookInput struct {
	PatientID      uuid.UUID
	PhysicianID    uuid.UUID
	StartTime      time.Time
	EndTime        time.Time
	Description    string
	ReasonForVisit string
	IdempotencyKey string
}

func (s *Service) Book(ctx context.Context, in BookInput) (*domain.Appointment, error) {
	if in.PatientID == uuid.Nil {
		return nil, validationError("patient_id is required")
	}
	if in.PhysicianID == uuid.Nil {
		return nil, validationError("physician_id is required")
	}

	appt, err := domain.NewAppointment(in.PatientID, in.PhysicianID, in.StartTime, in.EndTime, in.ReasonForVisit)
	if err != nil {
		switch err {
		case domain.ErrInvalidSpan:
			return nil, validationError("end_time must be after start_time")
		default:
			return nil, err
		}
	}
	appt.Description = in.Description

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if len(key) > 256 {
			return nil, validationError("idempotency_key too long")
		}
		appt.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("medsched:book:"+in.PhysicianID.String()+":"+key))
	}

	if violations := appt.Validate(); len(violations) > 0 {
		return nil, validationError(strings.Join(violations, "; "))
	}

	sched, err := s.scheduleFor(ctx, in.PhysicianID)
	if err != nil {
		return nil, err
	}

	if !sched.TryAddAppointment(appt) {
		// The schedule rejects a reused id before anything else, so a
		// present id means this key was already booked.
		if existing, ok := sched.GetAppointment(appt.ID); ok {
			if sameBooking(&existing, appt) {
				return &existing, nil
			}
			return nil, store.ErrIdempotencyConflict
		}
		return nil, store.ErrConflict
	}

	if err := s.repo.CreateAppointment(ctx, appt); err != nil {
		sched.RemoveAppointment(appt.ID)
		return nil, err
	}
	return appt, nil
}

// sameBooking reports whether a keyed retry carries the same booking as the
// record it collided with.
func sameBooking(existing, incoming *domain.Appointment) bool {
	return existing.PatientID == incoming.PatientID &&
		existing.StartTime.Equal(incoming.StartTime) &&
		existing.EndTime.Equal(incoming.EndTime) &&
		existing.ReasonForVisit == incoming.ReasonForVisit
}

func (s *Service) Cancel(ctx context.Context, physicianID, appointmentID uuid.UUID, reason string) (*domain.Appointment, error) {
	return s.mutateAppointment(ctx, physicianID, appointmentID, func(a *domain.Appointment) error {
		return a.Cancel(reason)
	})
}

func (s *Service) Complete(ctx context.Context, physicianID, appointmentID uuid.UUID) (*domain.Appointment, error) {
	return s.mutateAppointment(ctx, physicianID, appointmentID, func(a *domain.Appointment) error {
		return a.MarkCompleted()
	})
}

func (s *Service) MarkNoShow(ctx context.Context, physicianID, appointmentID uuid.UUID) (*domain.Appointment, error) {
	return s.mutateAppointment(ctx, physicianID, appointmentID, func(a *domain.Appointment) error {
		return a.MarkNoShow()
	})
}

func (s *Service) mutateAppointment(ctx context.Context, physicianID, appointmentID uuid.UUID, fn func(*domain.Appointment) error) (*domain.Appointment, error) {
	if appointmentID == uuid.Nil {
		return nil, validationError("appointment_id is required")
	}

	sched, err := s.scheduleFor(ctx, physicianID)
	if err != nil {
		return nil, err
	}

	var prior, snapshot domain.Appointment
	err = sched.WithAppointment(appointmentID, func(a *domain.Appointment) error {
		prior = *a
		if err := fn(a); err != nil {
			return err
		}
		snapshot = *a
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAppointment(ctx, &snapshot); err != nil {
		// Put the record back the way the store still has it.
		_ = sched.WithAppointment(appointmentID, func(a *domain.Appointment) error {
			*a = prior
			return nil
		})
		return nil, err
	}
	return &snapshot, nil
}

func (s *Service) Reschedule(ctx context.Context, physicianID, appointmentID uuid.UUID, newStart, newEnd time.Time) (*domain.Appointment, error) {
	if appointmentID == uuid.Nil {
		return nil, validationError("appointment_id is required")
	}

	sched, err := s.scheduleFor(ctx, physicianID)
	if err != nil {
		return nil, err
	}

	next, err := sched.RescheduleAppointment(appointmentID, newStart, newEnd)
	if err != nil {
		return nil, err
	}

	original, ok := sched.GetAppointment(appointmentID)
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}

	if err := s.repo.CommitReschedule(ctx, &original, next); err != nil {
		// Undo the in-memory swap so the registry stays aligned with
		// what the store actually holds.
		sched.RemoveAppointment(next.ID)
		_ = sched.WithAppointment(appointmentID, func(a *domain.Appointment) error {
			a.Status = domain.AppointmentScheduled
			a.CancellationReason = ""
			return nil
		})
		return nil, err
	}
	return next, nil
}

type BlockInput struct {
	PhysicianID *uuid.UUID
	Reason      domain.BlockReason
	StartTime   time.Time
	EndTime     time.Time
	Description string
}

func (s *Service) AddBlock(ctx context.Context, in BlockInput) (*domain.UnavailabilityBlock, error) {
	block, err := domain.NewUnavailabilityBlock(in.Reason, in.PhysicianID, in.StartTime, in.EndTime, in.Description)
	if err != nil {
		if err == domain.ErrInvalidSpan {
			return nil, validationError("end_time must be after start_time")
		}
		return nil, err
	}
	if violations := block.Validate(); len(violations) > 0 {
		return nil, validationError(strings.Join(violations, "; "))
	}

	// Persist before registering so a failed write never leaves a phantom
	// block shrinking the in-memory schedule.
	if err := s.repo.CreateBlock(ctx, block); err != nil {
		return nil, err
	}

	if in.PhysicianID != nil {
		sched, err := s.scheduleFor(ctx, *in.PhysicianID)
		if err != nil {
			return nil, err
		}
		sched.AddUnavailableBlock(block)
	}
	return block, nil
}

func (s *Service) NextSlot(ctx context.Context, physicianID uuid.UUID, duration time.Duration, after time.Time) (domain.AppointmentSlot, error) {
	if duration <= 0 {
		return domain.AppointmentSlot{}, validationError("duration must be positive")
	}

	sched, err := s.scheduleFor(ctx, physicianID)
	if err != nil {
		return domain.AppointmentSlot{}, err
	}
	facility, err := s.repo.ListFacilityBlocks(ctx)
	if err != nil {
		return domain.AppointmentSlot{}, err
	}

	slot, ok := s.strategy.FindNextAvailableSlot(sched, duration, after, facility)
	if !ok {
		return domain.AppointmentSlot{}, store.ErrNotFound
	}
	return slot, nil
}

func (s *Service) Slots(ctx context.Context, physicianID uuid.UUID, duration time.Duration, after time.Time, maxResults int) ([]domain.AppointmentSlot, error) {
	if duration <= 0 {
		return nil, validationError("duration must be positive")
	}
	if maxResults < 1 {
		return nil, validationError("max_results must be at least 1")
	}

	sched, err := s.scheduleFor(ctx, physicianID)
	if err != nil {
		return nil, err
	}
	facility, err := s.repo.ListFacilityBlocks(ctx)
	if err != nil {
		return nil, err
	}

	return s.strategy.FindAvailableSlots(sched, duration, after, maxResults, facility), nil
}

func (s *Service) AppointmentsForDate(ctx context.Context, physicianID uuid.UUID, date time.Time) ([]domain.Appointment, error) {
	sched, err := s.scheduleFor(ctx, physicianID)
	if err != nil {
		return nil, err
	}
	return sched.GetAppointmentsForDate(date), nil
}

func (s *Service) AppointmentsInRange(ctx context.Context, physicianID uuid.UUID, start, end time.Time) ([]domain.Appointment, error) {
	if !end.After(start) {
		return nil, validationError("range_end must be after range_start")
	}
	sched, err := s.scheduleFor(ctx, physicianID)
	if err != nil {
		return nil, err
	}
	return sched.GetAppointmentsInRange(start, end), nil
}

func (s *Service) Summary(ctx context.Context, physicianID uuid.UUID, date time.Time) (domain.AvailabilitySummary, error) {
	sched, err := s.scheduleFor(ctx, physicianID)
	if err != nil {
		return domain.AvailabilitySummary{}, err
	}
	return sched.GetAvailabilitySummary(date), nil
}

// PurgeOld drops appointments that ended before the cutoff from both the
// in-memory schedule and the store.
func (s *Service) PurgeOld(ctx context.Context, physicianID uuid.UUID, before time.Time) (int, error) {
	sched, err := s.scheduleFor(ctx, physicianID)
	if err != nil {
		return 0, err
	}

	removed, err := s.repo.DeleteAppointmentsEndingBefore(ctx, physicianID, before)
	if err != nil {
		return 0, err
	}
	sched.ClearOldAppointments(before)
	return removed, nil
}
