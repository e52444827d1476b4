package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"medsched/backend/internal/domain"
	"medsched/backend/internal/store"
)

var (
	testPatientID   = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	testPhysicianID = uuid.MustParse("00000000-0000-0000-0000-0000000000b1")
)

func mondayMorning() time.Time {
	return time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
}

type fakeRepo struct {
	createAppointmentFn  func(ctx context.Context, appt *domain.Appointment) error
	updateAppointmentFn  func(ctx context.Context, appt *domain.Appointment) error
	listByPhysicianFn    func(ctx context.Context, physicianID uuid.UUID) ([]*domain.Appointment, error)
	deleteEndingBeforeFn func(ctx context.Context, physicianID uuid.UUID, before time.Time) (int, error)
	createBlockFn        func(ctx context.Context, block *domain.UnavailabilityBlock) error
	listBlocksFn         func(ctx context.Context, physicianID uuid.UUID) ([]*domain.UnavailabilityBlock, error)
	listFacilityBlocksFn func(ctx context.Context) ([]*domain.UnavailabilityBlock, error)
	commitRescheduleFn   func(ctx context.Context, original, next *domain.Appointment) error
}

func (f *fakeRepo) CreateAppointment(ctx context.Context, appt *domain.Appointment) error {
	if f.createAppointmentFn == nil {
		panic("CreateAppointment not configured")
	}
	return f.createAppointmentFn(ctx, appt)
}

func (f *fakeRepo) UpdateAppointment(ctx context.Context, appt *domain.Appointment) error {
	if f.updateAppointmentFn == nil {
		panic("UpdateAppointment not configured")
	}
	return f.updateAppointmentFn(ctx, appt)
}

func (f *fakeRepo) ListAppointmentsByPhysician(ctx context.Context, physicianID uuid.UUID) ([]*domain.Appointment, error) {
	if f.listByPhysicianFn == nil {
		return nil, nil
	}
	return f.listByPhysicianFn(ctx, physicianID)
}

func (f *fakeRepo) DeleteAppointmentsEndingBefore(ctx context.Context, physicianID uuid.UUID, before time.Time) (int, error) {
	if f.deleteEndingBeforeFn == nil {
		panic("DeleteAppointmentsEndingBefore not configured")
	}
	return f.deleteEndingBeforeFn(ctx, physicianID, before)
}

func (f *fakeRepo) CreateBlock(ctx context.Context, block *domain.UnavailabilityBlock) error {
	if f.createBlockFn == nil {
		panic("CreateBlock not configured")
	}
	return f.createBlockFn(ctx, block)
}

func (f *fakeRepo) ListBlocksForPhysician(ctx context.Context, physicianID uuid.UUID) ([]*domain.UnavailabilityBlock, error) {
	if f.listBlocksFn == nil {
		return nil, nil
	}
	return f.listBlocksFn(ctx, physicianID)
}

func (f *fakeRepo) ListFacilityBlocks(ctx context.Context) ([]*domain.UnavailabilityBlock, error) {
	if f.listFacilityBlocksFn == nil {
		return nil, nil
	}
	return f.listFacilityBlocksFn(ctx)
}

func (f *fakeRepo) CommitReschedule(ctx context.Context, original, next *domain.Appointment) error {
	if f.commitRescheduleFn == nil {
		panic("CommitReschedule not configured")
	}
	return f.commitRescheduleFn(ctx, original, next)
}

func acceptingRepo() *fakeRepo {
	return &fakeRepo{
		createAppointmentFn: func(ctx context.Context, appt *domain.Appointment) error { return nil },
		updateAppointmentFn: func(ctx context.Context, appt *domain.Appointment) error { return nil },
		createBlockFn:       func(ctx context.Context, block *domain.UnavailabilityBlock) error { return nil },
		commitRescheduleFn:  func(ctx context.Context, original, next *domain.Appointment) error { return nil },
	}
}

func TestServiceBook_ValidationErrorType(t *testing.T) {
	svc := NewService(acceptingRepo(), domain.NewFirstAvailable())

	_, err := svc.Book(context.Background(), BookInput{
		PatientID:   uuid.Nil,
		PhysicianID: testPhysicianID,
		StartTime:   mondayMorning(),
		EndTime:     mondayMorning().Add(30 * time.Minute),
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if vErr.Error() != "patient_id is required" {
		t.Fatalf("error = %q, want %q", vErr.Error(), "patient_id is required")
	}
}

func TestServiceBook_RejectsBusinessRuleViolations(t *testing.T) {
	svc := NewService(acceptingRepo(), domain.NewFirstAvailable())

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{
			name:  "too short",
			start: mondayMorning(),
			end:   mondayMorning().Add(10 * time.Minute),
		},
		{
			name:  "too long",
			start: mondayMorning(),
			end:   mondayMorning().Add(4 * time.Hour),
		},
		{
			name:  "weekend",
			start: time.Date(2030, 1, 12, 9, 0, 0, 0, time.UTC),
			end:   time.Date(2030, 1, 12, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "before opening",
			start: time.Date(2030, 1, 7, 7, 0, 0, 0, time.UTC),
			end:   time.Date(2030, 1, 7, 7, 30, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Book(context.Background(), BookInput{
				PatientID:   testPatientID,
				PhysicianID: testPhysicianID,
				StartTime:   tc.start,
				EndTime:     tc.end,
			})
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
		})
	}
}

func TestServiceBook_PersistsAndRegistersAppointment(t *testing.T) {
	var persisted *domain.Appointment
	repo := acceptingRepo()
	repo.createAppointmentFn = func(ctx context.Context, appt *domain.Appointment) error {
		persisted = appt
		return nil
	}
	svc := NewService(repo, domain.NewFirstAvailable())

	appt, err := svc.Book(context.Background(), BookInput{
		PatientID:      testPatientID,
		PhysicianID:    testPhysicianID,
		StartTime:      mondayMorning(),
		EndTime:        mondayMorning().Add(30 * time.Minute),
		ReasonForVisit: "checkup",
	})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if persisted == nil || persisted.ID != appt.ID {
		t.Fatalf("expected booked appointment to be persisted")
	}
	if appt.Status != domain.AppointmentScheduled {
		t.Fatalf("status = %q, want %q", appt.Status, domain.AppointmentScheduled)
	}

	got, err := svc.AppointmentsForDate(context.Background(), testPhysicianID, mondayMorning())
	if err != nil {
		t.Fatalf("AppointmentsForDate error: %v", err)
	}
	if len(got) != 1 || got[0].ID != appt.ID {
		t.Fatalf("registry does not hold the booked appointment")
	}
}

func TestServiceBook_ConflictReturnsStoreErrConflict(t *testing.T) {
	svc := NewService(acceptingRepo(), domain.NewFirstAvailable())

	first := BookInput{
		PatientID:   testPatientID,
		PhysicianID: testPhysicianID,
		StartTime:   mondayMorning(),
		EndTime:     mondayMorning().Add(time.Hour),
	}
	if _, err := svc.Book(context.Background(), first); err != nil {
		t.Fatalf("Book error: %v", err)
	}

	second := first
	second.StartTime = mondayMorning().Add(30 * time.Minute)
	second.EndTime = mondayMorning().Add(90 * time.Minute)
	if _, err := svc.Book(context.Background(), second); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("err = %v, want %v", err, store.ErrConflict)
	}
}

func TestServiceBook_IdempotencyKeyReplayReturnsExisting(t *testing.T) {
	calls := 0
	repo := acceptingRepo()
	repo.createAppointmentFn = func(ctx context.Context, appt *domain.Appointment) error {
		calls++
		return nil
	}
	svc := NewService(repo, domain.NewFirstAvailable())

	in := BookInput{
		PatientID:      testPatientID,
		PhysicianID:    testPhysicianID,
		StartTime:      mondayMorning(),
		EndTime:        mondayMorning().Add(30 * time.Minute),
		IdempotencyKey: "req-42",
	}

	first, err := svc.Book(context.Background(), in)
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	replay, err := svc.Book(context.Background(), in)
	if err != nil {
		t.Fatalf("replay Book error: %v", err)
	}
	if replay.ID != first.ID {
		t.Fatalf("replay id = %s, want %s", replay.ID, first.ID)
	}
	if calls != 1 {
		t.Fatalf("CreateAppointment calls = %d, want 1", calls)
	}
}

func TestServiceBook_DivergentKeyedRetryRejected(t *testing.T) {
	calls := 0
	repo := acceptingRepo()
	repo.createAppointmentFn = func(ctx context.Context, appt *domain.Appointment) error {
		calls++
		return nil
	}
	svc := NewService(repo, domain.NewFirstAvailable())

	in := BookInput{
		PatientID:      testPatientID,
		PhysicianID:    testPhysicianID,
		StartTime:      mondayMorning(),
		EndTime:        mondayMorning().Add(30 * time.Minute),
		ReasonForVisit: "checkup",
		IdempotencyKey: "req-42",
	}
	if _, err := svc.Book(context.Background(), in); err != nil {
		t.Fatalf("Book error: %v", err)
	}

	in.ReasonForVisit = "follow-up"
	if _, err := svc.Book(context.Background(), in); !errors.Is(err, store.ErrIdempotencyConflict) {
		t.Fatalf("err = %v, want %v", err, store.ErrIdempotencyConflict)
	}
	if calls != 1 {
		t.Fatalf("CreateAppointment calls = %d, want 1", calls)
	}

	got, err := svc.AppointmentsForDate(context.Background(), testPhysicianID, mondayMorning())
	if err != nil {
		t.Fatalf("AppointmentsForDate error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(appointments) = %d, want 1", len(got))
	}
}

func TestServiceBook_PersistFailureRollsBackRegistry(t *testing.T) {
	repoErr := errors.New("db down")
	repo := acceptingRepo()
	repo.createAppointmentFn = func(ctx context.Context, appt *domain.Appointment) error {
		return repoErr
	}
	svc := NewService(repo, domain.NewFirstAvailable())

	in := BookInput{
		PatientID:   testPatientID,
		PhysicianID: testPhysicianID,
		StartTime:   mondayMorning(),
		EndTime:     mondayMorning().Add(30 * time.Minute),
	}
	if _, err := svc.Book(context.Background(), in); !errors.Is(err, repoErr) {
		t.Fatalf("err = %v, want %v", err, repoErr)
	}

	// The slot must be free again after the failed persist.
	repo.createAppointmentFn = func(ctx context.Context, appt *domain.Appointment) error { return nil }
	if _, err := svc.Book(context.Background(), in); err != nil {
		t.Fatalf("rebook after rollback error: %v", err)
	}
}

func TestServiceScheduleFor_HydratesFromRepository(t *testing.T) {
	existing, err := domain.NewAppointment(testPatientID, testPhysicianID, mondayMorning(), mondayMorning().Add(time.Hour), "loaded")
	if err != nil {
		t.Fatalf("NewAppointment error: %v", err)
	}

	repo := acceptingRepo()
	repo.listByPhysicianFn = func(ctx context.Context, physicianID uuid.UUID) ([]*domain.Appointment, error) {
		return []*domain.Appointment{existing}, nil
	}
	svc := NewService(repo, domain.NewFirstAvailable())

	_, err = svc.Book(context.Background(), BookInput{
		PatientID:   testPatientID,
		PhysicianID: testPhysicianID,
		StartTime:   mondayMorning().Add(30 * time.Minute),
		EndTime:     mondayMorning().Add(90 * time.Minute),
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("err = %v, want %v", err, store.ErrConflict)
	}
}

func TestServiceCancel_PersistsSnapshot(t *testing.T) {
	var updated *domain.Appointment
	repo := acceptingRepo()
	repo.updateAppointmentFn = func(ctx context.Context, appt *domain.Appointment) error {
		updated = appt
		return nil
	}
	svc := NewService(repo, domain.NewFirstAvailable())

	appt, err := svc.Book(context.Background(), BookInput{
		PatientID:   testPatientID,
		PhysicianID: testPhysicianID,
		StartTime:   mondayMorning(),
		EndTime:     mondayMorning().Add(30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}

	got, err := svc.Cancel(context.Background(), testPhysicianID, appt.ID, "patient request")
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if got.Status != domain.AppointmentCancelled {
		t.Fatalf("status = %q, want %q", got.Status, domain.AppointmentCancelled)
	}
	if got.CancellationReason != "patient request" {
		t.Fatalf("reason = %q, want %q", got.CancellationReason, "patient request")
	}
	if updated == nil || updated.Status != domain.AppointmentCancelled {
		t.Fatalf("cancelled state was not persisted")
	}
}

func TestServiceCancel_PersistFailureRestoresState(t *testing.T) {
	repoErr := errors.New("db down")
	repo := acceptingRepo()
	svc := NewService(repo, domain.NewFirstAvailable())

	appt, err := svc.Book(context.Background(), BookInput{
		PatientID:   testPatientID,
		PhysicianID: testPhysicianID,
		StartTime:   mondayMorning(),
		EndTime:     mondayMorning().Add(30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}

	repo.updateAppointmentFn = func(ctx context.Context, appt *domain.Appointment) error {
		return repoErr
	}
	if _, err := svc.Cancel(context.Background(), testPhysicianID, appt.ID, "patient request"); !errors.Is(err, repoErr) {
		t.Fatalf("err = %v, want %v", err, repoErr)
	}

	// The registry must still show the appointment as scheduled, so a
	// retry after the store recovers is a valid transition again.
	got, err := svc.AppointmentsForDate(context.Background(), testPhysicianID, mondayMorning())
	if err != nil {
		t.Fatalf("AppointmentsForDate error: %v", err)
	}
	if len(got) != 1 || got[0].Status != domain.AppointmentScheduled {
		t.Fatalf("appointments = %+v, want one scheduled record", got)
	}

	repo.updateAppointmentFn = func(ctx context.Context, appt *domain.Appointment) error { return nil }
	retried, err := svc.Cancel(context.Background(), testPhysicianID, appt.ID, "patient request")
	if err != nil {
		t.Fatalf("retry Cancel error: %v", err)
	}
	if retried.Status != domain.AppointmentCancelled {
		t.Fatalf("status = %q, want %q", retried.Status, domain.AppointmentCancelled)
	}
}

func TestServiceCancel_UnknownAppointment(t *testing.T) {
	svc := NewService(acceptingRepo(), domain.NewFirstAvailable())

	_, err := svc.Cancel(context.Background(), testPhysicianID, uuid.MustParse("00000000-0000-0000-0000-000000000999"), "x")
	if !errors.Is(err, domain.ErrAppointmentNotFound) {
		t.Fatalf("err = %v, want %v", err, domain.ErrAppointmentNotFound)
	}
}

func TestServiceComplete_InvalidTransition(t *testing.T) {
	svc := NewService(acceptingRepo(), domain.NewFirstAvailable())

	appt, err := svc.Book(context.Background(), BookInput{
		PatientID:   testPatientID,
		PhysicianID: testPhysicianID,
		StartTime:   mondayMorning(),
		EndTime:     mondayMorning().Add(30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), testPhysicianID, appt.ID, "x"); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}

	if _, err := svc.Complete(context.Background(), testPhysicianID, appt.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("err = %v, want %v", err, domain.ErrInvalidTransition)
	}
}

func TestServiceReschedule_CommitsBothRecords(t *testing.T) {
	var committedOriginal, committedNext *domain.Appointment
	repo := acceptingRepo()
	repo.commitRescheduleFn = func(ctx context.Context, original, next *domain.Appointment) error {
		committedOriginal = original
		committedNext = next
		return nil
	}
	svc := NewService(repo, domain.NewFirstAvailable())

	appt, err := svc.Book(context.Background(), BookInput{
		PatientID:   testPatientID,
		PhysicianID: testPhysicianID,
		StartTime:   mondayMorning(),
		EndTime:     mondayMorning().Add(30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}

	newStart := mondayMorning().Add(2 * time.Hour)
	next, err := svc.Reschedule(context.Background(), testPhysicianID, appt.ID, newStart, newStart.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("Reschedule error: %v", err)
	}

	if committedOriginal == nil || committedOriginal.Status != domain.AppointmentCancelled {
		t.Fatalf("original was not committed as cancelled")
	}
	if committedOriginal.CancellationReason != domain.CancellationReasonRescheduled {
		t.Fatalf("cancellation reason = %q, want %q", committedOriginal.CancellationReason, domain.CancellationReasonRescheduled)
	}
	if committedNext == nil || committedNext.ID != next.ID {
		t.Fatalf("successor was not committed")
	}
	if next.RescheduledFromID == nil || *next.RescheduledFromID != appt.ID {
		t.Fatalf("successor does not reference the original")
	}
}

func TestServiceReschedule_CommitFailureRestoresOriginal(t *testing.T) {
	repoErr := errors.New("db down")
	repo := acceptingRepo()
	repo.commitRescheduleFn = func(ctx context.Context, original, next *domain.Appointment) error {
		return repoErr
	}
	svc := NewService(repo, domain.NewFirstAvailable())

	appt, err := svc.Book(context.Background(), BookInput{
		PatientID:   testPatientID,
		PhysicianID: testPhysicianID,
		StartTime:   mondayMorning(),
		EndTime:     mondayMorning().Add(30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}

	newStart := mondayMorning().Add(2 * time.Hour)
	if _, err := svc.Reschedule(context.Background(), testPhysicianID, appt.ID, newStart, newStart.Add(30*time.Minute)); !errors.Is(err, repoErr) {
		t.Fatalf("err = %v, want %v", err, repoErr)
	}

	// The original must still hold its slot and the new window must be free.
	got, err := svc.AppointmentsForDate(context.Background(), testPhysicianID, mondayMorning())
	if err != nil {
		t.Fatalf("AppointmentsForDate error: %v", err)
	}
	if len(got) != 1 || got[0].ID != appt.ID || got[0].Status != domain.AppointmentScheduled {
		t.Fatalf("original appointment was not restored: %+v", got)
	}
}

func TestServiceAddBlock_ScopedBlockAffectsSchedule(t *testing.T) {
	var persisted *domain.UnavailabilityBlock
	repo := acceptingRepo()
	repo.createBlockFn = func(ctx context.Context, block *domain.UnavailabilityBlock) error {
		persisted = block
		return nil
	}
	svc := NewService(repo, domain.NewFirstAvailable())

	physicianID := testPhysicianID
	blockStart := mondayMorning()
	_, err := svc.AddBlock(context.Background(), BlockInput{
		PhysicianID: &physicianID,
		Reason:      domain.BlockMeeting,
		StartTime:   blockStart,
		EndTime:     blockStart.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("AddBlock error: %v", err)
	}
	if persisted == nil {
		t.Fatalf("block was not persisted")
	}

	_, err = svc.Book(context.Background(), BookInput{
		PatientID:   testPatientID,
		PhysicianID: physicianID,
		StartTime:   blockStart,
		EndTime:     blockStart.Add(30 * time.Minute),
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("err = %v, want %v", err, store.ErrConflict)
	}
}

func TestServiceAddBlock_FacilityBlockOnlyPersisted(t *testing.T) {
	var persisted *domain.UnavailabilityBlock
	repo := acceptingRepo()
	repo.createBlockFn = func(ctx context.Context, block *domain.UnavailabilityBlock) error {
		persisted = block
		return nil
	}
	svc := NewService(repo, domain.NewFirstAvailable())

	_, err := svc.AddBlock(context.Background(), BlockInput{
		PhysicianID: nil,
		Reason:      domain.BlockHoliday,
		StartTime:   mondayMorning(),
		EndTime:     mondayMorning().Add(8 * time.Hour),
	})
	if err != nil {
		t.Fatalf("AddBlock error: %v", err)
	}
	if persisted == nil || persisted.PhysicianID != nil {
		t.Fatalf("expected facility-wide block persisted with nil physician")
	}

	// Facility blocks reach slot search through the repository, not through
	// any one physician's schedule.
	if _, err := svc.Book(context.Background(), BookInput{
		PatientID:   testPatientID,
		PhysicianID: testPhysicianID,
		StartTime:   mondayMorning(),
		EndTime:     mondayMorning().Add(30 * time.Minute),
	}); err != nil {
		t.Fatalf("Book error: %v", err)
	}
}

func TestServiceAddBlock_PersistFailureLeavesWindowOpen(t *testing.T) {
	repoErr := errors.New("db down")
	repo := acceptingRepo()
	repo.createBlockFn = func(ctx context.Context, block *domain.UnavailabilityBlock) error {
		return repoErr
	}
	svc := NewService(repo, domain.NewFirstAvailable())

	physicianID := testPhysicianID
	if _, err := svc.AddBlock(context.Background(), BlockInput{
		PhysicianID: &physicianID,
		Reason:      domain.BlockMeeting,
		StartTime:   mondayMorning(),
		EndTime:     mondayMorning().Add(time.Hour),
	}); !errors.Is(err, repoErr) {
		t.Fatalf("err = %v, want %v", err, repoErr)
	}

	// A block the store never recorded must not shadow the window.
	if _, err := svc.Book(context.Background(), BookInput{
		PatientID:   testPatientID,
		PhysicianID: physicianID,
		StartTime:   mondayMorning(),
		EndTime:     mondayMorning().Add(30 * time.Minute),
	}); err != nil {
		t.Fatalf("Book error: %v", err)
	}
}

func TestServiceNextSlot_HonorsFacilityBlocks(t *testing.T) {
	facility, err := domain.NewUnavailabilityBlock(domain.BlockHoliday, nil,
		time.Date(2030, 1, 7, 8, 0, 0, 0, time.UTC),
		time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC), "")
	if err != nil {
		t.Fatalf("NewUnavailabilityBlock error: %v", err)
	}

	repo := acceptingRepo()
	repo.listFacilityBlocksFn = func(ctx context.Context) ([]*domain.UnavailabilityBlock, error) {
		return []*domain.UnavailabilityBlock{facility}, nil
	}
	svc := NewService(repo, domain.NewFirstAvailable())

	slot, err := svc.NextSlot(context.Background(), testPhysicianID, 30*time.Minute, time.Date(2030, 1, 7, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NextSlot error: %v", err)
	}
	want := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	if !slot.StartTime.Equal(want) {
		t.Fatalf("slot start = %v, want %v", slot.StartTime, want)
	}
}

func TestServiceNextSlot_NoSlotReturnsNotFound(t *testing.T) {
	svc := NewService(acceptingRepo(), domain.NewFirstAvailable())

	sched, err := svc.scheduleFor(context.Background(), testPhysicianID)
	if err != nil {
		t.Fatalf("scheduleFor error: %v", err)
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		sched.ClearAvailability(wd)
	}

	if _, err := svc.NextSlot(context.Background(), testPhysicianID, 30*time.Minute, mondayMorning()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, store.ErrNotFound)
	}
}

func TestServicePurgeOld(t *testing.T) {
	repo := acceptingRepo()
	repo.deleteEndingBeforeFn = func(ctx context.Context, physicianID uuid.UUID, before time.Time) (int, error) {
		return 2, nil
	}
	svc := NewService(repo, domain.NewFirstAvailable())

	removed, err := svc.PurgeOld(context.Background(), testPhysicianID, mondayMorning())
	if err != nil {
		t.Fatalf("PurgeOld error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
}
