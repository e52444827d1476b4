package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"medsched/backend/internal/domain"
	"medsched/backend/internal/store"
)

type ScheduleRepo struct {
	db *bun.DB
}

func NewScheduleRepo(db *bun.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

type scheduleTx struct {
	tx bun.Tx
}

func (r *ScheduleRepo) CreateAppointment(ctx context.Context, appt *domain.Appointment) error {
	return r.InPhysicianTransaction(ctx, appt.PhysicianID, func(ctx context.Context, tx store.ScheduleTx) error {
		return tx.CreateAppointment(ctx, appt)
	})
}

func (r *ScheduleRepo) UpdateAppointment(ctx context.Context, appt *domain.Appointment) error {
	return r.InPhysicianTransaction(ctx, appt.PhysicianID, func(ctx context.Context, tx store.ScheduleTx) error {
		return tx.UpdateAppointment(ctx, appt)
	})
}

func (r *ScheduleRepo) ListAppointmentsByPhysician(ctx context.Context, physicianID uuid.UUID) ([]*domain.Appointment, error) {
	var rows []*domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("physician_id = ?", physicianID).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ScheduleRepo) DeleteAppointmentsEndingBefore(ctx context.Context, physicianID uuid.UUID, before time.Time) (int, error) {
	removed := 0
	err := r.InPhysicianTransaction(ctx, physicianID, func(ctx context.Context, tx store.ScheduleTx) error {
		n, err := tx.DeleteAppointmentsEndingBefore(ctx, physicianID, before)
		if err != nil {
			return err
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *ScheduleRepo) CreateBlock(ctx context.Context, block *domain.UnavailabilityBlock) error {
	return r.InPhysicianTransaction(ctx, blockLockID(block), func(ctx context.Context, tx store.ScheduleTx) error {
		return tx.CreateBlock(ctx, block)
	})
}

func (r *ScheduleRepo) ListBlocksForPhysician(ctx context.Context, physicianID uuid.UUID) ([]*domain.UnavailabilityBlock, error) {
	var rows []*domain.UnavailabilityBlock
	err := r.db.NewSelect().
		Model(&rows).
		Where("physician_id = ?", physicianID).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ScheduleRepo) ListFacilityBlocks(ctx context.Context) ([]*domain.UnavailabilityBlock, error) {
	var rows []*domain.UnavailabilityBlock
	err := r.db.NewSelect().
		Model(&rows).
		Where("physician_id IS NULL").
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ScheduleRepo) CommitReschedule(ctx context.Context, original *domain.Appointment, next *domain.Appointment) error {
	return r.InPhysicianTransaction(ctx, original.PhysicianID, func(ctx context.Context, tx store.ScheduleTx) error {
		if err := tx.UpdateAppointment(ctx, original); err != nil {
			return err
		}
		return tx.CreateAppointment(ctx, next)
	})
}

// InPhysicianTransaction serializes writers of one physician's schedule with
// a transaction-scoped advisory lock, mirroring the in-memory one-schedule
// one-lock-domain rule at the storage layer.
func (r *ScheduleRepo) InPhysicianTransaction(ctx context.Context, physicianID uuid.UUID, fn func(ctx context.Context, tx store.ScheduleTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockPhysicianSchedule(ctx, tx, physicianID); err != nil {
			return err
		}
		return fn(ctx, scheduleTx{tx: tx})
	})
}

func lockPhysicianSchedule(ctx context.Context, tx bun.Tx, physicianID uuid.UUID) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", physicianID.String()).Exec(ctx)
	return err
}

// blockLockID picks the advisory-lock domain for a block insert. Facility
// blocks share one domain keyed by the nil uuid.
func blockLockID(block *domain.UnavailabilityBlock) uuid.UUID {
	if block.PhysicianID != nil {
		return *block.PhysicianID
	}
	return uuid.Nil
}

func (t scheduleTx) CreateAppointment(ctx context.Context, appt *domain.Appointment) error {
	_, err := t.tx.NewInsert().Model(appt).Exec(ctx)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23P01" && pgErr.ConstraintName == "appointments_no_overlap" {
			return store.ErrConflict
		}
		if pgErr.Code == "23505" {
			var existing domain.Appointment
			selectErr := t.tx.NewSelect().
				Model(&existing).
				Where("id = ?", appt.ID).
				Limit(1).
				Scan(ctx)
			if selectErr != nil {
				return err
			}
			if !appointmentMatches(&existing, appt) {
				return store.ErrIdempotencyConflict
			}
			*appt = existing
			return nil
		}
	}
	return err
}

func (t scheduleTx) UpdateAppointment(ctx context.Context, appt *domain.Appointment) error {
	res, err := t.tx.NewUpdate().
		Model(appt).
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t scheduleTx) DeleteAppointmentsEndingBefore(ctx context.Context, physicianID uuid.UUID, before time.Time) (int, error) {
	res, err := t.tx.NewDelete().
		Model((*domain.Appointment)(nil)).
		Where("physician_id = ?", physicianID).
		Where("end_time < ?", before.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (t scheduleTx) CreateBlock(ctx context.Context, block *domain.UnavailabilityBlock) error {
	_, err := t.tx.NewInsert().Model(block).Exec(ctx)
	return err
}

// appointmentMatches decides whether a duplicate-key insert is an idempotent
// replay of the same booking.
func appointmentMatches(existing, incoming *domain.Appointment) bool {
	return existing.PatientID == incoming.PatientID &&
		existing.PhysicianID == incoming.PhysicianID &&
		existing.StartTime.Equal(incoming.StartTime) &&
		existing.EndTime.Equal(incoming.EndTime) &&
		existing.ReasonForVisit == incoming.ReasonForVisit
}
