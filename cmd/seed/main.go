package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"medsched/backend/internal/config"
	"medsched/backend/internal/domain"
	"medsched/backend/internal/service/scheduling"
	"medsched/backend/internal/store/postgres"
)

const (
	physicianCount       = 10
	appointmentsPerDoc   = 25
	appointmentDurations = 4
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "medsched-seed"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{MaxOpenConns: 4})
	if err != nil {
		log.Error("database connection failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		_ = postgres.Close(db)
	}()

	repo := postgres.NewScheduleRepo(db)
	svc := scheduling.NewService(repo, domain.NewFirstAvailable())

	gofakeit.Seed(time.Now().UnixNano())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := seed(ctx, svc, log); err != nil {
		log.Error("seed failed", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("seed complete")
}

func seed(ctx context.Context, svc *scheduling.Service, log *slog.Logger) error {
	durations := [appointmentDurations]time.Duration{
		15 * time.Minute,
		30 * time.Minute,
		45 * time.Minute,
		time.Hour,
	}

	reasons := []string{
		"Annual physical",
		"Follow-up visit",
		"New patient consultation",
		"Medication review",
		"Lab results discussion",
		"Vaccination",
	}

	// Start on the next Monday so everything lands inside business hours.
	searchFrom := nextMonday(time.Now().UTC())

	for i := 0; i < physicianCount; i++ {
		physicianID := uuid.New()
		log.Info("seeding physician", slog.String("physician_id", physicianID.String()), slog.Int("n", i+1))

		lunch := domain.NewLunchBreak(searchFrom, &physicianID)
		if _, err := svc.AddBlock(ctx, scheduling.BlockInput{
			PhysicianID: lunch.PhysicianID,
			Reason:      lunch.Reason,
			StartTime:   lunch.StartTime,
			EndTime:     lunch.EndTime,
			Description: lunch.Description,
		}); err != nil {
			return fmt.Errorf("add lunch block: %w", err)
		}

		booked := 0
		for booked < appointmentsPerDoc {
			duration := durations[gofakeit.Number(0, appointmentDurations-1)]
			slot, err := svc.NextSlot(ctx, physicianID, duration, searchFrom)
			if err != nil {
				return fmt.Errorf("find slot: %w", err)
			}

			_, err = svc.Book(ctx, scheduling.BookInput{
				PatientID:      uuid.New(),
				PhysicianID:    physicianID,
				StartTime:      slot.StartTime,
				EndTime:        slot.EndTime,
				ReasonForVisit: reasons[gofakeit.Number(0, len(reasons)-1)],
				Description:    gofakeit.Sentence(8),
			})
			if err != nil {
				return fmt.Errorf("book appointment: %w", err)
			}
			booked++
		}
		log.Info("physician seeded", slog.String("physician_id", physicianID.String()), slog.Int("appointments", booked))
	}

	return nil
}

func nextMonday(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 8, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
