package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medsched/backend/internal/domain"
	"medsched/backend/internal/service/scheduling"
	"medsched/backend/internal/store"
)

// SchedulingService is the surface of the scheduling service the API uses.
type SchedulingService interface {
	Book(ctx context.Context, in scheduling.BookInput) (*domain.Appointment, error)
	Cancel(ctx context.Context, physicianID, appointmentID uuid.UUID, reason string) (*domain.Appointment, error)
	Complete(ctx context.Context, physicianID, appointmentID uuid.UUID) (*domain.Appointment, error)
	MarkNoShow(ctx context.Context, physicianID, appointmentID uuid.UUID) (*domain.Appointment, error)
	Reschedule(ctx context.Context, physicianID, appointmentID uuid.UUID, newStart, newEnd time.Time) (*domain.Appointment, error)
	AddBlock(ctx context.Context, in scheduling.BlockInput) (*domain.UnavailabilityBlock, error)
	NextSlot(ctx context.Context, physicianID uuid.UUID, duration time.Duration, after time.Time) (domain.AppointmentSlot, error)
	Slots(ctx context.Context, physicianID uuid.UUID, duration time.Duration, after time.Time, maxResults int) ([]domain.AppointmentSlot, error)
	AppointmentsForDate(ctx context.Context, physicianID uuid.UUID, date time.Time) ([]domain.Appointment, error)
	AppointmentsInRange(ctx context.Context, physicianID uuid.UUID, start, end time.Time) ([]domain.Appointment, error)
	Summary(ctx context.Context, physicianID uuid.UUID, date time.Time) (domain.AvailabilitySummary, error)
}

func bookAppointmentHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		physicianID, ok := physicianParam(w, r)
		if !ok {
			return
		}

		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		appt, err := svc.Book(r.Context(), scheduling.BookInput{
			PatientID:      patientID,
			PhysicianID:    physicianID,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
			Description:    req.Description,
			ReasonForVisit: req.ReasonForVisit,
			IdempotencyKey: req.IdempotencyKey,
		})
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, appointmentResponse(appt))
	}
}

func listAppointmentsHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		physicianID, ok := physicianParam(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()
		var (
			appts []domain.Appointment
			err   error
		)
		switch {
		case q.Get("date") != "":
			date, parseErr := time.Parse("2006-01-02", q.Get("date"))
			if parseErr != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", "date must be formatted YYYY-MM-DD")
				return
			}
			appts, err = svc.AppointmentsForDate(r.Context(), physicianID, date)
		case q.Get("start") != "" || q.Get("end") != "":
			start, parseErr := time.Parse(time.RFC3339, q.Get("start"))
			if parseErr != nil {
				writeError(w, http.StatusBadRequest, "invalid_start", "start must be RFC 3339")
				return
			}
			end, parseErr := time.Parse(time.RFC3339, q.Get("end"))
			if parseErr != nil {
				writeError(w, http.StatusBadRequest, "invalid_end", "end must be RFC 3339")
				return
			}
			appts, err = svc.AppointmentsInRange(r.Context(), physicianID, start, end)
		default:
			writeError(w, http.StatusBadRequest, "missing_window", "provide date or start and end")
			return
		}
		if err != nil {
			handleServiceError(w, err)
			return
		}

		out := make([]AppointmentResponse, 0, len(appts))
		for i := range appts {
			out = append(out, appointmentResponse(&appts[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func cancelAppointmentHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		physicianID, appointmentID, ok := appointmentParams(w, r)
		if !ok {
			return
		}

		var req CancelAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.Cancel(r.Context(), physicianID, appointmentID, req.Reason)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appointmentResponse(appt))
	}
}

func completeAppointmentHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		physicianID, appointmentID, ok := appointmentParams(w, r)
		if !ok {
			return
		}

		appt, err := svc.Complete(r.Context(), physicianID, appointmentID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appointmentResponse(appt))
	}
}

func noShowAppointmentHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		physicianID, appointmentID, ok := appointmentParams(w, r)
		if !ok {
			return
		}

		appt, err := svc.MarkNoShow(r.Context(), physicianID, appointmentID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appointmentResponse(appt))
	}
}

func rescheduleAppointmentHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		physicianID, appointmentID, ok := appointmentParams(w, r)
		if !ok {
			return
		}

		var req RescheduleAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.Reschedule(r.Context(), physicianID, appointmentID, req.StartTime, req.EndTime)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appointmentResponse(appt))
	}
}

func createBlockHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		physicianID, ok := physicianParam(w, r)
		if !ok {
			return
		}

		var req CreateBlockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		block, err := svc.AddBlock(r.Context(), scheduling.BlockInput{
			PhysicianID: &physicianID,
			Reason:      domain.BlockReason(req.Reason),
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			Description: req.Description,
		})
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, blockResponse(block))
	}
}

func createFacilityBlockHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBlockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		block, err := svc.AddBlock(r.Context(), scheduling.BlockInput{
			Reason:      domain.BlockReason(req.Reason),
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			Description: req.Description,
		})
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, blockResponse(block))
	}
}

func nextSlotHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		physicianID, ok := physicianParam(w, r)
		if !ok {
			return
		}
		duration, after, ok := slotParams(w, r)
		if !ok {
			return
		}

		slot, err := svc.NextSlot(r.Context(), physicianID, duration, after)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no_slot_available", "no slot found within the search horizon")
				return
			}
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, slotResponse(slot))
	}
}

func listSlotsHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		physicianID, ok := physicianParam(w, r)
		if !ok {
			return
		}
		duration, after, ok := slotParams(w, r)
		if !ok {
			return
		}

		maxResults := 5
		if raw := r.URL.Query().Get("max"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_max", "max must be an integer")
				return
			}
			maxResults = n
		}

		slots, err := svc.Slots(r.Context(), physicianID, duration, after, maxResults)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		out := make([]SlotResponse, 0, len(slots))
		for _, s := range slots {
			out = append(out, slotResponse(s))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func summaryHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		physicianID, ok := physicianParam(w, r)
		if !ok {
			return
		}

		date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be formatted YYYY-MM-DD")
			return
		}

		summary, err := svc.Summary(r.Context(), physicianID, date)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SummaryResponse{
			Date:               summary.Date,
			BookedHours:        summary.BookedHours,
			AvailableHours:     summary.AvailableHours,
			UtilizationPercent: summary.UtilizationPercent,
		})
	}
}

func physicianParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "physicianID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_physician_id", "physicianID must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func appointmentParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	physicianID, ok := physicianParam(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	appointmentID, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "appointmentID must be a valid UUID")
		return uuid.Nil, uuid.Nil, false
	}
	return physicianID, appointmentID, true
}

func slotParams(w http.ResponseWriter, r *http.Request) (time.Duration, time.Time, bool) {
	q := r.URL.Query()

	duration, err := time.ParseDuration(q.Get("duration"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_duration", "duration must be a Go duration, e.g. 30m")
		return 0, time.Time{}, false
	}

	after := time.Now().UTC()
	if raw := q.Get("after"); raw != "" {
		after, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_after", "after must be RFC 3339")
			return 0, time.Time{}, false
		}
	}
	return duration, after, true
}

func handleServiceError(w http.ResponseWriter, err error) {
	var vErr *scheduling.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, "validation_failed", vErr.Error())
	case errors.Is(err, store.ErrConflict),
		errors.Is(err, domain.ErrScheduleConflict):
		writeError(w, http.StatusConflict, "schedule_conflict", "the requested window is not available")
	case errors.Is(err, store.ErrIdempotencyConflict):
		writeError(w, http.StatusConflict, "idempotency_conflict", "idempotency key was already used with a different request")
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, domain.ErrCancelNotAllowed):
		writeError(w, http.StatusConflict, "cancel_not_allowed", err.Error())
	case errors.Is(err, domain.ErrAppointmentNotFound),
		errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
