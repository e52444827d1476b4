package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

type RouterConfig struct {
	Service SchedulingService
	DB      *bun.DB
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.DB, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/physicians/{physicianID}", func(r chi.Router) {
		r.Post("/appointments", bookAppointmentHandler(cfg.Service))
		r.Get("/appointments", listAppointmentsHandler(cfg.Service))
		r.Post("/appointments/{appointmentID}/cancel", cancelAppointmentHandler(cfg.Service))
		r.Post("/appointments/{appointmentID}/complete", completeAppointmentHandler(cfg.Service))
		r.Post("/appointments/{appointmentID}/no-show", noShowAppointmentHandler(cfg.Service))
		r.Post("/appointments/{appointmentID}/reschedule", rescheduleAppointmentHandler(cfg.Service))

		r.Get("/slots/next", nextSlotHandler(cfg.Service))
		r.Get("/slots", listSlotsHandler(cfg.Service))
		r.Get("/summary", summaryHandler(cfg.Service))

		r.Post("/blocks", createBlockHandler(cfg.Service))
	})

	r.Post("/blocks", createFacilityBlockHandler(cfg.Service))

	return r
}
