package domain

import "errors"

var (
	ErrInvalidSpan       = errors.New("end time must be after start time")
	ErrPatientRequired   = errors.New("patient id is required")
	ErrPhysicianRequired = errors.New("physician id is required")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrCancelNotAllowed  = errors.New("appointment can no longer be cancelled")

	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrScheduleConflict    = errors.New("requested window conflicts with the schedule")
)
