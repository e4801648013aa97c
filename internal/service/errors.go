// Package service implements the appointment and eligibility manager: the
// reservation validator, per-session slot availability, the donation
// completion transition and the campaign-change cascade. Handlers call
// these operations instead of touching reservation tables directly so the
// one-active-appointment and eligibility-window invariants hold everywhere.
package service

import (
	"errors"
	"fmt"
	"time"
)

// Validation failure kinds. Handlers translate these into structured 4xx
// responses; anything else coming out of the service is a storage failure
// and maps to a 500.
var (
	ErrActiveAppointment = errors.New("an active appointment already exists")
	ErrNoSessionForDate  = errors.New("no session scheduled for that date")
	ErrSlotFull          = errors.New("time slot is at capacity")
	ErrAlreadyCompleted  = errors.New("donation already completed")
	ErrNotFound          = errors.New("not found")
	ErrBadCoordinates    = errors.New("coordinates outside valid range")
	ErrBadTimeSlot       = errors.New("preferred time not a bookable slot")
	ErrBadBloodType      = errors.New("unknown blood type")
)

// EligibilityError reports a booking attempt inside the donor's cooldown
// window and carries the first day the donor may donate again.
type EligibilityError struct {
	NextEligible time.Time
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("not eligible to donate until %s", e.NextEligible.Format("2006-01-02"))
}
