package services

import (
	"fmt"

	"campus-backend/internal/models"
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

// AlreadyPassedError rejects a new attempt once a passing one exists. The
// terminal attempt rides along so callers can show its result.
type AlreadyPassedError struct {
	Attempt *models.Attempt
}

func (e *AlreadyPassedError) Error() string { return "pool already passed" }

// CooldownActiveError rejects a retry before the post-failure wait elapses.
type CooldownActiveError struct {
	RemainingHours int
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("cooldown active: %d hour(s) remaining", e.RemainingHours)
}
