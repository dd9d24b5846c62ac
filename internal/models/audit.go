package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	AuditPoolCreated     = "pool.created"
	AuditPoolDeactivated = "pool.deactivated"
	AuditQuizAdded       = "pool.quiz_added"
	AuditQuizRemoved     = "pool.quiz_removed"
	AuditAttemptGraded   = "attempt.graded"
)

// AuditEvent is a fire-and-forget compliance record. Producers push events
// onto a redis list; the worker drains the list into the audit_events table.
type AuditEvent struct {
	ID         uuid.UUID       `json:"id"`
	ActorID    uuid.UUID       `json:"actor_id"`
	Action     string          `json:"action"`
	SubjectID  uuid.UUID       `json:"subject_id"`
	DetailJSON json.RawMessage `json:"detail"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ReconcileTask asks the worker to re-run the unlocker for a graded
// attempt. Attempts counts failed deliveries and drives the requeue
// backoff.
type ReconcileTask struct {
	AttemptID uuid.UUID `json:"attempt_id"`
	Attempts  int       `json:"attempts,omitempty"`
}
