package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"campus-backend/internal/models"
)

const (
	AuditQueue     = "queue:audit-events"
	ReconcileQueue = "queue:unlock-reconcile"
)

// EventQueue pushes fire-and-forget work onto redis lists drained by the
// worker pool. A push failure is logged and dropped; it never fails the
// request that produced it.
type EventQueue struct {
	redis *redis.Client
}

func NewEventQueue(redisClient *redis.Client) *EventQueue {
	return &EventQueue{redis: redisClient}
}

func (q *EventQueue) RecordAudit(ctx context.Context, event models.AuditEvent) {
	event.ID = uuid.New()
	event.CreatedAt = time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("audit: failed to encode event %s: %v", event.Action, err)
		return
	}
	if err := q.redis.LPush(ctx, AuditQueue, payload).Err(); err != nil {
		log.Printf("audit: failed to enqueue event %s: %v", event.Action, err)
	}
}

func (q *EventQueue) EnqueueReconcile(ctx context.Context, attemptID uuid.UUID) {
	payload, err := json.Marshal(models.ReconcileTask{AttemptID: attemptID})
	if err != nil {
		log.Printf("reconcile: failed to encode task for attempt %s: %v", attemptID, err)
		return
	}
	if err := q.redis.LPush(ctx, ReconcileQueue, payload).Err(); err != nil {
		log.Printf("reconcile: failed to enqueue attempt %s: %v", attemptID, err)
	}
}
