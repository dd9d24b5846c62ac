package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"campus-backend/internal/models"
	"campus-backend/internal/repository"
	"campus-backend/internal/services"
)

// Pool drains the redis-backed side-effect queues: audit events flow into
// the audit_events table, reconcile tasks re-run the unlocker for attempts
// whose unlock failed on the submit path.
type Pool struct {
	redis       *redis.Client
	auditRepo   *repository.AuditRepo
	unlocks     *services.UnlockService
	workerCount int
	stopChan    chan struct{}
}

func NewPool(redisClient *redis.Client, auditRepo *repository.AuditRepo, unlocks *services.UnlockService, workerCount int) *Pool {
	return &Pool{
		redis:       redisClient,
		auditRepo:   auditRepo,
		unlocks:     unlocks,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	queues := []string{
		services.AuditQueue,
		services.ReconcileQueue,
	}

	for i := 0; i < p.workerCount; i++ {
		go p.worker(i, queues)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int, queues []string) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, queues...).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}
		queue, payload := result[0], result[1]

		var processErr error
		switch queue {
		case services.AuditQueue:
			processErr = p.processAuditEvent(ctx, payload)
		case services.ReconcileQueue:
			processErr = p.processReconcile(ctx, payload)
		}

		if processErr != nil {
			log.Printf("Worker %d: %s task failed: %v", id, queue, processErr)
		}
	}
}

func (p *Pool) processAuditEvent(ctx context.Context, payload string) error {
	var event models.AuditEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return err
	}
	return p.auditRepo.Insert(ctx, &event)
}

// processReconcile retries the unlock for a graded attempt. The unlocker
// is idempotent, so requeueing on failure cannot over-unlock.
func (p *Pool) processReconcile(ctx context.Context, payload string) error {
	var task models.ReconcileTask
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return err
	}

	if err := p.unlocks.Reconcile(ctx, task.AttemptID); err != nil {
		p.requeueReconcile(ctx, task)
		return err
	}
	return nil
}

const maxReconcileBackoff = 30 * time.Second

// reconcileBackoff grows linearly with the delivery count, capped so a
// task is never parked for long.
func reconcileBackoff(attempts int) time.Duration {
	backoff := time.Duration(attempts) * time.Second
	if backoff > maxReconcileBackoff {
		backoff = maxReconcileBackoff
	}
	return backoff
}

// requeueReconcile puts a failed task back with a growing delay so a store
// outage does not spin the worker on the same task. Shutdown cuts the
// delay short; the task is requeued either way.
func (p *Pool) requeueReconcile(ctx context.Context, task models.ReconcileTask) {
	task.Attempts++
	payload, err := json.Marshal(task)
	if err != nil {
		log.Printf("failed to encode reconcile task for attempt %s: %v", task.AttemptID, err)
		return
	}

	select {
	case <-p.stopChan:
	case <-time.After(reconcileBackoff(task.Attempts)):
	}

	if err := p.redis.RPush(ctx, services.ReconcileQueue, payload).Err(); err != nil {
		log.Printf("failed to requeue reconcile task for attempt %s: %v", task.AttemptID, err)
	}
}
