package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus-backend/internal/models"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Insert(ctx context.Context, e *models.AuditEvent) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.DetailJSON == nil {
		e.DetailJSON = json.RawMessage("{}")
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_events (id, actor_id, action, subject_id, detail_json, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.ActorID, e.Action, e.SubjectID, e.DetailJSON, e.CreatedAt,
	)
	return err
}
