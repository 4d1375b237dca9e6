package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/roadsafety-api/internal/models"
)

// UpdateRepository reads the append-only progress note ledger.
type UpdateRepository struct {
	db *sqlx.DB
}

// NewUpdateRepository constructs the repository.
func NewUpdateRepository(db *sqlx.DB) *UpdateRepository {
	return &UpdateRepository{db: db}
}

// ListByComplaint returns notes for a complaint, newest first.
func (r *UpdateRepository) ListByComplaint(ctx context.Context, complaintID string) ([]models.ComplaintUpdate, error) {
	const query = `SELECT cu.id, cu.complaint_id, cu.contractor_id, cu.update_text, cu.update_image, cu.created_at, c.company_name
	FROM complaint_updates cu JOIN contractors c ON c.id = cu.contractor_id
	WHERE cu.complaint_id = $1 ORDER BY cu.created_at DESC`
	updates := make([]models.ComplaintUpdate, 0)
	if err := r.db.SelectContext(ctx, &updates, query, complaintID); err != nil {
		return nil, fmt.Errorf("list complaint updates: %w", err)
	}
	return updates, nil
}

func insertUpdate(ctx context.Context, exec sqlx.ExtContext, update *models.ComplaintUpdate) error {
	if update.ID == "" {
		update.ID = uuid.NewString()
	}
	if update.CreatedAt.IsZero() {
		update.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO complaint_updates (id, complaint_id, contractor_id, update_text, update_image, created_at) VALUES (:id, :complaint_id, :contractor_id, :update_text, :update_image, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, update); err != nil {
		return fmt.Errorf("create complaint update: %w", err)
	}
	return nil
}
