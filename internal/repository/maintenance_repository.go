package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/roadsafety-api/internal/models"
	"github.com/noah-isme/roadsafety-api/pkg/database"
)

// MaintenanceRepository backs the operator CLI.
type MaintenanceRepository struct {
	db *sqlx.DB
}

// NewMaintenanceRepository constructs the repository.
func NewMaintenanceRepository(db *sqlx.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

// Counts returns headline row counts.
func (r *MaintenanceRepository) Counts(ctx context.Context) (*models.UserCounts, error) {
	const query = `SELECT
	(SELECT COUNT(*) FROM users) AS users,
	(SELECT COUNT(*) FROM users WHERE is_staff = TRUE) AS admins,
	(SELECT COUNT(*) FROM contractors) AS contractors,
	(SELECT COUNT(*) FROM complaints) AS complaints`
	var counts models.UserCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}
	return &counts, nil
}

// ListUsers returns every user ordered by join date.
func (r *MaintenanceRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY date_joined`
	users := make([]models.User, 0)
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// purgeOrder lists tables children first so foreign keys never block a delete.
var purgeOrder = []string{"notifications", "complaint_updates", "complaint_assignments", "complaints", "contractors", "users"}

// Purge deletes every row of every application table in one transaction.
func (r *MaintenanceRepository) Purge(ctx context.Context) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, table := range purgeOrder {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("purge %s: %w", table, err)
			}
		}
		return nil
	})
}
