package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/roadsafety-api/internal/models"
)

const complaintColumns = `id, user_id, title, description, location, latitude, longitude, complaint_type, priority, status, image, created_at, updated_at, verified_by, verified_at`

const complaintWithOwnerSelect = `SELECT c.id, c.user_id, c.title, c.description, c.location, c.latitude, c.longitude, c.complaint_type, c.priority, c.status, c.image, c.created_at, c.updated_at, c.verified_by, c.verified_at,
	u.username AS owner_username, u.email AS owner_email
	FROM complaints c JOIN users u ON u.id = c.user_id`

// ComplaintRepository persists complaints and guards their status changes.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository constructs the repository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create inserts a new complaint in the pending status.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now
	complaint.Status = models.StatusPending

	const query = `INSERT INTO complaints (id, user_id, title, description, location, latitude, longitude, complaint_type, priority, status, image, created_at, updated_at) VALUES (:id, :user_id, :title, :description, :location, :latitude, :longitude, :complaint_type, :priority, :status, :image, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, complaint); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// FindByID returns a complaint by identifier.
func (r *ComplaintRepository) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	const query = `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1 LIMIT 1`
	var complaint models.Complaint
	if err := r.db.GetContext(ctx, &complaint, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find complaint: %w", err)
	}
	return &complaint, nil
}

// List returns complaints with owner details matching the filter, newest first.
func (r *ComplaintRepository) List(ctx context.Context, filter models.ComplaintFilter) ([]models.ComplaintWithOwner, int, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("c.user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if filter.OwnerEmail != "" {
		args = append(args, containsPattern(filter.OwnerEmail))
		conditions = append(conditions, fmt.Sprintf(`u.email ILIKE $%d ESCAPE '\'`, len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := complaintWithOwnerSelect + where + " ORDER BY c.created_at DESC"
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.PageSize, (page-1)*filter.PageSize)
	}

	complaints := make([]models.ComplaintWithOwner, 0)
	if err := r.db.SelectContext(ctx, &complaints, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list complaints: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM complaints c JOIN users u ON u.id = c.user_id` + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count complaints: %w", err)
	}
	return complaints, total, nil
}

// CountByStatus returns per-status counts, optionally for one owner.
func (r *ComplaintRepository) CountByStatus(ctx context.Context, userID string) (models.StatusCounts, error) {
	query := `SELECT status, COUNT(*) AS total FROM complaints`
	var args []interface{}
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += ` GROUP BY status`

	var rows []struct {
		Status models.ComplaintStatus `db:"status"`
		Total  int                    `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count complaints by status: %w", err)
	}
	counts := make(models.StatusCounts, len(models.Statuses()))
	for _, s := range models.Statuses() {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// MarkVerified moves a pending complaint to verified and records the verifier.
// sql.ErrNoRows is returned when the complaint is no longer pending.
func (r *ComplaintRepository) MarkVerified(ctx context.Context, id, verifierID string, at time.Time) error {
	const query = `UPDATE complaints SET status = $2, verified_by = $3, verified_at = $4, updated_at = $4 WHERE id = $1 AND status = $5 AND verified_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, models.StatusVerified, verifierID, at, models.StatusPending)
	if err != nil {
		return fmt.Errorf("verify complaint: %w", err)
	}
	return expectOneRow(res, "verify complaint")
}

// UpdateStatus moves a complaint from one status to another.
// sql.ErrNoRows is returned when the stored status no longer equals from.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id string, from, to models.ComplaintStatus, at time.Time) error {
	return updateComplaintStatus(ctx, r.db, id, from, to, at)
}

func updateComplaintStatus(ctx context.Context, exec sqlx.ExecerContext, id string, from, to models.ComplaintStatus, at time.Time) error {
	const query = `UPDATE complaints SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`
	res, err := exec.ExecContext(ctx, query, id, to, at, from)
	if err != nil {
		return fmt.Errorf("update complaint status: %w", err)
	}
	return expectOneRow(res, "update complaint status")
}

func expectOneRow(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s rows: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
