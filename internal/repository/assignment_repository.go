package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/roadsafety-api/internal/models"
	"github.com/noah-isme/roadsafety-api/pkg/database"
)

const assignmentWithComplaintSelect = `SELECT a.id, a.complaint_id, a.contractor_id, a.assigned_by, a.assigned_at, a.estimated_completion_date, a.status_update, a.work_started_at, a.work_completed_at, a.is_active,
	c.title AS complaint_title, c.location AS complaint_location, c.status AS complaint_status, c.priority AS complaint_priority, c.user_id AS complaint_user_id
	FROM complaint_assignments a JOIN complaints c ON c.id = a.complaint_id`

// AssignmentRepository manages complaint assignments and contractor progress.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Assign deactivates any active assignment for the complaint, stores the new
// one and flips the complaint from verified to assigned in one transaction.
// sql.ErrNoRows is returned when the complaint is no longer verified.
func (r *AssignmentRepository) Assign(ctx context.Context, assignment *models.ComplaintAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now().UTC()
	}
	assignment.IsActive = true

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const deactivate = `UPDATE complaint_assignments SET is_active = FALSE WHERE complaint_id = $1 AND is_active = TRUE`
		if _, err := tx.ExecContext(ctx, deactivate, assignment.ComplaintID); err != nil {
			return fmt.Errorf("deactivate assignments: %w", err)
		}

		const insert = `INSERT INTO complaint_assignments (id, complaint_id, contractor_id, assigned_by, assigned_at, estimated_completion_date, status_update, is_active) VALUES (:id, :complaint_id, :contractor_id, :assigned_by, :assigned_at, :estimated_completion_date, :status_update, :is_active)`
		if _, err := tx.NamedExecContext(ctx, insert, assignment); err != nil {
			return fmt.Errorf("create assignment: %w", err)
		}

		return updateComplaintStatus(ctx, tx, assignment.ComplaintID, models.StatusVerified, models.StatusAssigned, assignment.AssignedAt)
	})
}

// FindForContractor returns the assignment only when it belongs to contractorID.
func (r *AssignmentRepository) FindForContractor(ctx context.Context, id, contractorID string) (*models.AssignmentWithComplaint, error) {
	const query = assignmentWithComplaintSelect + ` WHERE a.id = $1 AND a.contractor_id = $2 LIMIT 1`
	var assignment models.AssignmentWithComplaint
	if err := r.db.GetContext(ctx, &assignment, query, id, contractorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &assignment, nil
}

// ListActiveByContractor returns the contractor's active assignments, newest first.
func (r *AssignmentRepository) ListActiveByContractor(ctx context.Context, contractorID string) ([]models.AssignmentWithComplaint, error) {
	const query = assignmentWithComplaintSelect + ` WHERE a.contractor_id = $1 AND a.is_active = TRUE ORDER BY a.assigned_at DESC`
	assignments := make([]models.AssignmentWithComplaint, 0)
	if err := r.db.SelectContext(ctx, &assignments, query, contractorID); err != nil {
		return nil, fmt.Errorf("list contractor assignments: %w", err)
	}
	return assignments, nil
}

// FindActiveByComplaint returns the current assignment of a complaint.
func (r *AssignmentRepository) FindActiveByComplaint(ctx context.Context, complaintID string) (*models.ComplaintAssignment, error) {
	const query = `SELECT id, complaint_id, contractor_id, assigned_by, assigned_at, estimated_completion_date, status_update, work_started_at, work_completed_at, is_active FROM complaint_assignments WHERE complaint_id = $1 AND is_active = TRUE LIMIT 1`
	var assignment models.ComplaintAssignment
	if err := r.db.GetContext(ctx, &assignment, query, complaintID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find active assignment: %w", err)
	}
	return &assignment, nil
}

// ApplyProgress applies a contractor update in one transaction: the guarded
// status change, the work timestamps (only when unset) and the optional note.
// sql.ErrNoRows is returned when the complaint status moved concurrently.
func (r *AssignmentRepository) ApplyProgress(ctx context.Context, change models.ProgressChange) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if change.StatusSet {
			if change.From != change.To {
				if err := updateComplaintStatus(ctx, tx, change.ComplaintID, change.From, change.To, change.At); err != nil {
					return err
				}
			} else if err := lockComplaintStatus(ctx, tx, change.ComplaintID, change.From); err != nil {
				// A repeated status writes nothing to complaints, so hold the row
				// and confirm it has not moved before stamping.
				return err
			}
			if err := stampWork(ctx, tx, change.AssignmentID, change.To, change.At); err != nil {
				return err
			}
		}
		if change.Note != nil {
			change.Note.ComplaintID = change.ComplaintID
			change.Note.ContractorID = change.ContractorID
			if err := insertUpdate(ctx, tx, change.Note); err != nil {
				return err
			}
		}
		return nil
	})
}

func lockComplaintStatus(ctx context.Context, tx *sqlx.Tx, complaintID string, expected models.ComplaintStatus) error {
	const query = `SELECT status FROM complaints WHERE id = $1 FOR UPDATE`
	var current string
	if err := tx.GetContext(ctx, &current, query, complaintID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("lock complaint: %w", err)
	}
	if models.ComplaintStatus(current) != expected {
		return sql.ErrNoRows
	}
	return nil
}

func stampWork(ctx context.Context, tx *sqlx.Tx, assignmentID string, status models.ComplaintStatus, at time.Time) error {
	var query string
	switch status {
	case models.StatusInProgress:
		query = `UPDATE complaint_assignments SET work_started_at = COALESCE(work_started_at, $2) WHERE id = $1`
	case models.StatusCompleted:
		query = `UPDATE complaint_assignments SET work_completed_at = COALESCE(work_completed_at, $2) WHERE id = $1`
	default:
		return nil
	}
	if _, err := tx.ExecContext(ctx, query, assignmentID, at); err != nil {
		return fmt.Errorf("stamp assignment work: %w", err)
	}
	return nil
}
