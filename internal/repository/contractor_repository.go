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
	"github.com/noah-isme/roadsafety-api/pkg/database"
)

const contractorDetailSelect = `SELECT c.id, c.user_id, c.company_name, c.phone, c.address, c.specialization, c.is_verified, c.created_at,
	u.username, u.email, u.first_name, u.last_name
	FROM contractors c JOIN users u ON u.id = c.user_id`

// ContractorRepository manages contractor profiles.
type ContractorRepository struct {
	db *sqlx.DB
}

// NewContractorRepository constructs the repository.
func NewContractorRepository(db *sqlx.DB) *ContractorRepository {
	return &ContractorRepository{db: db}
}

// CreateWithUser stores the user account and its contractor profile atomically.
func (r *ContractorRepository) CreateWithUser(ctx context.Context, user *models.User, contractor *models.Contractor) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := createUser(ctx, tx, user); err != nil {
			return err
		}
		if contractor.ID == "" {
			contractor.ID = uuid.NewString()
		}
		if contractor.CreatedAt.IsZero() {
			contractor.CreatedAt = time.Now().UTC()
		}
		contractor.UserID = user.ID
		const query = `INSERT INTO contractors (id, user_id, company_name, phone, address, specialization, is_verified, created_at) VALUES (:id, :user_id, :company_name, :phone, :address, :specialization, :is_verified, :created_at)`
		if _, err := tx.NamedExecContext(ctx, query, contractor); err != nil {
			return fmt.Errorf("create contractor: %w", err)
		}
		return nil
	})
}

// FindByUserID returns the contractor profile linked to userID.
func (r *ContractorRepository) FindByUserID(ctx context.Context, userID string) (*models.Contractor, error) {
	const query = `SELECT id, user_id, company_name, phone, address, specialization, is_verified, created_at FROM contractors WHERE user_id = $1 LIMIT 1`
	var contractor models.Contractor
	if err := r.db.GetContext(ctx, &contractor, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find contractor by user: %w", err)
	}
	return &contractor, nil
}

// FindByID returns a contractor with its account details.
func (r *ContractorRepository) FindByID(ctx context.Context, id string) (*models.ContractorDetail, error) {
	const query = contractorDetailSelect + ` WHERE c.id = $1 LIMIT 1`
	var detail models.ContractorDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find contractor: %w", err)
	}
	return &detail, nil
}

// List returns contractors matching the filter, newest first.
func (r *ContractorRepository) List(ctx context.Context, filter models.ContractorFilter) ([]models.ContractorDetail, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Verified != nil {
		args = append(args, *filter.Verified)
		conditions = append(conditions, fmt.Sprintf("c.is_verified = $%d", len(args)))
	}
	if filter.Email != "" {
		args = append(args, containsPattern(filter.Email))
		conditions = append(conditions, fmt.Sprintf(`u.email ILIKE $%d ESCAPE '\'`, len(args)))
	}

	query := contractorDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY c.created_at DESC"

	contractors := make([]models.ContractorDetail, 0)
	if err := r.db.SelectContext(ctx, &contractors, query, args...); err != nil {
		return nil, fmt.Errorf("list contractors: %w", err)
	}
	return contractors, nil
}

// SetVerified toggles the verification flag.
func (r *ContractorRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	const query = `UPDATE contractors SET is_verified = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, verified)
	if err != nil {
		return fmt.Errorf("set contractor verified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check contractor verify rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountVerified returns the number of verified contractors.
func (r *ContractorRepository) CountVerified(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM contractors WHERE is_verified = TRUE`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count verified contractors: %w", err)
	}
	return total, nil
}
