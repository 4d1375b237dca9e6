package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roadsafety-api/internal/models"
)

func TestCreateContractorWithUserCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContractorRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO contractors").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	user := &models.User{Username: "roadworks", Email: "ops@roadworks.test", IsActive: true}
	contractor := &models.Contractor{CompanyName: "Roadworks Ltd"}
	require.NoError(t, repo.CreateWithUser(context.Background(), user, contractor))
	assert.Equal(t, user.ID, contractor.UserID)
	assert.False(t, contractor.IsVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateContractorWithUserRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContractorRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO contractors").WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := repo.CreateWithUser(context.Background(), &models.User{Username: "x"}, &models.Contractor{})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetContractorVerifiedUnknown(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContractorRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE contractors SET is_verified = $2 WHERE id = $1")).
		WithArgs("c-404", true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetVerified(context.Background(), "c-404", true)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListContractorsByVerifiedFlag(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContractorRepository(db)

	verified := true
	mock.ExpectQuery(`FROM contractors c JOIN users u ON u.id = c.user_id WHERE c.is_verified = \$1 ORDER BY c.created_at DESC`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "company_name", "phone", "address", "specialization", "is_verified", "username", "email", "first_name", "last_name"}).
			AddRow("c-1", "u-2", "Roadworks Ltd", "555", "1 Main", "asphalt", true, "roadworks", "ops@roadworks.test", "", ""))

	contractors, err := repo.List(context.Background(), models.ContractorFilter{Verified: &verified})
	require.NoError(t, err)
	require.Len(t, contractors, 1)
	assert.Equal(t, "ops@roadworks.test", contractors[0].Email)
	assert.True(t, contractors[0].IsVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}
