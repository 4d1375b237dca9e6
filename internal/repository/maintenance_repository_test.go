package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("(SELECT COUNT(*) FROM users) AS users")).
		WillReturnRows(sqlmock.NewRows([]string{"users", "admins", "contractors", "complaints"}).AddRow(5, 1, 2, 9))

	counts, err := NewMaintenanceRepository(db).Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, counts.Users)
	assert.Equal(t, 1, counts.Admins)
	assert.Equal(t, 2, counts.Contractors)
	assert.Equal(t, 9, counts.Complaints)
}

func TestMaintenanceListUsers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY date_joined")).
		WillReturnRows(sqlmock.NewRows(userColumnNames).
			AddRow("u-1", "root", "root@example.com", "", "", "hash", true, true, nil, time.Now()))

	users, err := NewMaintenanceRepository(db).ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsStaff)
}

func TestMaintenancePurgeDeletesChildrenFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectBegin()
	for _, table := range purgeOrder {
		mock.ExpectExec("DELETE FROM " + table).WillReturnResult(sqlmock.NewResult(0, 3))
	}
	mock.ExpectCommit()

	require.NoError(t, NewMaintenanceRepository(db).Purge(context.Background()))
	assert.Equal(t, "notifications", purgeOrder[0])
	assert.Equal(t, "users", purgeOrder[len(purgeOrder)-1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaintenancePurgeRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM notifications").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM complaint_updates").WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	err := NewMaintenanceRepository(db).Purge(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purge complaint_updates")
	assert.NoError(t, mock.ExpectationsWereMet())
}
