package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/roadsafety-api/internal/models"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
)

type memMaintenance struct {
	counts   models.UserCounts
	users    []models.User
	purged   bool
	purgeErr error
}

func (m *memMaintenance) Counts(context.Context) (*models.UserCounts, error) {
	c := m.counts
	return &c, nil
}

func (m *memMaintenance) ListUsers(context.Context) ([]models.User, error) { return m.users, nil }

func (m *memMaintenance) Purge(context.Context) error {
	if m.purgeErr != nil {
		return m.purgeErr
	}
	m.purged = true
	return nil
}

type memMediaPurger struct {
	called bool
	err    error
}

func (m *memMediaPurger) Purge() error {
	m.called = true
	return m.err
}

func TestMaintenanceCreateAdmin(t *testing.T) {
	users := newMockAuthRepo()
	svc := NewMaintenanceService(&memMaintenance{}, users, nil, nil)

	user, err := svc.CreateAdmin(context.Background(), CreateAdminInput{Username: " root ", Email: "root@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	assert.Equal(t, "root", user.Username)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsActive)
	require.Len(t, users.created, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))
	assert.Equal(t, models.RoleAdmin, models.ResolveRole(*user, nil))
}

func TestMaintenanceCreateAdminRejectsDuplicateAndWeakInput(t *testing.T) {
	users := newMockAuthRepo(&models.User{ID: "u-1", Username: "root", IsActive: true})
	svc := NewMaintenanceService(&memMaintenance{}, users, nil, nil)

	_, err := svc.CreateAdmin(context.Background(), CreateAdminInput{Username: "root", Email: "root@example.com", Password: "correct-horse"})
	assert.Equal(t, appErrors.ErrConflict.Code, appCode(t, err))

	_, err = svc.CreateAdmin(context.Background(), CreateAdminInput{Username: "ops", Email: "not-an-email", Password: "short"})
	assert.Equal(t, appErrors.ErrValidation.Code, appCode(t, err))
	assert.Empty(t, users.created)
}

func TestMaintenanceCheckUsers(t *testing.T) {
	store := &memMaintenance{
		counts: models.UserCounts{Users: 2, Admins: 1},
		users:  []models.User{{ID: "u-1", Username: "root"}, {ID: "u-2", Username: "rina"}},
	}
	report, err := NewMaintenanceService(store, newMockAuthRepo(), nil, nil).CheckUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Counts.Users)
	assert.Len(t, report.Users, 2)
}

func TestMaintenancePurge(t *testing.T) {
	store := &memMaintenance{}
	media := &memMediaPurger{err: errors.New("permission denied")}
	svc := NewMaintenanceService(store, newMockAuthRepo(), media, nil)

	require.NoError(t, svc.Purge(context.Background()))
	assert.True(t, store.purged)
	assert.True(t, media.called)

	store.purgeErr = errors.New("deadlock")
	media.called = false
	err := svc.Purge(context.Background())
	assert.Equal(t, appErrors.ErrInternal.Code, appCode(t, err))
	assert.False(t, media.called)
}
