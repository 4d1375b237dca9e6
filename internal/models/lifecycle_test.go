package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTransitionTable(t *testing.T) {
	cases := []struct {
		name  string
		actor Role
		from  ComplaintStatus
		to    ComplaintStatus
		err   error
	}{
		{"admin verifies pending", RoleAdmin, StatusPending, StatusVerified, nil},
		{"admin rejects pending", RoleAdmin, StatusPending, StatusRejected, nil},
		{"admin assigns verified", RoleAdmin, StatusVerified, StatusAssigned, nil},
		{"contractor starts work", RoleContractor, StatusAssigned, StatusInProgress, nil},
		{"contractor completes from assigned", RoleContractor, StatusAssigned, StatusCompleted, nil},
		{"contractor completes from in progress", RoleContractor, StatusInProgress, StatusCompleted, nil},
		{"contractor repeats in progress", RoleContractor, StatusInProgress, StatusInProgress, nil},
		{"contractor repeats completed", RoleContractor, StatusCompleted, StatusCompleted, nil},
		{"admin cannot start work", RoleAdmin, StatusAssigned, StatusInProgress, ErrActorNotAllowed},
		{"contractor cannot verify", RoleContractor, StatusPending, StatusVerified, ErrActorNotAllowed},
		{"citizen cannot verify", RoleCitizen, StatusPending, StatusVerified, ErrActorNotAllowed},
		{"assign pending is rejected", RoleAdmin, StatusPending, StatusAssigned, ErrTransitionNotAllowed},
		{"completed cannot reopen", RoleContractor, StatusCompleted, StatusInProgress, ErrTransitionNotAllowed},
		{"rejected is terminal", RoleAdmin, StatusRejected, StatusVerified, ErrTransitionNotAllowed},
		{"verify twice", RoleAdmin, StatusVerified, StatusVerified, ErrTransitionNotAllowed},
		{"unknown status", RoleAdmin, StatusPending, ComplaintStatus("closed"), ErrTransitionNotAllowed},
		{"pending to in progress", RoleContractor, StatusPending, StatusInProgress, ErrTransitionNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTransition(tc.actor, tc.from, tc.to)
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusVerified))
	assert.False(t, CanTransition(StatusCompleted, StatusPending))
	assert.False(t, CanTransition(StatusInProgress, StatusInProgress))
}

func TestStatusesClosedSet(t *testing.T) {
	assert.Len(t, Statuses(), 6)
	for _, s := range Statuses() {
		assert.True(t, s.Valid())
	}
	assert.False(t, ComplaintStatus("").Valid())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusAssigned.IsTerminal())
}

func TestResolveRole(t *testing.T) {
	contractor := &Contractor{ID: "c-1"}
	assert.Equal(t, RoleAdmin, ResolveRole(User{IsStaff: true}, contractor))
	assert.Equal(t, RoleContractor, ResolveRole(User{}, contractor))
	assert.Equal(t, RoleCitizen, ResolveRole(User{}, nil))
}
