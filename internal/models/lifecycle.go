package models

import "errors"

// ComplaintStatus is the lifecycle position of a complaint.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "pending"
	StatusVerified   ComplaintStatus = "verified"
	StatusRejected   ComplaintStatus = "rejected"
	StatusAssigned   ComplaintStatus = "assigned"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusCompleted  ComplaintStatus = "completed"
)

// Statuses lists every status in lifecycle order.
func Statuses() []ComplaintStatus {
	return []ComplaintStatus{StatusPending, StatusVerified, StatusRejected, StatusAssigned, StatusInProgress, StatusCompleted}
}

// Valid reports whether s is one of the six statuses.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusRejected, StatusAssigned, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

var (
	// ErrTransitionNotAllowed is returned for a pair outside the transition table.
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	// ErrActorNotAllowed is returned when the pair exists but belongs to another role.
	ErrActorNotAllowed = errors.New("role may not perform this transition")
)

// transitions maps from -> to -> the only role allowed to perform it.
var transitions = map[ComplaintStatus]map[ComplaintStatus]Role{
	StatusPending: {
		StatusVerified: RoleAdmin,
		StatusRejected: RoleAdmin,
	},
	StatusVerified: {
		StatusAssigned: RoleAdmin,
	},
	StatusAssigned: {
		StatusInProgress: RoleContractor,
		StatusCompleted:  RoleContractor,
	},
	StatusInProgress: {
		StatusCompleted: RoleContractor,
	},
}

// contractorTargets are the statuses a contractor may report, including re-reporting the current one.
var contractorTargets = map[ComplaintStatus]struct{}{
	StatusInProgress: {},
	StatusCompleted:  {},
}

// CanTransition reports whether from -> to appears in the table.
func CanTransition(from, to ComplaintStatus) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// ValidateTransition checks that actor may move a complaint from -> to.
// A contractor re-reporting the current in_progress or completed status is
// accepted as a no-op.
func ValidateTransition(actor Role, from, to ComplaintStatus) error {
	if !from.Valid() || !to.Valid() {
		return ErrTransitionNotAllowed
	}
	if from == to {
		if _, ok := contractorTargets[to]; ok {
			if actor != RoleContractor {
				return ErrActorNotAllowed
			}
			return nil
		}
		return ErrTransitionNotAllowed
	}
	owner, ok := transitions[from][to]
	if !ok {
		return ErrTransitionNotAllowed
	}
	if owner != actor {
		return ErrActorNotAllowed
	}
	return nil
}

// IsContractorTarget reports whether s may be requested by a contractor.
func IsContractorTarget(s ComplaintStatus) bool {
	_, ok := contractorTargets[s]
	return ok
}

// IsTerminal reports whether no further transitions leave s.
func (s ComplaintStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted
}
