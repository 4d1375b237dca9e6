package models

import "time"

// ComplaintAssignment links a verified complaint to a verified contractor.
// Historical rows are kept with IsActive false.
type ComplaintAssignment struct {
	ID                      string     `db:"id" json:"id"`
	ComplaintID             string     `db:"complaint_id" json:"complaint_id"`
	ContractorID            string     `db:"contractor_id" json:"contractor_id"`
	AssignedBy              string     `db:"assigned_by" json:"assigned_by"`
	AssignedAt              time.Time  `db:"assigned_at" json:"assigned_at"`
	EstimatedCompletionDate *time.Time `db:"estimated_completion_date" json:"estimated_completion_date,omitempty"`
	StatusUpdate            string     `db:"status_update" json:"status_update"`
	WorkStartedAt           *time.Time `db:"work_started_at" json:"work_started_at,omitempty"`
	WorkCompletedAt         *time.Time `db:"work_completed_at" json:"work_completed_at,omitempty"`
	IsActive                bool       `db:"is_active" json:"is_active"`
}

// AssignmentWithComplaint is the contractor's view of an assignment.
type AssignmentWithComplaint struct {
	ComplaintAssignment
	ComplaintTitle    string          `db:"complaint_title" json:"complaint_title"`
	ComplaintLocation string          `db:"complaint_location" json:"complaint_location"`
	ComplaintStatus   ComplaintStatus `db:"complaint_status" json:"complaint_status"`
	ComplaintPriority Priority        `db:"complaint_priority" json:"complaint_priority"`
	ComplaintUserID   string          `db:"complaint_user_id" json:"-"`
}

// ProgressChange describes what a contractor update applies in one transaction.
type ProgressChange struct {
	AssignmentID string
	ComplaintID  string
	ContractorID string
	From         ComplaintStatus
	To           ComplaintStatus
	StatusSet    bool
	At           time.Time
	Note         *ComplaintUpdate
}
