package dto

import "github.com/noah-isme/roadsafety-api/internal/models"

// CitizenDashboard lists the caller's own complaints with counts.
type CitizenDashboard struct {
	Complaints          []models.ComplaintWithOwner `json:"complaints"`
	TotalComplaints     int                         `json:"total_complaints"`
	PendingComplaints   int                         `json:"pending_complaints"`
	CompletedComplaints int                         `json:"completed_complaints"`
	ByStatus            models.StatusCounts         `json:"by_status"`
	UnreadNotifications int                         `json:"unread_notifications"`
}

// AdminDashboardCounts are the headline numbers shown to administrators.
type AdminDashboardCounts struct {
	TotalComplaints     int `json:"total_complaints"`
	PendingComplaints   int `json:"pending_complaints"`
	VerifiedComplaints  int `json:"verified_complaints"`
	AssignedComplaints  int `json:"assigned_complaints"`
	CompletedComplaints int `json:"completed_complaints"`
	VerifiedContractors int `json:"verified_contractors"`
}

// AdminDashboard is the administrator landing payload.
type AdminDashboard struct {
	AdminDashboardCounts
	Complaints  []models.ComplaintWithOwner `json:"complaints"`
	Contractors []models.ContractorDetail   `json:"contractors"`
	Search      *EmailSearchResult          `json:"search,omitempty"`
	CacheHit    bool                        `json:"-"`
}

// ContractorDashboard lists the caller's active assignments with counts.
type ContractorDashboard struct {
	Contractor            models.Contractor                `json:"contractor"`
	Assignments           []models.AssignmentWithComplaint `json:"assignments"`
	TotalAssignments      int                              `json:"total_assignments"`
	AssignedAssignments   int                              `json:"active_assignments"`
	InProgressAssignments int                              `json:"in_progress_assignments"`
	CompletedAssignments  int                              `json:"completed_assignments"`
	UnreadNotifications   int                              `json:"unread_notifications"`
}
