package dto

import "github.com/noah-isme/roadsafety-api/internal/models"

// AssignComplaintRequest hands a verified complaint to a verified contractor.
type AssignComplaintRequest struct {
	ContractorID            string `json:"contractor_id" form:"contractor_id" validate:"required,uuid"`
	EstimatedCompletionDate string `json:"estimated_completion_date" form:"estimated_completion_date" validate:"omitempty,datetime=2006-01-02"`
	StatusUpdate            string `json:"status_update" form:"status_update" validate:"max=5000"`
}

// EligibleContractorsResponse backs the assignment form.
type EligibleContractorsResponse struct {
	Complaint   models.Complaint          `json:"complaint"`
	Contractors []models.ContractorDetail `json:"contractors"`
}

// ProgressUpdateRequest is a contractor status change and/or progress note.
// Status is optional; an empty note without image writes no ledger row.
type ProgressUpdateRequest struct {
	Status     models.ComplaintStatus `json:"status" form:"status" validate:"omitempty,oneof=in_progress completed"`
	UpdateText string                 `json:"update_text" form:"update_text" validate:"max=5000"`
	Image      *FileUpload            `json:"-" form:"-"`
}

// ProgressUpdateResponse reports what the update applied.
type ProgressUpdateResponse struct {
	Assignment    models.AssignmentWithComplaint `json:"assignment"`
	StatusApplied bool                           `json:"status_applied"`
	Update        *models.ComplaintUpdate        `json:"update,omitempty"`
}

// AssignmentDetailResponse is the contractor's view of one assignment.
type AssignmentDetailResponse struct {
	Assignment models.AssignmentWithComplaint `json:"assignment"`
	Complaint  models.Complaint               `json:"complaint"`
	Updates    []models.ComplaintUpdate       `json:"updates"`
}
