package dto

import "github.com/noah-isme/roadsafety-api/internal/models"

// SubmitComplaintRequest files a new complaint. Type and priority default to other and medium.
type SubmitComplaintRequest struct {
	Title       string               `json:"title" form:"title" validate:"required,max=200"`
	Description string               `json:"description" form:"description" validate:"required"`
	Location    string               `json:"location" form:"location" validate:"required,max=255"`
	Latitude    *float64             `json:"latitude" form:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64             `json:"longitude" form:"longitude" validate:"omitempty,longitude"`
	Type        models.ComplaintType `json:"complaint_type" form:"complaint_type" validate:"omitempty,oneof=pothole construction maintenance traffic_signal street_light other"`
	Priority    models.Priority      `json:"priority" form:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Image       *FileUpload          `json:"-" form:"-"`
}

// Verification actions accepted by the admin verify endpoint.
const (
	ActionVerify = "verify"
	ActionReject = "reject"
)

// VerifyComplaintRequest carries the admin decision on a pending complaint.
type VerifyComplaintRequest struct {
	Action string `json:"action" form:"action" validate:"required,oneof=verify reject"`
}

// ComplaintDetailResponse is a complaint with its current assignment and progress notes.
type ComplaintDetailResponse struct {
	Complaint  models.Complaint            `json:"complaint"`
	Assignment *models.ComplaintAssignment `json:"assignment,omitempty"`
	Updates    []models.ComplaintUpdate    `json:"updates"`
}
