package models

import "time"

// ComplaintType classifies the reported defect.
type ComplaintType string

const (
	ComplaintTypePothole       ComplaintType = "pothole"
	ComplaintTypeConstruction  ComplaintType = "construction"
	ComplaintTypeMaintenance   ComplaintType = "maintenance"
	ComplaintTypeTrafficSignal ComplaintType = "traffic_signal"
	ComplaintTypeStreetLight   ComplaintType = "street_light"
	ComplaintTypeOther         ComplaintType = "other"
)

// Valid reports whether t is a known complaint type.
func (t ComplaintType) Valid() bool {
	switch t {
	case ComplaintTypePothole, ComplaintTypeConstruction, ComplaintTypeMaintenance,
		ComplaintTypeTrafficSignal, ComplaintTypeStreetLight, ComplaintTypeOther:
		return true
	}
	return false
}

// Priority ranks complaint urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Complaint is a citizen report of a road defect.
type Complaint struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"user_id"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Location    string          `db:"location" json:"location"`
	Latitude    *float64        `db:"latitude" json:"latitude,omitempty"`
	Longitude   *float64        `db:"longitude" json:"longitude,omitempty"`
	Type        ComplaintType   `db:"complaint_type" json:"complaint_type"`
	Priority    Priority        `db:"priority" json:"priority"`
	Status      ComplaintStatus `db:"status" json:"status"`
	ImagePath   *string         `db:"image" json:"-"`
	ImageURL    string          `db:"-" json:"image_url,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
	VerifiedBy  *string         `db:"verified_by" json:"verified_by,omitempty"`
	VerifiedAt  *time.Time      `db:"verified_at" json:"verified_at,omitempty"`
}

// ComplaintWithOwner adds the reporting user's identity for admin listings.
type ComplaintWithOwner struct {
	Complaint
	OwnerUsername string `db:"owner_username" json:"owner_username"`
	OwnerEmail    string `db:"owner_email" json:"owner_email"`
}

// ComplaintFilter narrows complaint listings.
type ComplaintFilter struct {
	UserID     string
	Status     ComplaintStatus
	OwnerEmail string
	Page       int
	PageSize   int
}

// StatusCounts maps each status to its number of complaints.
type StatusCounts map[ComplaintStatus]int

// Total sums every status.
func (c StatusCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}
