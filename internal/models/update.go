package models

import "time"

// ComplaintUpdate is an immutable contractor progress note.
type ComplaintUpdate struct {
	ID           string    `db:"id" json:"id"`
	ComplaintID  string    `db:"complaint_id" json:"complaint_id"`
	ContractorID string    `db:"contractor_id" json:"contractor_id"`
	UpdateText   string    `db:"update_text" json:"update_text"`
	ImagePath    *string   `db:"update_image" json:"-"`
	ImageURL     string    `db:"-" json:"image_url,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	CompanyName  string    `db:"company_name" json:"company_name,omitempty"`
}
