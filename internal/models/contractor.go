package models

import "time"

// Contractor is the 1:1 extension of a User that marks it as a work contractor.
type Contractor struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	CompanyName    string    `db:"company_name" json:"company_name"`
	Phone          string    `db:"phone" json:"phone"`
	Address        string    `db:"address" json:"address"`
	Specialization string    `db:"specialization" json:"specialization"`
	IsVerified     bool      `db:"is_verified" json:"is_verified"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ContractorDetail joins a contractor with its user account.
type ContractorDetail struct {
	Contractor
	Username  string `db:"username" json:"username"`
	Email     string `db:"email" json:"email"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}

// ContractorFilter narrows contractor listings.
type ContractorFilter struct {
	Verified *bool
	Email    string
}
