package dto

import "github.com/noah-isme/roadsafety-api/internal/models"

// EmailSearchResult groups substring email matches. The slices are never nil.
type EmailSearchResult struct {
	Query       string                      `json:"query"`
	Users       []models.User               `json:"users"`
	Contractors []models.ContractorDetail   `json:"contractors"`
	Complaints  []models.ComplaintWithOwner `json:"complaints"`
	HasResults  bool                        `json:"has_results"`
}

// NewEmptySearchResult returns a result with three empty lists.
func NewEmptySearchResult(query string) *EmailSearchResult {
	return &EmailSearchResult{
		Query:       query,
		Users:       []models.User{},
		Contractors: []models.ContractorDetail{},
		Complaints:  []models.ComplaintWithOwner{},
	}
}
