package dto

// VerifyContractorRequest sets the contractor verification flag; omitted means verified.
type VerifyContractorRequest struct {
	IsVerified *bool `json:"is_verified" form:"is_verified"`
}
