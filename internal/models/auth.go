package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginResponse returns the issued token and the resolved caller.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      Role   `json:"role"`
	Verified  *bool  `json:"contractor_verified,omitempty"`
	CompanyID string `json:"contractor_id,omitempty"`
}

// NewUserInfo projects a principal for responses.
func NewUserInfo(p *Principal) UserInfo {
	info := UserInfo{
		ID:       p.User.ID,
		Username: p.User.Username,
		Email:    p.User.Email,
		FullName: p.User.FullName(),
		Role:     p.Role,
	}
	if p.Contractor != nil {
		verified := p.Contractor.IsVerified
		info.Verified = &verified
		info.CompanyID = p.Contractor.ID
	}
	return info
}

// JWTClaims is the access token payload. It carries identity only; the role
// is resolved from storage on each request.
type JWTClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
