package dto

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=150"`
	Password string `json:"password" form:"password" validate:"required"`
}

// RegisterRequest creates a citizen account.
type RegisterRequest struct {
	Username        string `json:"username" form:"username" validate:"required,min=3,max=150"`
	Email           string `json:"email" form:"email" validate:"required,email,max=254"`
	FirstName       string `json:"first_name" form:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" form:"last_name" validate:"max=150"`
	Password        string `json:"password" form:"password" validate:"required,min=8,max=128"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required,eqfield=Password"`
}

// ContractorRegisterRequest creates a contractor account and its unverified profile.
type ContractorRegisterRequest struct {
	RegisterRequest
	CompanyName    string `json:"company_name" form:"company_name" validate:"required,max=200"`
	Phone          string `json:"phone" form:"phone" validate:"required,max=20"`
	Address        string `json:"address" form:"address" validate:"required"`
	Specialization string `json:"specialization" form:"specialization" validate:"required,max=100"`
}

// ForgotPasswordRequest starts the password reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

// ResetPasswordRequest sets a new password through a reset link.
type ResetPasswordRequest struct {
	NewPassword        string `json:"new_password" form:"new_password" validate:"required,min=8,max=128"`
	NewPasswordConfirm string `json:"new_password_confirm" form:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

// ResetLinkStatus reports whether a reset link can be used.
type ResetLinkStatus struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username,omitempty"`
}
