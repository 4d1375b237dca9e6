package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	"github.com/noah-isme/roadsafety-api/internal/middleware"
	"github.com/noah-isme/roadsafety-api/internal/models"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
	"github.com/noah-isme/roadsafety-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, claims *models.JWTClaims) error
	RegisterCitizen(ctx context.Context, req dto.RegisterRequest) (*models.LoginResponse, error)
	RegisterContractor(ctx context.Context, req dto.ContractorRegisterRequest) (*models.LoginResponse, error)
	ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error
	CheckResetLink(ctx context.Context, uid, token string) (*models.User, error)
	ResetPassword(ctx context.Context, uid, token string, req dto.ResetPasswordRequest) error
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate user by username and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res)
}

// Logout godoc
// @Summary Logout current session
// @Description Revoke the presented access token
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Logout(c.Request.Context(), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Me godoc
// @Summary Current user
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		return
	}
	response.OK(c, models.NewUserInfo(principal))
}

// Register godoc
// @Summary Register a citizen account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid registration payload"))
		return
	}
	res, err := h.service.RegisterCitizen(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// RegisterContractor godoc
// @Summary Register a contractor account
// @Description Creates the user and an unverified contractor profile
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.ContractorRegisterRequest true "Contractor registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/contractor/register [post]
func (h *AuthHandler) RegisterContractor(c *gin.Context) {
	var req dto.ContractorRegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid contractor registration payload"))
		return
	}
	res, err := h.service.RegisterContractor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// ForgotPassword godoc
// @Summary Request a password reset email
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.ForgotPasswordRequest true "Email"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid forgot password payload"))
		return
	}
	if err := h.service.ForgotPassword(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "Password reset link has been sent to your email."})
}

// CheckResetLink godoc
// @Summary Validate a password reset link
// @Tags Authentication
// @Produce json
// @Param uid path string true "Encoded user id"
// @Param token path string true "Reset token"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/reset-password/{uid}/{token} [get]
func (h *AuthHandler) CheckResetLink(c *gin.Context) {
	user, err := h.service.CheckResetLink(c.Request.Context(), c.Param("uid"), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ResetLinkStatus{Valid: true, Username: user.Username})
}

// ResetPassword godoc
// @Summary Set a new password through a reset link
// @Tags Authentication
// @Accept json
// @Produce json
// @Param uid path string true "Encoded user id"
// @Param token path string true "Reset token"
// @Param payload body dto.ResetPasswordRequest true "New password"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/reset-password/{uid}/{token} [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid password reset payload"))
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), c.Param("uid"), c.Param("token"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "Your password has been reset successfully. You can now log in with your new password."})
}
