package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	"github.com/noah-isme/roadsafety-api/internal/models"
	"github.com/noah-isme/roadsafety-api/pkg/response"
)

type complaintService interface {
	Submit(ctx context.Context, principal *models.Principal, req dto.SubmitComplaintRequest) (*models.Complaint, error)
	Detail(ctx context.Context, principal *models.Principal, id string) (*dto.ComplaintDetailResponse, error)
	Decide(ctx context.Context, principal *models.Principal, id string, req dto.VerifyComplaintRequest) (*models.Complaint, error)
}

type citizenDashboardService interface {
	Citizen(ctx context.Context, principal *models.Principal) (*dto.CitizenDashboard, error)
}

// ComplaintHandler serves the citizen complaint endpoints.
type ComplaintHandler struct {
	complaints complaintService
	dashboard  citizenDashboardService
}

// NewComplaintHandler constructs the handler.
func NewComplaintHandler(complaints complaintService, dashboard citizenDashboardService) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints, dashboard: dashboard}
}

// Dashboard godoc
// @Summary Citizen dashboard
// @Description Own complaints, unread notifications and status counts
// @Tags Citizen
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /user/dashboard [get]
func (h *ComplaintHandler) Dashboard(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		return
	}
	res, err := h.dashboard.Citizen(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Submit godoc
// @Summary Submit a road complaint
// @Tags Citizen
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param location formData string true "Location"
// @Param latitude formData number false "Latitude"
// @Param longitude formData number false "Longitude"
// @Param complaint_type formData string false "Complaint type"
// @Param priority formData string false "Priority"
// @Param image formData file false "Photo of the defect"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /user/complaints [post]
func (h *ComplaintHandler) Submit(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		return
	}

	var req dto.SubmitComplaintRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid complaint payload"))
		return
	}
	upload, closeUpload, err := uploadFromForm(c, "image")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeUpload()
	req.Image = upload

	complaint, err := h.complaints.Submit(c.Request.Context(), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, complaint)
}

// Detail godoc
// @Summary Complaint detail
// @Description Complaint with its update history and active assignment
// @Tags Citizen
// @Produce json
// @Security BearerAuth
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /user/complaints/{id} [get]
func (h *ComplaintHandler) Detail(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		return
	}
	res, err := h.complaints.Detail(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
