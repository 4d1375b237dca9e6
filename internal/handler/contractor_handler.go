package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	"github.com/noah-isme/roadsafety-api/internal/models"
	"github.com/noah-isme/roadsafety-api/pkg/response"
)

type contractorDashboardService interface {
	Contractor(ctx context.Context, principal *models.Principal) (*dto.ContractorDashboard, error)
}

type assignmentWorkService interface {
	Detail(ctx context.Context, principal *models.Principal, assignmentID string) (*dto.AssignmentDetailResponse, error)
	UpdateProgress(ctx context.Context, principal *models.Principal, assignmentID string, req dto.ProgressUpdateRequest) (*dto.ProgressUpdateResponse, error)
}

// ContractorHandler serves endpoints for contractor accounts.
type ContractorHandler struct {
	dashboard   contractorDashboardService
	assignments assignmentWorkService
}

// NewContractorHandler constructs the handler.
func NewContractorHandler(dashboard contractorDashboardService, assignments assignmentWorkService) *ContractorHandler {
	return &ContractorHandler{dashboard: dashboard, assignments: assignments}
}

// Dashboard godoc
// @Summary Contractor dashboard
// @Tags Contractor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /contractor/dashboard [get]
func (h *ContractorHandler) Dashboard(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		return
	}
	res, err := h.dashboard.Contractor(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// AssignmentDetail godoc
// @Summary Assignment detail
// @Tags Contractor
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /contractor/assignments/{id} [get]
func (h *ContractorHandler) AssignmentDetail(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		return
	}
	res, err := h.assignments.Detail(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// UpdateAssignment godoc
// @Summary Post progress on an assignment
// @Tags Contractor
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param status formData string false "in_progress or completed"
// @Param update_text formData string false "Progress note"
// @Param update_image formData file false "Progress photo"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /contractor/assignments/{id}/update [post]
func (h *ContractorHandler) UpdateAssignment(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		return
	}
	var req dto.ProgressUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid progress payload"))
		return
	}
	upload, closeUpload, err := uploadFromForm(c, "update_image")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeUpload()
	req.Image = upload

	res, err := h.assignments.UpdateProgress(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
