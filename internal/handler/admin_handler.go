package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	"github.com/noah-isme/roadsafety-api/internal/middleware"
	"github.com/noah-isme/roadsafety-api/internal/models"
	"github.com/noah-isme/roadsafety-api/pkg/response"
)

type adminDashboardService interface {
	Admin(ctx context.Context, searchEmail string) (*dto.AdminDashboard, error)
}

type assignmentManager interface {
	Eligible(ctx context.Context, complaintID string) (*dto.EligibleContractorsResponse, error)
	Assign(ctx context.Context, principal *models.Principal, complaintID string, req dto.AssignComplaintRequest) (*models.ComplaintAssignment, error)
}

type contractorAdminService interface {
	List(ctx context.Context, filter models.ContractorFilter) ([]models.ContractorDetail, error)
	SetVerified(ctx context.Context, id string, req dto.VerifyContractorRequest) (*models.ContractorDetail, error)
}

type emailSearchService interface {
	ByEmail(ctx context.Context, q string) (*dto.EmailSearchResult, error)
}

type complaintExporter interface {
	Complaints(ctx context.Context, req dto.ExportRequest) (*dto.ExportFile, error)
}

// AdminHandler serves the admin console endpoints.
type AdminHandler struct {
	dashboard   adminDashboardService
	complaints  complaintService
	assignments assignmentManager
	contractors contractorAdminService
	search      emailSearchService
	export      complaintExporter
}

// AdminHandlerDeps bundles the services behind the admin endpoints.
type AdminHandlerDeps struct {
	Dashboard   adminDashboardService
	Complaints  complaintService
	Assignments assignmentManager
	Contractors contractorAdminService
	Search      emailSearchService
	Export      complaintExporter
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(deps AdminHandlerDeps) *AdminHandler {
	return &AdminHandler{
		dashboard:   deps.Dashboard,
		complaints:  deps.Complaints,
		assignments: deps.Assignments,
		contractors: deps.Contractors,
		search:      deps.Search,
		export:      deps.Export,
	}
}

// Dashboard godoc
// @Summary Admin dashboard
// @Description Status counts, recent complaints, contractors and an optional email search
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param search_email query string false "Email search term"
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	res, err := h.dashboard.Admin(c.Request.Context(), c.Query("search_email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, res.CacheHit)
	response.OK(c, res, middleware.ExtractMeta(c))
}

// VerifyComplaint godoc
// @Summary Verify or reject a pending complaint
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Complaint ID"
// @Param payload body dto.VerifyComplaintRequest true "verify or reject"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/complaints/{id}/verify [post]
func (h *AdminHandler) VerifyComplaint(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		return
	}
	var req dto.VerifyComplaintRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid verification payload"))
		return
	}
	complaint, err := h.complaints.Decide(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, complaint)
}

// EligibleContractors godoc
// @Summary Verified contractors that can take a complaint
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /admin/complaints/{id}/assign [get]
func (h *AdminHandler) EligibleContractors(c *gin.Context) {
	res, err := h.assignments.Eligible(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// AssignComplaint godoc
// @Summary Assign a verified complaint to a verified contractor
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Complaint ID"
// @Param payload body dto.AssignComplaintRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/complaints/{id}/assign [post]
func (h *AdminHandler) AssignComplaint(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		return
	}
	var req dto.AssignComplaintRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid assignment payload"))
		return
	}
	assignment, err := h.assignments.Assign(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// ListContractors godoc
// @Summary List contractors
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param verified query bool false "Filter by verification"
// @Success 200 {object} response.Envelope
// @Router /admin/contractors [get]
func (h *AdminHandler) ListContractors(c *gin.Context) {
	var filter models.ContractorFilter
	if raw := c.Query("verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, bindError(err, "verified must be a boolean"))
			return
		}
		filter.Verified = &v
	}
	items, err := h.contractors.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// VerifyContractor godoc
// @Summary Toggle contractor verification
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contractor ID"
// @Param payload body dto.VerifyContractorRequest false "Verification flag, defaults to true"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/contractors/{id}/verify [post]
func (h *AdminHandler) VerifyContractor(c *gin.Context) {
	var req dto.VerifyContractorRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			response.Error(c, bindError(err, "invalid contractor verification payload"))
			return
		}
	}
	contractor, err := h.contractors.SetVerified(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, contractor)
}

// SearchEmail godoc
// @Summary Search users, contractors and complaints by email
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param q query string true "Email fragment"
// @Success 200 {object} response.Envelope
// @Router /admin/search/email [get]
func (h *AdminHandler) SearchEmail(c *gin.Context) {
	res, err := h.search.ByEmail(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// ExportComplaints godoc
// @Summary Export complaints
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf"
// @Param status query string false "Status filter"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/complaints/export [get]
func (h *AdminHandler) ExportComplaints(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, bindError(err, "invalid export parameters"))
		return
	}
	file, err := h.export.Complaints(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
