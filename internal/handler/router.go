package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/roadsafety-api/internal/middleware"
	"github.com/noah-isme/roadsafety-api/internal/models"
)

// Handlers groups everything mounted under the API prefix.
type Handlers struct {
	Auth          *AuthHandler
	Complaints    *ComplaintHandler
	Admin         *AdminHandler
	Contractor    *ContractorHandler
	Notifications *NotificationHandler
	Media         *MediaHandler
}

// RegisterRoutes mounts the versioned API on r.
func RegisterRoutes(r gin.IRouter, prefix string, auth middleware.Authenticator, h Handlers) {
	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())
	api.GET("/", Home)

	authn := middleware.JWT(auth)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/contractor/register", h.Auth.RegisterContractor)
	authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
	authGroup.GET("/reset-password/:uid/:token", h.Auth.CheckResetLink)
	authGroup.POST("/reset-password/:uid/:token", h.Auth.ResetPassword)
	authGroup.POST("/logout", authn, h.Auth.Logout)
	authGroup.GET("/me", authn, h.Auth.Me)

	api.GET("/media/:token", h.Media.Serve)

	user := api.Group("/user", authn)
	user.GET("/dashboard", h.Complaints.Dashboard)
	user.POST("/complaints", h.Complaints.Submit)
	user.GET("/complaints/:id", h.Complaints.Detail)
	user.GET("/notifications", h.Notifications.List)

	api.POST("/notifications/:id/read", authn, h.Notifications.MarkRead)

	admin := api.Group("/admin", authn, middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/dashboard", h.Admin.Dashboard)
	admin.GET("/complaints/export", h.Admin.ExportComplaints)
	admin.POST("/complaints/:id/verify", h.Admin.VerifyComplaint)
	admin.GET("/complaints/:id/assign", h.Admin.EligibleContractors)
	admin.POST("/complaints/:id/assign", h.Admin.AssignComplaint)
	admin.GET("/contractors", h.Admin.ListContractors)
	admin.POST("/contractors/:id/verify", h.Admin.VerifyContractor)
	admin.GET("/search/email", h.Admin.SearchEmail)

	contractor := api.Group("/contractor", authn, middleware.RequireRoles(models.RoleContractor))
	contractor.GET("/dashboard", h.Contractor.Dashboard)
	contractor.GET("/notifications", h.Notifications.List)
	contractor.GET("/assignments/:id", h.Contractor.AssignmentDetail)
	contractor.POST("/assignments/:id/update", h.Contractor.UpdateAssignment)
}
