package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	"github.com/noah-isme/roadsafety-api/internal/models"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
	"github.com/noah-isme/roadsafety-api/pkg/tracing"
)

type complaintStore interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	MarkVerified(ctx context.Context, id, verifierID string, at time.Time) error
	UpdateStatus(ctx context.Context, id string, from, to models.ComplaintStatus, at time.Time) error
}

type updateLister interface {
	ListByComplaint(ctx context.Context, complaintID string) ([]models.ComplaintUpdate, error)
}

type activeAssignmentFinder interface {
	FindActiveByComplaint(ctx context.Context, complaintID string) (*models.ComplaintAssignment, error)
}

type notifier interface {
	Notify(ctx context.Context, userID string, typ models.NotificationType, title, message string, complaintID *string)
}

type mediaStorer interface {
	Store(folder string, upload *dto.FileUpload) (*string, error)
	Discard(rel *string)
	URL(rel *string) string
}

// ComplaintServiceParams groups the collaborators of ComplaintService.
type ComplaintServiceParams struct {
	Complaints  complaintStore
	Updates     updateLister
	Assignments activeAssignmentFinder
	Notifier    notifier
	Media       mediaStorer
	Cache       *CacheService
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
	Now         func() time.Time
}

// ComplaintService implements complaint submission, detail and admin review.
type ComplaintService struct {
	complaints  complaintStore
	updates     updateLister
	assignments activeAssignmentFinder
	notifier    notifier
	media       mediaStorer
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewComplaintService constructs a ComplaintService.
func NewComplaintService(params ComplaintServiceParams) *ComplaintService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &ComplaintService{
		complaints:  params.Complaints,
		updates:     params.Updates,
		assignments: params.Assignments,
		notifier:    params.Notifier,
		media:       params.Media,
		cache:       params.Cache,
		metrics:     params.Metrics,
		validator:   validate,
		logger:      logger,
		now:         now,
	}
}

// Submit files a new pending complaint owned by the caller.
func (s *ComplaintService) Submit(ctx context.Context, principal *models.Principal, req dto.SubmitComplaintRequest) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid complaint payload")
	}

	complaintType := req.Type
	if complaintType == "" {
		complaintType = models.ComplaintTypeOther
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	image, err := s.media.Store(complaintImageFolder, req.Image)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	complaint := &models.Complaint{
		ID:          uuid.NewString(),
		UserID:      principal.User.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Type:        complaintType,
		Priority:    priority,
		Status:      models.StatusPending,
		ImagePath:   image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		s.media.Discard(image)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create complaint")
	}

	s.cache.Invalidate(ctx, adminDashboardCachePattern)
	s.logger.Info("complaint submitted", zap.String("complaint_id", complaint.ID), zap.String("user_id", principal.User.ID))
	complaint.ImageURL = s.media.URL(complaint.ImagePath)
	return complaint, nil
}

// Detail returns a complaint with its active assignment and progress notes.
// Non-admins only see their own complaints; anything else is not found.
func (s *ComplaintService) Detail(ctx context.Context, principal *models.Principal, id string) (*dto.ComplaintDetailResponse, error) {
	complaint, err := s.loadComplaint(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && complaint.UserID != principal.User.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
	}
	complaint.ImageURL = s.media.URL(complaint.ImagePath)

	resp := &dto.ComplaintDetailResponse{Complaint: *complaint, Updates: []models.ComplaintUpdate{}}

	assignment, err := s.assignments.FindActiveByComplaint(ctx, complaint.ID)
	switch {
	case err == nil:
		resp.Assignment = assignment
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	updates, err := s.updates.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint updates")
	}
	for i := range updates {
		updates[i].ImageURL = s.media.URL(updates[i].ImagePath)
	}
	if updates != nil {
		resp.Updates = updates
	}
	return resp, nil
}

// Decide applies the admin verify or reject action to a pending complaint.
func (s *ComplaintService) Decide(ctx context.Context, principal *models.Principal, id string, req dto.VerifyComplaintRequest) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid verification payload")
	}
	if req.Action == dto.ActionReject {
		return s.Reject(ctx, principal, id)
	}
	return s.Verify(ctx, principal, id)
}

// Verify moves a pending complaint to verified and records the verifier once.
func (s *ComplaintService) Verify(ctx context.Context, principal *models.Principal, id string) (*models.Complaint, error) {
	ctx, span := tracing.Start(ctx, "complaint.verify", attribute.String("complaint.id", id))
	defer span.End()

	complaint, err := s.loadComplaint(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateTransition(principal.Role, complaint.Status, models.StatusVerified); err != nil {
		return nil, transitionError(err, fmt.Sprintf("cannot verify a %s complaint", complaint.Status))
	}

	now := s.now().UTC()
	if err := s.complaints.MarkVerified(ctx, complaint.ID, principal.User.ID, now); err != nil {
		span.RecordError(err)
		return nil, staleWriteError(err, "failed to verify complaint")
	}
	from := complaint.Status
	complaint.Status = models.StatusVerified
	complaint.VerifiedBy = &principal.User.ID
	complaint.VerifiedAt = &now
	complaint.UpdatedAt = now
	s.afterTransition(ctx, complaint, from)

	s.notifier.Notify(ctx, complaint.UserID, models.NotificationVerification,
		"Complaint Verified",
		fmt.Sprintf("Your complaint %q has been verified by the authorities.", complaint.Title),
		&complaint.ID)
	complaint.ImageURL = s.media.URL(complaint.ImagePath)
	return complaint, nil
}

// Reject moves a pending complaint to rejected.
func (s *ComplaintService) Reject(ctx context.Context, principal *models.Principal, id string) (*models.Complaint, error) {
	ctx, span := tracing.Start(ctx, "complaint.reject", attribute.String("complaint.id", id))
	defer span.End()

	complaint, err := s.loadComplaint(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateTransition(principal.Role, complaint.Status, models.StatusRejected); err != nil {
		return nil, transitionError(err, fmt.Sprintf("cannot reject a %s complaint", complaint.Status))
	}

	now := s.now().UTC()
	if err := s.complaints.UpdateStatus(ctx, complaint.ID, complaint.Status, models.StatusRejected, now); err != nil {
		span.RecordError(err)
		return nil, staleWriteError(err, "failed to reject complaint")
	}
	from := complaint.Status
	complaint.Status = models.StatusRejected
	complaint.UpdatedAt = now
	s.afterTransition(ctx, complaint, from)

	s.notifier.Notify(ctx, complaint.UserID, models.NotificationComplaintStatus,
		"Complaint Rejected",
		fmt.Sprintf("Your complaint %q has been rejected.", complaint.Title),
		&complaint.ID)
	complaint.ImageURL = s.media.URL(complaint.ImagePath)
	return complaint, nil
}

func (s *ComplaintService) afterTransition(ctx context.Context, complaint *models.Complaint, from models.ComplaintStatus) {
	s.metrics.RecordTransition(string(from), string(complaint.Status))
	s.cache.Invalidate(ctx, adminDashboardCachePattern)
	s.logger.Info("complaint status changed",
		zap.String("complaint_id", complaint.ID),
		zap.String("from", string(from)),
		zap.String("to", string(complaint.Status)),
	)
}

func (s *ComplaintService) loadComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
	}
	complaint, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}
	return complaint, nil
}

// transitionError maps a lifecycle rejection to its API error.
func transitionError(err error, message string) error {
	if errors.Is(err, models.ErrActorNotAllowed) {
		return appErrors.Clone(appErrors.ErrForbidden, "your role may not perform this status change")
	}
	return appErrors.Clone(appErrors.ErrInvalidTransition, message)
}

// staleWriteError reports a guarded update that matched no row as a conflict.
func staleWriteError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrConflict, "complaint was changed by another request")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
