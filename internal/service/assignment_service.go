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

type assignmentStore interface {
	Assign(ctx context.Context, assignment *models.ComplaintAssignment) error
	FindForContractor(ctx context.Context, id, contractorID string) (*models.AssignmentWithComplaint, error)
	ListActiveByContractor(ctx context.Context, contractorID string) ([]models.AssignmentWithComplaint, error)
	ApplyProgress(ctx context.Context, change models.ProgressChange) error
}

type complaintReader interface {
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
}

type contractorDirectory interface {
	FindByID(ctx context.Context, id string) (*models.ContractorDetail, error)
	List(ctx context.Context, filter models.ContractorFilter) ([]models.ContractorDetail, error)
}

// AssignmentServiceParams groups the collaborators of AssignmentService.
type AssignmentServiceParams struct {
	Assignments assignmentStore
	Complaints  complaintReader
	Contractors contractorDirectory
	Updates     updateLister
	Notifier    notifier
	Media       mediaStorer
	Cache       *CacheService
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
	Now         func() time.Time
}

// AssignmentService hands verified complaints to contractors and records their progress.
type AssignmentService struct {
	assignments assignmentStore
	complaints  complaintReader
	contractors contractorDirectory
	updates     updateLister
	notifier    notifier
	media       mediaStorer
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(params AssignmentServiceParams) *AssignmentService {
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
	return &AssignmentService{
		assignments: params.Assignments,
		complaints:  params.Complaints,
		contractors: params.Contractors,
		updates:     params.Updates,
		notifier:    params.Notifier,
		media:       params.Media,
		cache:       params.Cache,
		metrics:     params.Metrics,
		validator:   validate,
		logger:      logger,
		now:         now,
	}
}

// Eligible returns the complaint and the verified contractors it may be assigned to.
func (s *AssignmentService) Eligible(ctx context.Context, complaintID string) (*dto.EligibleContractorsResponse, error) {
	complaint, err := s.loadComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	verified := true
	contractors, err := s.contractors.List(ctx, models.ContractorFilter{Verified: &verified})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contractors")
	}
	if contractors == nil {
		contractors = []models.ContractorDetail{}
	}
	complaint.ImageURL = s.media.URL(complaint.ImagePath)
	return &dto.EligibleContractorsResponse{Complaint: *complaint, Contractors: contractors}, nil
}

// Assign creates the active assignment for a verified complaint and moves it to assigned.
func (s *AssignmentService) Assign(ctx context.Context, principal *models.Principal, complaintID string, req dto.AssignComplaintRequest) (*models.ComplaintAssignment, error) {
	ctx, span := tracing.Start(ctx, "complaint.assign",
		attribute.String("complaint.id", complaintID),
		attribute.String("contractor.id", req.ContractorID),
	)
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid assignment payload")
	}

	var estimated *time.Time
	if req.EstimatedCompletionDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EstimatedCompletionDate)
		if err != nil {
			return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "invalid assignment payload"), "estimated_completion_date", "datetime=2006-01-02")
		}
		estimated = &parsed
	}

	complaint, err := s.loadComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateTransition(principal.Role, complaint.Status, models.StatusAssigned); err != nil {
		return nil, transitionError(err, "only verified complaints can be assigned")
	}

	contractor, err := s.contractors.FindByID(ctx, req.ContractorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "contractor not found"), "contractor_id", "not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contractor")
	}
	if !contractor.IsVerified {
		return nil, appErrors.ErrContractorNotVerified
	}

	assignment := &models.ComplaintAssignment{
		ID:                      uuid.NewString(),
		ComplaintID:             complaint.ID,
		ContractorID:            contractor.ID,
		AssignedBy:              principal.User.ID,
		AssignedAt:              s.now().UTC(),
		EstimatedCompletionDate: estimated,
		StatusUpdate:            strings.TrimSpace(req.StatusUpdate),
		IsActive:                true,
	}
	if err := s.assignments.Assign(ctx, assignment); err != nil {
		span.RecordError(err)
		return nil, staleWriteError(err, "failed to assign complaint")
	}

	s.metrics.RecordTransition(string(complaint.Status), string(models.StatusAssigned))
	s.cache.Invalidate(ctx, adminDashboardCachePattern)
	s.logger.Info("complaint assigned",
		zap.String("complaint_id", complaint.ID),
		zap.String("contractor_id", contractor.ID),
		zap.String("assigned_by", principal.User.ID),
	)

	s.notifier.Notify(ctx, complaint.UserID, models.NotificationAssignment,
		"Complaint Assigned",
		fmt.Sprintf("Your complaint %q has been assigned to %s.", complaint.Title, contractor.CompanyName),
		&complaint.ID)
	s.notifier.Notify(ctx, contractor.UserID, models.NotificationAssignment,
		"New Assignment",
		fmt.Sprintf("You have been assigned a new complaint: %s", complaint.Title),
		&complaint.ID)

	return assignment, nil
}

// Detail returns one of the caller's assignments with its complaint and progress notes.
func (s *AssignmentService) Detail(ctx context.Context, principal *models.Principal, assignmentID string) (*dto.AssignmentDetailResponse, error) {
	assignment, err := s.ownAssignment(ctx, principal, assignmentID)
	if err != nil {
		return nil, err
	}
	complaint, err := s.loadComplaint(ctx, assignment.ComplaintID)
	if err != nil {
		return nil, err
	}
	complaint.ImageURL = s.media.URL(complaint.ImagePath)

	updates, err := s.updates.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint updates")
	}
	for i := range updates {
		updates[i].ImageURL = s.media.URL(updates[i].ImagePath)
	}
	if updates == nil {
		updates = []models.ComplaintUpdate{}
	}
	return &dto.AssignmentDetailResponse{Assignment: *assignment, Complaint: *complaint, Updates: updates}, nil
}

// UpdateProgress applies an optional status change and an optional progress
// note to one of the caller's active assignments in a single transaction.
func (s *AssignmentService) UpdateProgress(ctx context.Context, principal *models.Principal, assignmentID string, req dto.ProgressUpdateRequest) (*dto.ProgressUpdateResponse, error) {
	ctx, span := tracing.Start(ctx, "assignment.update_progress", attribute.String("assignment.id", assignmentID))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid progress payload")
	}
	text := strings.TrimSpace(req.UpdateText)
	statusSet := req.Status != ""
	hasNote := text != "" || req.Image != nil
	if !statusSet && !hasNote {
		return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "please select a status or add a progress note"), "status", "required")
	}

	assignment, err := s.ownAssignment(ctx, principal, assignmentID)
	if err != nil {
		return nil, err
	}
	if !assignment.IsActive {
		return nil, appErrors.Clone(appErrors.ErrConflict, "assignment is no longer active")
	}

	from := assignment.ComplaintStatus
	to := from
	if statusSet {
		if err := models.ValidateTransition(models.RoleContractor, from, req.Status); err != nil {
			return nil, transitionError(err, fmt.Sprintf("cannot move a %s complaint to %s", from, req.Status))
		}
		to = req.Status
	}

	now := s.now().UTC()
	change := models.ProgressChange{
		AssignmentID: assignment.ID,
		ComplaintID:  assignment.ComplaintID,
		ContractorID: principal.Contractor.ID,
		From:         from,
		To:           to,
		StatusSet:    statusSet,
		At:           now,
	}

	var image *string
	if hasNote {
		image, err = s.media.Store(updateImageFolder, req.Image)
		if err != nil {
			return nil, err
		}
		change.Note = &models.ComplaintUpdate{
			ID:           uuid.NewString(),
			ComplaintID:  assignment.ComplaintID,
			ContractorID: principal.Contractor.ID,
			UpdateText:   text,
			ImagePath:    image,
			CreatedAt:    now,
			CompanyName:  principal.Contractor.CompanyName,
		}
	}

	if err := s.assignments.ApplyProgress(ctx, change); err != nil {
		s.media.Discard(image)
		span.RecordError(err)
		return nil, staleWriteError(err, "failed to update assignment")
	}

	if statusSet {
		assignment.ComplaintStatus = to
		switch to {
		case models.StatusInProgress:
			if assignment.WorkStartedAt == nil {
				assignment.WorkStartedAt = &now
			}
		case models.StatusCompleted:
			if assignment.WorkCompletedAt == nil {
				assignment.WorkCompletedAt = &now
			}
		}
	}

	if statusSet && from != to {
		s.metrics.RecordTransition(string(from), string(to))
		s.cache.Invalidate(ctx, adminDashboardCachePattern)
		s.logger.Info("complaint status changed",
			zap.String("complaint_id", assignment.ComplaintID),
			zap.String("assignment_id", assignment.ID),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		s.notifyProgress(ctx, assignment, to)
	}

	resp := &dto.ProgressUpdateResponse{Assignment: *assignment, StatusApplied: statusSet}
	if change.Note != nil {
		change.Note.ImageURL = s.media.URL(change.Note.ImagePath)
		resp.Update = change.Note
	}
	return resp, nil
}

func (s *AssignmentService) notifyProgress(ctx context.Context, assignment *models.AssignmentWithComplaint, to models.ComplaintStatus) {
	complaintID := assignment.ComplaintID
	switch to {
	case models.StatusInProgress:
		s.notifier.Notify(ctx, assignment.ComplaintUserID, models.NotificationComplaintStatus,
			"Work Started",
			fmt.Sprintf("Work has started on your complaint %q.", assignment.ComplaintTitle),
			&complaintID)
	case models.StatusCompleted:
		s.notifier.Notify(ctx, assignment.ComplaintUserID, models.NotificationCompletion,
			"Work Completed",
			fmt.Sprintf("Work on your complaint %q has been completed.", assignment.ComplaintTitle),
			&complaintID)
	}
}

func (s *AssignmentService) ownAssignment(ctx context.Context, principal *models.Principal, assignmentID string) (*models.AssignmentWithComplaint, error) {
	if principal.Contractor == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "contractor profile required")
	}
	if _, err := uuid.Parse(assignmentID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	assignment, err := s.assignments.FindForContractor(ctx, assignmentID, principal.Contractor.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

func (s *AssignmentService) loadComplaint(ctx context.Context, id string) (*models.Complaint, error) {
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
