package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	"github.com/noah-isme/roadsafety-api/internal/models"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
)

type dashboardComplaintRepository interface {
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.ComplaintWithOwner, int, error)
	CountByStatus(ctx context.Context, userID string) (models.StatusCounts, error)
}

type dashboardContractorRepository interface {
	List(ctx context.Context, filter models.ContractorFilter) ([]models.ContractorDetail, error)
	CountVerified(ctx context.Context) (int, error)
}

type dashboardAssignmentRepository interface {
	ListActiveByContractor(ctx context.Context, contractorID string) ([]models.AssignmentWithComplaint, error)
}

type unreadCounter interface {
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type emailSearcher interface {
	ByEmail(ctx context.Context, q string) (*dto.EmailSearchResult, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the role landing pages.
type DashboardService struct {
	complaints    dashboardComplaintRepository
	contractors   dashboardContractorRepository
	assignments   dashboardAssignmentRepository
	notifications unreadCounter
	search        emailSearcher
	media         mediaStorer
	cache         *CacheService
	logger        *zap.Logger
	cfg           DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Complaints    dashboardComplaintRepository
	Contractors   dashboardContractorRepository
	Assignments   dashboardAssignmentRepository
	Notifications unreadCounter
	Search        emailSearcher
	Media         mediaStorer
	Cache         *CacheService
	Logger        *zap.Logger
	Config        DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultDashboardCacheWindow
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		complaints:    params.Complaints,
		contractors:   params.Contractors,
		assignments:   params.Assignments,
		notifications: params.Notifications,
		search:        params.Search,
		media:         params.Media,
		cache:         params.Cache,
		logger:        logger,
		cfg:           cfg,
	}
}

// Citizen returns the caller's complaints with per-status counts.
func (s *DashboardService) Citizen(ctx context.Context, principal *models.Principal) (*dto.CitizenDashboard, error) {
	complaints, _, err := s.complaints.List(ctx, models.ComplaintFilter{UserID: principal.User.ID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	counts, err := s.complaints.CountByStatus(ctx, principal.User.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count complaints")
	}
	unread, err := s.notifications.UnreadCount(ctx, principal.User.ID)
	if err != nil {
		return nil, err
	}
	s.attachComplaintImages(complaints)
	return &dto.CitizenDashboard{
		Complaints:          nonNilComplaints(complaints),
		TotalComplaints:     counts.Total(),
		PendingComplaints:   counts[models.StatusPending],
		CompletedComplaints: counts[models.StatusCompleted],
		ByStatus:            counts,
		UnreadNotifications: unread,
	}, nil
}

// Admin returns every complaint, every contractor and the headline counts.
// Counts are served from cache when possible; searchEmail adds an email search.
func (s *DashboardService) Admin(ctx context.Context, searchEmail string) (*dto.AdminDashboard, error) {
	counts, hit, err := s.adminCounts(ctx)
	if err != nil {
		return nil, err
	}
	complaints, _, err := s.complaints.List(ctx, models.ComplaintFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	contractors, err := s.contractors.List(ctx, models.ContractorFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contractors")
	}
	if contractors == nil {
		contractors = []models.ContractorDetail{}
	}
	s.attachComplaintImages(complaints)

	dashboard := &dto.AdminDashboard{
		AdminDashboardCounts: *counts,
		Complaints:           nonNilComplaints(complaints),
		Contractors:          contractors,
		CacheHit:             hit,
	}
	if searchEmail != "" {
		result, err := s.search.ByEmail(ctx, searchEmail)
		if err != nil {
			return nil, err
		}
		dashboard.Search = result
	}
	return dashboard, nil
}

// Contractor returns the caller's active assignments with counts.
func (s *DashboardService) Contractor(ctx context.Context, principal *models.Principal) (*dto.ContractorDashboard, error) {
	if principal.Contractor == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "contractor profile required")
	}
	assignments, err := s.assignments.ListActiveByContractor(ctx, principal.Contractor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	if assignments == nil {
		assignments = []models.AssignmentWithComplaint{}
	}
	unread, err := s.notifications.UnreadCount(ctx, principal.User.ID)
	if err != nil {
		return nil, err
	}

	dashboard := &dto.ContractorDashboard{
		Contractor:          *principal.Contractor,
		Assignments:         assignments,
		TotalAssignments:    len(assignments),
		UnreadNotifications: unread,
	}
	for _, a := range assignments {
		switch a.ComplaintStatus {
		case models.StatusAssigned:
			dashboard.AssignedAssignments++
		case models.StatusInProgress:
			dashboard.InProgressAssignments++
		case models.StatusCompleted:
			dashboard.CompletedAssignments++
		}
	}
	return dashboard, nil
}

func (s *DashboardService) adminCounts(ctx context.Context) (*dto.AdminDashboardCounts, bool, error) {
	var cached dto.AdminDashboardCounts
	hit, err := s.cache.Get(ctx, adminDashboardCountsKey, &cached)
	if err != nil {
		s.logger.Warn("dashboard cache read failed", zap.Error(err))
	} else if hit {
		return &cached, true, nil
	}

	byStatus, err := s.complaints.CountByStatus(ctx, "")
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count complaints")
	}
	verified, err := s.contractors.CountVerified(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count contractors")
	}
	counts := &dto.AdminDashboardCounts{
		TotalComplaints:     byStatus.Total(),
		PendingComplaints:   byStatus[models.StatusPending],
		VerifiedComplaints:  byStatus[models.StatusVerified],
		AssignedComplaints:  byStatus[models.StatusAssigned],
		CompletedComplaints: byStatus[models.StatusCompleted],
		VerifiedContractors: verified,
	}
	s.persistCache(ctx, adminDashboardCountsKey, counts)
	return counts, false, nil
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *DashboardService) attachComplaintImages(items []models.ComplaintWithOwner) {
	if s.media == nil {
		return
	}
	for i := range items {
		items[i].ImageURL = s.media.URL(items[i].ImagePath)
	}
}

func nonNilComplaints(items []models.ComplaintWithOwner) []models.ComplaintWithOwner {
	if items == nil {
		return []models.ComplaintWithOwner{}
	}
	return items
}
