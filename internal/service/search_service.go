package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	"github.com/noah-isme/roadsafety-api/internal/models"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
)

type userSearcher interface {
	SearchByEmail(ctx context.Context, q string) ([]models.User, error)
}

type contractorLister interface {
	List(ctx context.Context, filter models.ContractorFilter) ([]models.ContractorDetail, error)
}

type complaintLister interface {
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.ComplaintWithOwner, int, error)
}

// SearchService runs the admin email search across users, contractors and complaints.
type SearchService struct {
	users       userSearcher
	contractors contractorLister
	complaints  complaintLister
	logger      *zap.Logger
}

// NewSearchService constructs a SearchService.
func NewSearchService(users userSearcher, contractors contractorLister, complaints complaintLister, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{users: users, contractors: contractors, complaints: complaints, logger: logger}
}

// ByEmail matches q case-insensitively as a substring of user emails,
// contractor account emails and complaint owner emails. An empty query
// returns three empty lists.
func (s *SearchService) ByEmail(ctx context.Context, q string) (*dto.EmailSearchResult, error) {
	q = strings.TrimSpace(q)
	result := dto.NewEmptySearchResult(q)
	if q == "" {
		return result, nil
	}

	users, err := s.users.SearchByEmail(ctx, q)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search users")
	}
	contractors, err := s.contractors.List(ctx, models.ContractorFilter{Email: q})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search contractors")
	}
	complaints, _, err := s.complaints.List(ctx, models.ComplaintFilter{OwnerEmail: q})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search complaints")
	}

	if users != nil {
		result.Users = users
	}
	if contractors != nil {
		result.Contractors = contractors
	}
	if complaints != nil {
		result.Complaints = complaints
	}
	result.HasResults = len(result.Users) > 0 || len(result.Contractors) > 0 || len(result.Complaints) > 0
	return result, nil
}
