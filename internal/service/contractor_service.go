package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	"github.com/noah-isme/roadsafety-api/internal/models"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
)

type contractorStore interface {
	FindByID(ctx context.Context, id string) (*models.ContractorDetail, error)
	List(ctx context.Context, filter models.ContractorFilter) ([]models.ContractorDetail, error)
	SetVerified(ctx context.Context, id string, verified bool) error
}

// ContractorService manages the contractor directory for administrators.
type ContractorService struct {
	repo     contractorStore
	notifier notifier
	cache    *CacheService
	logger   *zap.Logger
}

// NewContractorService constructs a ContractorService.
func NewContractorService(repo contractorStore, notifier notifier, cache *CacheService, logger *zap.Logger) *ContractorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractorService{repo: repo, notifier: notifier, cache: cache, logger: logger}
}

// List returns contractors, newest first.
func (s *ContractorService) List(ctx context.Context, filter models.ContractorFilter) ([]models.ContractorDetail, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contractors")
	}
	if items == nil {
		items = []models.ContractorDetail{}
	}
	return items, nil
}

// SetVerified toggles the verification flag. An omitted flag verifies.
func (s *ContractorService) SetVerified(ctx context.Context, id string, req dto.VerifyContractorRequest) (*models.ContractorDetail, error) {
	verified := true
	if req.IsVerified != nil {
		verified = *req.IsVerified
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "contractor not found")
	}
	if err := s.repo.SetVerified(ctx, id, verified); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "contractor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update contractor")
	}
	contractor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contractor")
	}

	s.cache.Invalidate(ctx, adminDashboardCachePattern)
	s.logger.Info("contractor verification changed", zap.String("contractor_id", id), zap.Bool("verified", verified))
	if verified && s.notifier != nil {
		s.notifier.Notify(ctx, contractor.UserID, models.NotificationVerification,
			"Contractor Account Verified",
			"Your contractor account has been verified. You can now receive assignments.",
			nil)
	}
	return contractor, nil
}
