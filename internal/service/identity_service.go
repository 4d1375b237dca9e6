package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/roadsafety-api/internal/models"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
)

type identityUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type identityContractorReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.Contractor, error)
}

// IdentityService derives the caller's role from current storage.
type IdentityService struct {
	users       identityUserReader
	contractors identityContractorReader
	logger      *zap.Logger
}

// NewIdentityService constructs an IdentityService.
func NewIdentityService(users identityUserReader, contractors identityContractorReader, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{users: users, contractors: contractors, logger: logger}
}

// Resolve loads the user and its optional contractor link and resolves the role.
func (s *IdentityService) Resolve(ctx context.Context, userID string) (*models.Principal, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !user.IsActive {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}
	return s.principalFor(ctx, user)
}

func (s *IdentityService) principalFor(ctx context.Context, user *models.User) (*models.Principal, error) {
	contractor, err := s.contractors.FindByUserID(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contractor profile")
		}
		contractor = nil
	}
	return models.NewPrincipal(*user, contractor), nil
}
