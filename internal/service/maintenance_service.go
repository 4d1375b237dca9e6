package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/roadsafety-api/internal/models"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
)

type maintenanceStore interface {
	Counts(ctx context.Context) (*models.UserCounts, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	Purge(ctx context.Context) error
}

type adminCreator interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

type mediaPurger interface {
	Purge() error
}

// CreateAdminInput describes an operator-created staff account.
type CreateAdminInput struct {
	Username string `validate:"required,min=3,max=150"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=128"`
}

// UserReport is the check-users output.
type UserReport struct {
	Counts models.UserCounts
	Users  []models.User
}

// MaintenanceService implements the operator CLI commands.
type MaintenanceService struct {
	store     maintenanceStore
	users     adminCreator
	media     mediaPurger
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewMaintenanceService constructs a MaintenanceService.
func NewMaintenanceService(store maintenanceStore, users adminCreator, media mediaPurger, logger *zap.Logger) *MaintenanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaintenanceService{store: store, users: users, media: media, validator: validator.New(), logger: logger, now: time.Now}
}

// CreateAdmin creates an active staff user.
func (s *MaintenanceService) CreateAdmin(ctx context.Context, in CreateAdminInput) (*models.User, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.FromValidation(err, "invalid admin account")
	}
	username := strings.TrimSpace(in.Username)
	exists, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
		IsStaff:      true,
		IsActive:     true,
		DateJoined:   s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin")
	}
	s.logger.Info("admin created", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// CheckUsers reports row counts and every user account.
func (s *MaintenanceService) CheckUsers(ctx context.Context) (*UserReport, error) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count rows")
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return &UserReport{Counts: *counts, Users: users}, nil
}

// Purge deletes all application data and stored media.
func (s *MaintenanceService) Purge(ctx context.Context) error {
	if err := s.store.Purge(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to purge data")
	}
	if s.media != nil {
		if err := s.media.Purge(); err != nil {
			s.logger.Warn("failed to purge media directory", zap.Error(err))
		}
	}
	s.logger.Warn("all application data purged")
	return nil
}
