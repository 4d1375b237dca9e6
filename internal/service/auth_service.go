package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	"github.com/noah-isme/roadsafety-api/internal/models"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
	"github.com/noah-isme/roadsafety-api/pkg/mailer"
	"github.com/noah-isme/roadsafety-api/pkg/resettoken"
)

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListByEmail(ctx context.Context, email string) ([]models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type contractorRegistrar interface {
	CreateWithUser(ctx context.Context, user *models.User, contractor *models.Contractor) error
}

type tokenBlocklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type principalResolver interface {
	Resolve(ctx context.Context, userID string) (*models.Principal, error)
}

type resetTokenGenerator interface {
	Make(sub resettoken.Subject) string
	Check(sub resettoken.Subject, token string) bool
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	// ResetLinkBase is the absolute URL prefix reset links are built on,
	// for example https://host/api/v1/auth/reset-password.
	ResetLinkBase string
}

// AuthServiceParams groups the collaborators of AuthService.
type AuthServiceParams struct {
	Users       authUserRepository
	Contractors contractorRegistrar
	Identity    principalResolver
	Blocklist   tokenBlocklist
	ResetTokens resetTokenGenerator
	Mailer      mailer.Mailer
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
	Config      AuthConfig
	Now         func() time.Time
}

// AuthService provides authentication use cases.
type AuthService struct {
	users       authUserRepository
	contractors contractorRegistrar
	identity    principalResolver
	blocklist   tokenBlocklist
	resetTokens resetTokenGenerator
	mailer      mailer.Mailer
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	config      AuthConfig
	now         func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(params AuthServiceParams) *AuthService {
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
	return &AuthService{
		users:       params.Users,
		contractors: params.Contractors,
		identity:    params.Identity,
		blocklist:   params.Blocklist,
		resetTokens: params.ResetTokens,
		mailer:      params.Mailer,
		metrics:     params.Metrics,
		validator:   validate,
		logger:      logger,
		config:      params.Config,
		now:         now,
	}
}

// Login authenticates a user by username and password and issues an access token.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid login payload")
	}

	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	// Inactive accounts are reported exactly like bad credentials.
	if !user.IsActive {
		return nil, appErrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return s.issue(ctx, user)
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *models.JWTClaims) error {
	if claims == nil || claims.ID == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "token has no identifier")
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.blocklist.Revoke(ctx, claims.ID, ttl); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke token")
	}
	return nil
}

// RegisterCitizen creates a citizen account and signs the new user in.
func (s *AuthService) RegisterCitizen(ctx context.Context, req dto.RegisterRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid registration payload")
	}
	user, err := s.newUser(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	s.logger.Info("citizen registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return s.issue(ctx, user)
}

// RegisterContractor creates a user with an unverified contractor profile in one transaction.
func (s *AuthService) RegisterContractor(ctx context.Context, req dto.ContractorRegisterRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid contractor registration payload")
	}
	user, err := s.newUser(ctx, req.RegisterRequest)
	if err != nil {
		return nil, err
	}
	contractor := &models.Contractor{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		CompanyName:    strings.TrimSpace(req.CompanyName),
		Phone:          strings.TrimSpace(req.Phone),
		Address:        strings.TrimSpace(req.Address),
		Specialization: strings.TrimSpace(req.Specialization),
		IsVerified:     false,
		CreatedAt:      user.DateJoined,
	}
	if err := s.contractors.CreateWithUser(ctx, user, contractor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create contractor")
	}
	s.logger.Info("contractor registered", zap.String("user_id", user.ID), zap.String("contractor_id", contractor.ID))
	return s.issue(ctx, user)
}

// ForgotPassword emails a reset link to every active account registered with the address.
func (s *AuthService) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.FromValidation(err, "invalid forgot password payload")
	}

	users, err := s.users.ListByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up email")
	}
	if len(users) == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "no user found with this email address")
	}

	var failed bool
	for i := range users {
		user := users[i]
		token := s.resetTokens.Make(resetSubject(&user))
		link := fmt.Sprintf("%s/%s/%s", s.config.ResetLinkBase, resettoken.EncodeUID(user.ID), token)
		msg := mailer.Message{
			To:      user.Email,
			Subject: "Password Reset Request",
			Body: fmt.Sprintf("Hello %s,\n\nYou requested a password reset. Use the link below to choose a new password:\n\n%s\n\nIf you did not request this, you can ignore this email.\n",
				user.Username, link),
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			failed = true
			s.metrics.RecordMailFailure()
			s.logger.Error("failed to send password reset email", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	if failed {
		return appErrors.ErrMailDelivery
	}
	return nil
}

// CheckResetLink validates a reset link and returns the user it belongs to.
func (s *AuthService) CheckResetLink(ctx context.Context, uid, token string) (*models.User, error) {
	userID, err := resettoken.DecodeUID(uid)
	if err != nil {
		return nil, appErrors.ErrInvalidResetLink
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidResetLink
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !s.resetTokens.Check(resetSubject(user), token) {
		return nil, appErrors.ErrInvalidResetLink
	}
	return user, nil
}

// ResetPassword sets a new password when the link is still valid. The new hash
// invalidates the link.
func (s *AuthService) ResetPassword(ctx context.Context, uid, token string, req dto.ResetPasswordRequest) error {
	user, err := s.CheckResetLink(ctx, uid, token)
	if err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.FromValidation(err, "invalid password reset payload")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrInvalidResetLink
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}
	s.logger.Info("password reset", zap.String("user_id", user.ID))
	return nil
}

// Authenticate validates a bearer token, rejects revoked tokens and resolves
// the caller from storage.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.Principal, *models.JWTClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, nil, err
	}
	if s.blocklist != nil && claims.ID != "" {
		revoked, err := s.blocklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("token blocklist lookup failed", zap.Error(err))
		} else if revoked {
			return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "token has been revoked")
		}
	}
	principal, err := s.identity.Resolve(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	return principal, claims, nil
}

// ValidateToken parses and validates an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	if !token.Valid || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	if s.config.Issuer != "" && claims.Issuer != s.config.Issuer {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token issuer")
	}
	return claims, nil
}

func (s *AuthService) newUser(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	exists, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if exists {
		return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrConflict, "username already taken"), "username", "already taken")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	return &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hash),
		IsActive:     true,
		DateJoined:   s.now().UTC(),
	}, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*models.LoginResponse, error) {
	principal, err := s.identity.Resolve(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	accessToken, issuedAt, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	return &models.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		User:        models.NewUserInfo(principal),
		IssuedAt:    issuedAt,
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, time.Time, error) {
	now := s.now().UTC()
	claims := models.JWTClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, now, nil
}

func resetSubject(user *models.User) resettoken.Subject {
	return resettoken.Subject{UserID: user.ID, PasswordHash: user.PasswordHash, LastLogin: user.LastLogin}
}
