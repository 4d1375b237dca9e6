package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	"github.com/noah-isme/roadsafety-api/internal/models"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
)

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
}

// NotificationService records and lists pull-delivered notifications.
type NotificationService struct {
	repo    notificationStore
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(repo notificationStore, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, metrics: metrics, logger: logger, now: time.Now}
}

// Notify stores a notification. Failures are logged and never returned.
func (s *NotificationService) Notify(ctx context.Context, userID string, typ models.NotificationType, title, message string, complaintID *string) {
	n := &models.Notification{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        typ,
		Title:       title,
		Message:     message,
		ComplaintID: complaintID,
		CreatedAt:   s.now().UTC(),
	}
	// The triggering mutation has already committed; a cancelled request must not drop the row.
	if err := s.repo.Create(context.WithoutCancel(ctx), n); err != nil {
		s.metrics.RecordNotificationFailure()
		s.logger.Warn("failed to store notification",
			zap.String("user_id", userID),
			zap.String("type", string(typ)),
			zap.Error(err),
		)
	}
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, principal *models.Principal, unreadOnly bool) (*dto.NotificationList, error) {
	items, err := s.repo.ListByUser(ctx, principal.User.ID, unreadOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	unread, err := s.UnreadCount(ctx, principal.User.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Notification{}
	}
	return &dto.NotificationList{Notifications: items, Unread: unread}, nil
}

// UnreadCount returns how many notifications the user has not read.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	return n, nil
}

// MarkRead flags one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, principal *models.Principal, id string) error {
	if err := s.repo.MarkRead(ctx, id, principal.User.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notification")
	}
	return nil
}
