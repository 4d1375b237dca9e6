package models

import "time"

// NotificationType categorises notifications.
type NotificationType string

const (
	NotificationComplaintStatus NotificationType = "complaint_status"
	NotificationAssignment      NotificationType = "assignment"
	NotificationVerification    NotificationType = "verification"
	NotificationCompletion      NotificationType = "completion"
)

// Notification is a pull-delivered message for one user. Only IsRead changes after creation.
type Notification struct {
	ID          string           `db:"id" json:"id"`
	UserID      string           `db:"user_id" json:"user_id"`
	Type        NotificationType `db:"notification_type" json:"notification_type"`
	Title       string           `db:"title" json:"title"`
	Message     string           `db:"message" json:"message"`
	ComplaintID *string          `db:"complaint_id" json:"complaint_id,omitempty"`
	IsRead      bool             `db:"is_read" json:"is_read"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}
