package dto

import "github.com/noah-isme/roadsafety-api/internal/models"

// NotificationList is the caller's notifications with the unread count.
type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}
