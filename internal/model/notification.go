package model

import "time"

// NotificationType enumerates the kinds of notifications the system emits.
type NotificationType string

const (
	NotificationDocumentUpdate NotificationType = "document_update"
	NotificationNewVersion     NotificationType = "new_version"
	NotificationAdminAction    NotificationType = "admin_action"
)

// Notification is a message addressed to a single user. DocumentID is a weak
// reference: deleting a document does not delete its historical
// notifications, so readers must tolerate a dangling id.
type Notification struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Type       NotificationType `json:"type"`
	DocumentID string           `json:"document_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	IsRead     bool             `json:"is_read"`
}
