package repository

import (
	"context"

	"dms/internal/model"
)

// NotificationRepository defines data access for notifications.
type NotificationRepository interface {
	// Create inserts a notification row.
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)

	// ListByUserID returns the user's most recent notifications, newest first.
	ListByUserID(ctx context.Context, userID string, limit int) ([]model.Notification, error)

	// MarkRead sets the read flag on a notification; sql.ErrNoRows if absent.
	MarkRead(ctx context.Context, id string) error

	// Delete removes a notification by ID. Nil if the row did not exist.
	Delete(ctx context.Context, id string) error
}

// UserRepository resolves user references. The core never creates or mutates
// users; that is the identity directory's job.
type UserRepository interface {
	// FindByID returns a user by ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// List returns all known users.
	List(ctx context.Context) ([]model.User, error)
}
