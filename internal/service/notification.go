package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dms/internal/model"
	"dms/internal/repository"
)

// defaultNotificationCount bounds ListForUser when the caller passes no limit.
const defaultNotificationCount = 20

// NotificationService creates and manages user notifications. Notify is
// fire-and-forget: a delivery failure is logged, never returned, so callers
// in the document path cannot fail because of it.
type NotificationService interface {
	Notifier
	ListForUser(ctx context.Context, userID string, count int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService constructs a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) Notify(ctx context.Context, userID, title, message string, typ model.NotificationType, documentID string) {
	n := &model.Notification{
		ID:         uuid.New().String(),
		UserID:     userID,
		Title:      title,
		Message:    message,
		Type:       typ,
		DocumentID: documentID,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.repo.Create(ctx, n); err != nil {
		logEvent("warn", "notification_create_failed", map[string]any{
			"user_id":     userID,
			"type":        string(typ),
			"document_id": documentID,
			"error":       err.Error(),
		})
	}
}

func (s *notificationService) ListForUser(ctx context.Context, userID string, count int) ([]model.Notification, error) {
	if count < 1 {
		count = defaultNotificationCount
	}
	return s.repo.ListByUserID(ctx, userID, count)
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	return mapNoRows(s.repo.MarkRead(ctx, id), "notification", id)
}

func (s *notificationService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
