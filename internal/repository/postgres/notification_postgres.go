package postgres

import (
	"context"
	"database/sql"

	"dms/internal/model"
	"dms/internal/repository"
)

// NotificationPostgres is a PostgreSQL implementation of repository.NotificationRepository.
// document_id is a plain nullable column, not a foreign key: notifications
// outlive the documents they reference.
type NotificationPostgres struct {
	db *sql.DB
}

// NewNotificationPostgres creates a new NotificationPostgres repository.
func NewNotificationPostgres(db *sql.DB) *NotificationPostgres {
	return &NotificationPostgres{db: db}
}

var _ repository.NotificationRepository = (*NotificationPostgres)(nil)

const notificationColumns = `id, user_id, title, message, type, document_id, created_at, is_read`

// Create inserts a notification row.
func (r *NotificationPostgres) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	const q = `
		INSERT INTO notifications (id, user_id, title, message, type, document_id, created_at, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + notificationColumns
	var docID any
	if n.DocumentID != "" {
		docID = n.DocumentID
	}
	row := r.db.QueryRowContext(ctx, q,
		n.ID,
		n.UserID,
		n.Title,
		n.Message,
		string(n.Type),
		docID,
		n.CreatedAt,
		n.IsRead,
	)
	return scanNotification(row)
}

// ListByUserID returns the user's notifications, newest first.
func (r *NotificationPostgres) ListByUserID(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	const q = `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkRead sets the read flag. Returns sql.ErrNoRows if the row is absent.
func (r *NotificationPostgres) MarkRead(ctx context.Context, id string) error {
	const q = `UPDATE notifications SET is_read = TRUE WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a notification by ID. Nil if the row did not exist.
func (r *NotificationPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM notifications WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func scanNotification(row rowScanner) (*model.Notification, error) {
	var (
		n     model.Notification
		typ   string
		docID sql.NullString
	)
	if err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Title,
		&n.Message,
		&typ,
		&docID,
		&n.CreatedAt,
		&n.IsRead,
	); err != nil {
		return nil, err
	}
	n.Type = model.NotificationType(typ)
	n.DocumentID = docID.String
	return &n, nil
}
