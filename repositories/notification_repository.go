package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, notification *models.Notification) error
	BatchCreate(ctx context.Context, exec SQLExecutor, notifications []*models.Notification) error
	ListByUser(ctx context.Context, userID int, unreadOnly bool, limit int) ([]*models.Notification, error)
}

type postgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresNotificationRepository) Create(ctx context.Context, exec SQLExecutor, n *models.Notification) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO notifications (user_id, type, title, body, data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, read, created_at`
	data := n.Data
	if len(data) == 0 {
		data = []byte("{}")
	}
	return executor.QueryRowContext(ctx, query,
		n.UserID, n.Type, n.Title, n.Body, data,
	).Scan(&n.ID, &n.Read, &n.CreatedAt)
}

func (r *postgresNotificationRepository) BatchCreate(ctx context.Context, exec SQLExecutor, notifications []*models.Notification) error {
	for _, n := range notifications {
		if err := r.Create(ctx, exec, n); err != nil {
			return fmt.Errorf("BatchCreate failed for user %d type %s: %w", n.UserID, n.Type, err)
		}
	}
	return nil
}

func (r *postgresNotificationRepository) ListByUser(ctx context.Context, userID int, unreadOnly bool, limit int) ([]*models.Notification, error) {
	query := `
		SELECT id, user_id, type, title, body, data, read, created_at
		FROM notifications
		WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*models.Notification, 0)
	for rows.Next() {
		n := &models.Notification{}
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Data, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
