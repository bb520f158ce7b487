package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core/notification"
)

type notificationRow struct {
	ID        int       `db:"id"`
	UserID    int       `db:"user_id"`
	Message   string    `db:"message"`
	Read      bool      `db:"read"`
	CreatedAt time.Time `db:"created_at"`
}

type notificationRepository struct {
	repository
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notificationRepository{repository{db: db}}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	err := repo.conn(ctx).QueryRowxContext(ctx,
		`INSERT INTO notifications (user_id, message, read, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		n.UserID, n.Message, n.Read, n.CreatedAt,
	).Scan(&n.ID)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}

func (repo *notificationRepository) ListByUser(ctx context.Context, userID int, unreadOnly bool) ([]notification.Notification, error) {
	query := `SELECT id, user_id, message, read, created_at FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows := make([]notificationRow, 0)
	if err := repo.conn(ctx).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "selecting notifications")
	}
	ns := make([]notification.Notification, 0, len(rows))
	for _, r := range rows {
		ns = append(ns, notification.Notification{
			ID:        r.ID,
			UserID:    r.UserID,
			Message:   r.Message,
			Read:      r.Read,
			CreatedAt: r.CreatedAt.UTC(),
		})
	}
	return ns, nil
}

func (repo *notificationRepository) MarkRead(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	ids64 := make([]int64, len(ids))
	for i, id := range ids {
		ids64[i] = int64(id)
	}
	_, err := repo.conn(ctx).ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE id = ANY($1)`, pq.Array(ids64))
	if err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return nil
}
