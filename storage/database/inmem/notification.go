package inmemdb

import (
	"context"
	"sort"

	"github.com/Chhotu7079/UniCore/core/notification"
)

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	defer repo.db.lock(ctx)()
	t := repo.db.t
	n.ID = t.nextID("notifications")
	t.notifications[n.ID] = n
	return n, nil
}

func (repo *notificationRepository) ListByUser(ctx context.Context, userID int, unreadOnly bool) ([]notification.Notification, error) {
	defer repo.db.lock(ctx)()
	ns := make([]notification.Notification, 0)
	for _, n := range repo.db.t.notifications {
		if n.UserID == userID && !(unreadOnly && n.Read) {
			ns = append(ns, n)
		}
	}
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].CreatedAt.Equal(ns[j].CreatedAt) {
			return ns[i].ID > ns[j].ID
		}
		return ns[i].CreatedAt.After(ns[j].CreatedAt)
	})
	return ns, nil
}

func (repo *notificationRepository) MarkRead(ctx context.Context, ids ...int) error {
	defer repo.db.lock(ctx)()
	for _, id := range ids {
		if n, ok := repo.db.t.notifications[id]; ok {
			n.Read = true
			repo.db.t.notifications[id] = n
		}
	}
	return nil
}
