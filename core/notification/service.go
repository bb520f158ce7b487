package notification

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/auth"
	"github.com/Chhotu7079/UniCore/core/policy"
	"github.com/Chhotu7079/UniCore/core/user"
)

var NowFunc = time.Now

const emailSubject = "You have a new notification"

type (
	Notification struct {
		ID        int       `json:"id"`
		UserID    int       `json:"user_id"`
		Message   string    `json:"message"`
		Read      bool      `json:"read"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		// ListByUser returns the notifications of a user, newest first.
		ListByUser(ctx context.Context, userID int, unreadOnly bool) ([]Notification, error)
		MarkRead(ctx context.Context, ids ...int) error
	}

	Service struct {
		repo     Repository
		accounts user.Finder
		mailer   core.EmailService
		guard    policy.Guard
		log      core.Logger
	}
)

var _ core.Notifier = (*Service)(nil)

func NewService(repo Repository, accounts user.Finder, mailer core.EmailService, log core.Logger) *Service {
	return &Service{repo: repo, accounts: accounts, mailer: mailer, guard: policy.NewGuard(log), log: log}
}

// Notify stores the message for the user and emails it when the account has an address.
func (svc *Service) Notify(ctx context.Context, userID int, message string) error {
	n := Notification{UserID: userID, Message: message, CreatedAt: NowFunc().UTC()}
	if _, err := svc.repo.CreateNotification(ctx, n); err != nil {
		return errors.Wrap(err, "creating notification")
	}

	acc, err := svc.accounts.GetAccount(ctx, userID)
	if err != nil {
		svc.log.Warn("notification stored but not emailed", err, map[string]interface{}{"user_id": userID})
		return nil
	}
	if acc.Email != "" {
		svc.mailer.SendMessages(&core.EmailMessage{
			To:          []mail.Address{{Name: acc.Name, Address: acc.Email}},
			Subject:     emailSubject,
			TextContent: message,
		})
	}
	return nil
}

// List returns the notifications of userID, newest first, and marks them read.
func (svc *Service) List(ctx context.Context, p auth.Principal, userID int, unreadOnly bool) ([]Notification, error) {
	if err := svc.guard.Authorize(p, policy.ReadNotifications, policy.Resource{UserID: userID}); err != nil {
		return nil, err
	}

	ns, err := svc.repo.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, errors.Wrap(err, "listing notifications")
	}
	unread := make([]int, 0, len(ns))
	for _, n := range ns {
		if !n.Read {
			unread = append(unread, n.ID)
		}
	}
	if len(unread) > 0 {
		if err = svc.repo.MarkRead(ctx, unread...); err != nil {
			return nil, errors.Wrap(err, "marking notifications read")
		}
	}
	return ns, nil
}
