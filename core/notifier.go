package core

import "context"

// Notifier delivers a human-readable message to a user.
type Notifier interface {
	Notify(ctx context.Context, userID int, message string) error
}
