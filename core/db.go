package core

import "context"

// Transactor runs fn inside a single storage transaction.
// Repositories called with the ctx passed to fn take part in that transaction;
// if fn returns an error, every write it made is rolled back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
