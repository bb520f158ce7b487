// Package sqlxrepos implements the domain repositories on postgres with sqlx.
// Every repository runs on the transaction carried by ctx when there is one.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/storage/database"
)

const uniqueViolation = "23505"

type repository struct {
	db *sqlx.DB
}

func (repo repository) conn(ctx context.Context) database.Executor {
	return database.Conn(ctx, repo.db)
}

func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == uniqueViolation
}

// resetSequence moves the serial of table past rows inserted with an explicit id.
func resetSequence(ctx context.Context, db database.Executor, table string) error {
	_, err := db.ExecContext(ctx,
		"SELECT setval(pg_get_serial_sequence($1, 'id'), GREATEST((SELECT MAX(id) FROM "+pq.QuoteIdentifier(table)+"), 1))",
		table,
	)
	return err
}

// affectedOne turns the result of a single-row UPDATE or DELETE into core.ErrNotFound
// when no row matched.
func affectedOne(res sql.Result, err error, msg string) error {
	if err != nil {
		return errors.Wrap(err, msg)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func int64s(ns []int) []int64 {
	out := make([]int64, len(ns))
	for i, n := range ns {
		out[i] = int64(n)
	}
	return out
}
