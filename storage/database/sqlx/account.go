package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/auth"
	"github.com/Chhotu7079/UniCore/core/user"
)

type accountRow struct {
	ID           int         `db:"id"`
	Name         string      `db:"name"`
	Email        null.String `db:"email"`
	Role         int         `db:"role"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
}

func (r accountRow) account() user.Account {
	return user.Account{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email.String,
		Role:         auth.Role(r.Role),
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

const accountColumns = "id, name, email, role, password_hash, created_at"

type accountRepository struct {
	repository
}

var _ user.Repository = (*accountRepository)(nil)

func NewAccountRepository(db *sqlx.DB) user.Repository {
	return &accountRepository{repository{db: db}}
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc user.Account) (user.Account, error) {
	email := null.NewString(acc.Email, acc.Email != "")
	err := repo.conn(ctx).QueryRowxContext(ctx,
		`INSERT INTO accounts (name, email, role, password_hash, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		acc.Name, email, int(acc.Role), acc.PasswordHash, acc.CreatedAt,
	).Scan(&acc.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return user.Account{}, core.ErrDuplicate
		}
		return user.Account{}, errors.Wrap(err, "inserting account")
	}
	return acc, nil
}

func (repo *accountRepository) get(ctx context.Context, where string, arg interface{}) (user.Account, error) {
	var row accountRow
	if err := repo.conn(ctx).GetContext(ctx, &row, "SELECT "+accountColumns+" FROM accounts WHERE "+where, arg); err != nil {
		if err == sql.ErrNoRows {
			return user.Account{}, core.ErrNotFound
		}
		return user.Account{}, errors.Wrap(err, "selecting account")
	}
	return row.account(), nil
}

func (repo *accountRepository) GetAccount(ctx context.Context, id int) (user.Account, error) {
	return repo.get(ctx, "id = $1", id)
}

func (repo *accountRepository) GetAccountByEmail(ctx context.Context, email string) (user.Account, error) {
	return repo.get(ctx, "email = $1", email)
}

func (repo *accountRepository) UpdatePassword(ctx context.Context, id int, hash []byte) error {
	res, err := repo.conn(ctx).ExecContext(ctx, `UPDATE accounts SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting updated accounts")
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
