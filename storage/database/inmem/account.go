package inmemdb

import (
	"context"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/user"
)

type accountRepository struct {
	db *DB
}

var _ user.Repository = (*accountRepository)(nil)

func NewAccountRepository(db *DB) user.Repository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc user.Account) (user.Account, error) {
	defer repo.db.lock(ctx)()
	t := repo.db.t

	if acc.Email != "" {
		for _, a := range t.accounts {
			if a.Email == acc.Email {
				return user.Account{}, core.ErrDuplicate
			}
		}
	}
	acc.ID = t.nextID("accounts")
	t.accounts[acc.ID] = acc
	return acc, nil
}

func (repo *accountRepository) GetAccount(ctx context.Context, id int) (user.Account, error) {
	defer repo.db.lock(ctx)()
	if acc, ok := repo.db.t.accounts[id]; ok {
		return acc, nil
	}
	return user.Account{}, core.ErrNotFound
}

func (repo *accountRepository) GetAccountByEmail(ctx context.Context, email string) (user.Account, error) {
	defer repo.db.lock(ctx)()
	for _, acc := range repo.db.t.accounts {
		if email != "" && acc.Email == email {
			return acc, nil
		}
	}
	return user.Account{}, core.ErrNotFound
}

func (repo *accountRepository) UpdatePassword(ctx context.Context, id int, hash []byte) error {
	defer repo.db.lock(ctx)()
	acc, ok := repo.db.t.accounts[id]
	if !ok {
		return core.ErrNotFound
	}
	acc.PasswordHash = hash
	repo.db.t.accounts[id] = acc
	return nil
}
