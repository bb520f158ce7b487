package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/auth"
)

var NowFunc = time.Now

type (
	Repository interface {
		// CreateAccount fails with core.ErrDuplicate when the email is taken.
		CreateAccount(ctx context.Context, acc Account) (Account, error)
		GetAccount(ctx context.Context, id int) (Account, error)
		GetAccountByEmail(ctx context.Context, email string) (Account, error)
		// UpdatePassword fails with core.ErrNotFound when the account does not exist.
		UpdatePassword(ctx context.Context, id int, hash []byte) error
	}

	// Finder resolves accounts by id.
	Finder interface {
		GetAccount(ctx context.Context, id int) (Account, error)
	}

	Service struct {
		repo Repository
	}
)

var _ Finder = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, na NewAccount) (Account, error) {
	if err := na.Validate(); err != nil {
		return Account{}, err
	}
	role, err := auth.ParseRole(na.Role)
	if err != nil {
		return Account{}, core.NewValidationError(nil, core.FieldError{Field: "role", Error: err.Error()})
	}

	acc := Account{
		Name:      na.Name,
		Email:     na.Email,
		Role:      role,
		CreatedAt: NowFunc().UTC(),
	}
	if err = acc.SetPassword(na.Password); err != nil {
		return Account{}, errors.Wrap(err, "setting password")
	}

	acc, err = svc.repo.CreateAccount(ctx, acc)
	if err != nil {
		if err == core.ErrDuplicate {
			return Account{}, core.NewValidationError(nil, core.FieldError{Field: "email", Error: "an account with this email already exists"})
		}
		return Account{}, errors.Wrap(err, "creating account")
	}
	return acc, nil
}

func (svc *Service) GetAccount(ctx context.Context, id int) (Account, error) {
	return svc.repo.GetAccount(ctx, id)
}

// Authenticate returns the account matching the credentials.
// Unknown emails and wrong passwords both fail with core.ErrNotAuthenticated.
func (svc *Service) Authenticate(ctx context.Context, lr LoginRequest) (Account, error) {
	if err := lr.Validate(); err != nil {
		return Account{}, err
	}
	acc, err := svc.repo.GetAccountByEmail(ctx, lr.Email)
	if err != nil {
		if err == core.ErrNotFound {
			return Account{}, core.ErrNotAuthenticated
		}
		return Account{}, errors.Wrap(err, "getting account")
	}
	if err = acc.CheckPassword(lr.Password); err != nil {
		return Account{}, core.ErrNotAuthenticated
	}
	return acc, nil
}

// ResetPassword replaces the password of the account registered under email.
func (svc *Service) ResetPassword(ctx context.Context, email, pwd string) error {
	email = core.CleanString(email, true /* lower */)
	if pwd == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "password", Error: "this field is required"})
	}
	acc, err := svc.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = acc.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}
	return svc.repo.UpdatePassword(ctx, acc.ID, acc.PasswordHash)
}
