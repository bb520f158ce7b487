package main

import (
	"context"

	"github.com/Chhotu7079/UniCore/core/user"
)

func (cli *commandLine) addUser(name, email, role, pwd string) error {
	_, err := cli.usrSvc.Create(context.Background(), user.NewAccount{
		Name:            name,
		Email:           email,
		Role:            role,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	return err
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	return cli.usrSvc.ResetPassword(context.Background(), email, pwd)
}
