package main

import (
	"context"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	var isNew bool
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: []string{uname, email}})
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		isNew = true
		usr = user.User{
			Username: uname,
			Email:    email,
		}
	}
	if isAdmin {
		usr.Roles = user.AllRoles
	}
	active := true
	usr.IsActive = &active
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if isNew {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	return err
}
