package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/audiokeeper/internal/client/models"
	"github.com/dmitrijs2005/audiokeeper/internal/common"
)

// getSimpleText, getOptionalText and getPassword are indirections used to
// facilitate testing.
var (
	getSimpleText   = GetSimpleText
	getOptionalText = GetOptionalText
	getPassword     = GetPassword
)

// Register prompts for username, email, full name and password and creates
// the account. The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Enter full name (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Register(ctx, userName, email, fullName, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s (%s). You can now log in.\n", u.Username, u.ID)
	return nil
}

// Login prompts for credentials and starts a session.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, userName, password); err != nil {
		return err
	}

	a.userName = userName
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	u, err := a.authService.Me(ctx)
	if err != nil {
		return err
	}
	printUser(a, u)
	return nil
}

// Update asks for each editable field; empty answers leave it unchanged.
func (a *App) Update(ctx context.Context) error {
	var req models.UpdateRequest
	var err error

	if req.Username, err = getOptionalText(a.reader, "New username", a.out); err != nil {
		return err
	}
	if req.Email, err = getOptionalText(a.reader, "New email", a.out); err != nil {
		return err
	}
	if req.FullName, err = getOptionalText(a.reader, "New full name", a.out); err != nil {
		return err
	}

	if req.Username == nil && req.Email == nil && req.FullName == nil {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	u, err := a.authService.Update(ctx, req)
	if err != nil {
		return err
	}
	if req.Username != nil {
		a.userName = u.Username
	}
	printUser(a, u)
	return nil
}

// Delete removes the account after an explicit confirmation.
func (a *App) Delete(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Delete your account and all its files? Type 'yes' to confirm", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.authService.DeleteAccount(ctx); err != nil {
		return err
	}
	a.userName = ""
	fmt.Fprintln(a.out, "Account deleted")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.authService.Logout()
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func printUser(a *App, u models.User) {
	fmt.Fprintf(a.out, "id:        %s\n", u.ID)
	fmt.Fprintf(a.out, "username:  %s\n", u.Username)
	fmt.Fprintf(a.out, "email:     %s\n", u.Email)
	fmt.Fprintf(a.out, "full name: %s\n", u.FullName)
}
