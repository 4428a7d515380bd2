package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/client/services"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) readCredentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// Register prompts for an email and password and creates an account. The
// account is created locally when the server cannot be reached.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.authService.Register(ctx, email, string(password))
	if err != nil {
		a.printFailure(err)
		return err
	}

	fmt.Fprintf(a.out, "%s [%s]\n", res.Message, res.Source)
	return nil
}

// Login prompts for credentials and authenticates, online or offline.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.authService.Login(ctx, email, string(password))
	if err != nil {
		a.printFailure(err)
		return err
	}

	fmt.Fprintf(a.out, "%s [%s]\n", res.Message, res.Source)
	return nil
}

// Logout ends the current session. Local accounts are kept.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		a.printFailure(err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out successfully")
	return nil
}

func (a *App) printFailure(err error) {
	switch {
	case errors.Is(err, services.ErrLocalStorage):
		fmt.Fprintln(a.out, "Operation failed. Please try again.")
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
}
