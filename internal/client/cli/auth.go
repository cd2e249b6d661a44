package cli

import (
	"context"
	"fmt"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) askUsername(username string) (string, error) {
	if username != "" {
		return username, nil
	}
	return getSimpleText(a.reader, "Enter username", a.out)
}

// Login prompts for whatever is missing and authenticates. The password is
// wiped before returning.
func (a *App) Login(ctx context.Context, username string) error {
	username, err := a.askUsername(username)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer clear(password)

	if err := a.session.Login(ctx, username, string(password)); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", username)
	return nil
}

// Register creates an account and, with autoLogin, signs it in.
func (a *App) Register(ctx context.Context, username string, autoLogin bool) error {
	username, err := a.askUsername(username)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer clear(password)

	if err := a.session.Register(ctx, username, string(password), autoLogin); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	if autoLogin {
		fmt.Fprintf(a.out, "Logged in as %s\n", username)
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintln(a.out, a.session.Identity())
	return nil
}
