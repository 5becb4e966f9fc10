package cli

import (
	"context"

	"github.com/dmitrijs2005/bakerykit/internal/client/services"
	"github.com/dmitrijs2005/bakerykit/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// prompt collects one line per label. It stops at the first read error.
func (a *App) prompt(labels ...string) ([]string, error) {
	values := make([]string, 0, len(labels))
	for _, l := range labels {
		v, err := getSimpleText(a.reader, l, a.out)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// secret reads a password through getPassword and returns it as a string.
// The byte buffer is wiped before returning.
func (a *App) secret(label string) (string, error) {
	pw, err := getPassword(a.reader, label, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

func (a *App) Register(ctx context.Context) error {
	v, err := a.prompt("Enter first name", "Enter last name", "Enter email")
	if err != nil {
		return err
	}
	pw, err := a.secret("Enter password")
	if err != nil {
		return err
	}
	confirm, err := a.secret("Confirm password")
	if err != nil {
		return err
	}

	err = a.session.Register(ctx, services.RegisterInput{
		FirstName:       v[0],
		LastName:        v[1],
		Email:           v[2],
		Password:        pw,
		ConfirmPassword: confirm,
	})
	if err != nil {
		a.report(err)
		return err
	}

	a.println("Registration successful. You can log in now.")
	return nil
}

// Login signs in with email and password. When the account has a second
// factor the code is asked for right away; a failed code can be retried
// with the verify command.
func (a *App) Login(ctx context.Context) error {
	v, err := a.prompt("Enter email")
	if err != nil {
		return err
	}
	pw, err := a.secret("Enter password")
	if err != nil {
		return err
	}

	res, err := a.session.Login(ctx, v[0], pw)
	if err != nil {
		a.report(err)
		return err
	}

	if res.TwoFactorRequired {
		a.println("Two-factor verification required.")
		return a.Verify(ctx)
	}

	a.printf("Welcome! Opening %s.\n", a.router.Focus(ctx))
	return nil
}

func (a *App) Verify(ctx context.Context) error {
	v, err := a.prompt("Enter verification code")
	if err != nil {
		return err
	}

	wasPending := !a.isLoggedIn()
	if _, err := a.twoFactor.Verify(ctx, v[0]); err != nil {
		a.report(err)
		return err
	}

	if wasPending {
		a.printf("Welcome! Opening %s.\n", a.router.Focus(ctx))
	} else {
		a.println("Two-factor authentication confirmed.")
	}
	return nil
}

func (a *App) Forgot(ctx context.Context) error {
	v, err := a.prompt("Enter email")
	if err != nil {
		return err
	}

	msg, err := a.recovery.RequestCode(ctx, v[0])
	if err != nil {
		a.report(err)
		return err
	}

	a.println(msg)
	return a.Reset(ctx)
}

// Reset completes a recovery started by Forgot. Run on its own it asks for
// the email as well.
func (a *App) Reset(ctx context.Context) error {
	var email string
	if t, ok := a.recovery.Ticket(); ok && t.Email != "" {
		email = t.Email
	} else {
		v, err := a.prompt("Enter email")
		if err != nil {
			return err
		}
		email = v[0]
	}

	v, err := a.prompt("Enter the code from the email")
	if err != nil {
		return err
	}
	if err := a.recovery.SubmitCode(v[0]); err != nil {
		a.report(err)
		return err
	}

	pw, err := a.secret("Enter new password")
	if err != nil {
		return err
	}
	confirm, err := a.secret("Confirm new password")
	if err != nil {
		return err
	}

	if err := a.recovery.ResetPassword(ctx, email, v[0], pw, confirm); err != nil {
		a.report(err)
		return err
	}

	a.println("Password updated. You can log in now.")
	return nil
}

func (a *App) SetPassword(ctx context.Context) error {
	rec, err := a.session.Current(ctx)
	if err != nil {
		return err
	}

	v, err := a.prompt("Enter phone")
	if err != nil {
		return err
	}
	pw, err := a.secret("Enter new password")
	if err != nil {
		return err
	}
	confirm, err := a.secret("Confirm new password")
	if err != nil {
		return err
	}

	_, dest, err := a.session.SetPassword(ctx, rec.UserID, v[0], pw, confirm)
	if err != nil {
		a.report(err)
		return err
	}

	a.printf("Password set. Opening %s.\n", dest)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	a.println("Logged out.")
	return nil
}
