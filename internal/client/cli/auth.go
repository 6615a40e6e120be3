package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/veriauth/internal/client/models"
	"github.com/dmitrijs2005/veriauth/internal/client/services"
	"github.com/dmitrijs2005/veriauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login signs the user in. With no argument it asks for email and password;
// "login google" runs the Google flow. Failures print one message line.
func (a *App) Login(ctx context.Context, args []string) error {
	provider := models.ProviderEmail
	if len(args) > 0 {
		p, err := models.ParseAuthProvider(args[0])
		if err != nil {
			fmt.Fprintln(a.out, "Usage: login [email|google|phone]")
			return err
		}
		provider = p
	}

	var err error
	if provider == models.ProviderEmail {
		err = a.loginWithEmail(ctx)
	} else {
		err = a.flow.LoginWithProvider(ctx, provider)
	}

	if err != nil {
		a.logger.Warn(ctx, "login failed", "provider", provider, "error", err)
		fmt.Fprintln(a.out, services.ErrorMessage(provider, err))
		return err
	}
	return nil
}

func (a *App) loginWithEmail(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.flow.LoginWithEmail(ctx, email, string(password))
}

// Register prompts for an email, a full name and a password and creates a
// backend account. The server's message is printed on success.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	msg, err := a.flow.Register(ctx, email, fullName, string(password))
	if err != nil {
		fmt.Fprintln(a.out, "Registration failed:", err)
		return err
	}

	fmt.Fprintln(a.out, msg)
	return nil
}

// Verify confirms an email address with the token from the verification mail.
func (a *App) Verify(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: verify <token>")
		return nil
	}

	msg, err := a.flow.VerifyEmail(ctx, args[0])
	if err != nil {
		fmt.Fprintln(a.out, "Verification failed:", err)
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// Logout clears the session from memory and storage.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, "Logout failed:", err)
		return err
	}
	a.route = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
