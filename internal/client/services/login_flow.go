package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/veriauth/internal/client/client"
	"github.com/dmitrijs2005/veriauth/internal/client/models"
	"github.com/dmitrijs2005/veriauth/internal/logging"
	"github.com/go-playground/validator/v10"
)

// RouteHome is where a successful login navigates to.
const RouteHome = "/"

const (
	msgLoginFailed      = "Login failed"
	msgLoginFailedRetry = "Login failed. Please try again."
)

// Navigator moves the user interface to a route.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// LoginFlow drives the sign-in screen: it validates what the user typed,
// hands it to the session store and navigates home on success.
type LoginFlow struct {
	sessions *SessionStore
	api      client.Client
	nav      Navigator
	validate *validator.Validate
	logger   logging.Logger
}

func NewLoginFlow(sessions *SessionStore, api client.Client, nav Navigator, logger logging.Logger) *LoginFlow {
	return &LoginFlow{
		sessions: sessions,
		api:      api,
		nav:      nav,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// LoginWithEmail posts the credentials to the backend and, on success,
// stores the returned token with the signed-in user.
func (f *LoginFlow) LoginWithEmail(ctx context.Context, email, password string) error {
	creds := models.Credentials{Email: email, Password: password}
	if err := f.validate.Struct(creds); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, describeValidation(err))
	}

	if err := f.sessions.Login(ctx, models.ProviderEmail, &creds); err != nil {
		return err
	}

	f.nav.Navigate(RouteHome)
	return nil
}

// LoginWithProvider runs the provider's own sign-in flow.
func (f *LoginFlow) LoginWithProvider(ctx context.Context, provider models.AuthProvider) error {
	if provider == models.ProviderEmail {
		return fmt.Errorf("%w: email sign-in needs a password", ErrInvalidCredentials)
	}
	if err := f.sessions.Login(ctx, provider, nil); err != nil {
		return err
	}

	f.nav.Navigate(RouteHome)
	return nil
}

// Register creates a backend account and returns the server's message.
func (f *LoginFlow) Register(ctx context.Context, email, fullName, password string) (string, error) {
	if err := f.validate.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("%w: a valid email is required", ErrInvalidCredentials)
	}
	if err := f.validate.Var(password, "required,min=8"); err != nil {
		return "", fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidCredentials)
	}

	msg, err := f.api.Register(ctx, email, fullName, password)
	if err != nil {
		f.logger.Warn(ctx, "registration failed", "email", email, "error", err)
		return "", err
	}
	f.logger.Info(ctx, "registered", "email", email)
	return msg, nil
}

// VerifyEmail confirms a registration with the mailed token.
func (f *LoginFlow) VerifyEmail(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: verification token is required", ErrInvalidCredentials)
	}
	return f.api.VerifyEmail(ctx, token)
}

// ErrorMessage renders a login error as the one line shown to the user.
// Provider sign-in failures always read the same; email sign-in failures
// show the server's detail when there is one.
func ErrorMessage(provider models.AuthProvider, err error) string {
	if err == nil {
		return ""
	}
	if provider != models.ProviderEmail {
		return msgLoginFailedRetry
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return msgLoginFailed
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return msgLoginFailedRetry
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	switch fe := verrs[0]; fe.Field() {
	case "Email":
		return "a valid email is required"
	case "Password":
		return "password is required"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
