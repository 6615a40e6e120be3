package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/veriauth/internal/common"
)

// maxBodyPrint bounds how much of a response "get" prints.
const maxBodyPrint = 4 << 10

// WhoAmI prints the signed-in user.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.sessions.User()
	if u == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	fmt.Fprintf(a.out, "Name:     %s\n", u.Name)
	fmt.Fprintf(a.out, "Email:    %s\n", u.Email)
	fmt.Fprintf(a.out, "Provider: %s\n", u.AuthProvider)
	fmt.Fprintf(a.out, "ID:       %s\n", u.ID)
	if exp := a.sessions.TokenExpiry(); !exp.IsZero() {
		status := ""
		if errors.Is(a.sessions.CheckToken(time.Now()), common.ErrTokenExpired) {
			status = " (expired)"
		}
		fmt.Fprintf(a.out, "Token expires: %s%s\n", exp.Local().Format(time.RFC1123), status)
	}
	return nil
}

// Token prints the stored credential as it is sent in the Authorization
// header.
func (a *App) Token(ctx context.Context) error {
	token := a.sessions.AuthToken()
	if token == "" {
		fmt.Fprintln(a.out, "No token")
		return nil
	}
	fmt.Fprintln(a.out, token)
	return nil
}

// Get performs an authenticated GET against the backend and prints the
// status and the start of the body.
func (a *App) Get(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: get <path>")
		return nil
	}

	path := args[0]
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.api.Endpoint(path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.authHTTP.Do(req)
	if err != nil {
		fmt.Fprintln(a.out, "Request failed:", err)
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyPrint))
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, resp.Status)
	if len(body) > 0 {
		fmt.Fprintln(a.out, string(body))
	}
	return nil
}

// Ping checks the configured gRPC backend over an authenticated channel.
func (a *App) Ping(ctx context.Context) error {
	if a.health == nil {
		fmt.Fprintln(a.out, "No gRPC address configured (use -g)")
		return nil
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.health.Ping(ctx); err != nil {
		fmt.Fprintln(a.out, "Server unavailable:", err)
		return err
	}
	fmt.Fprintln(a.out, "Server is serving")
	return nil
}

// requestContext bounds ctx by the configured request timeout. A zero
// timeout means no client-side limit.
func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
