package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/veriauth/internal/client/client"
	"github.com/dmitrijs2005/veriauth/internal/client/config"
	"github.com/dmitrijs2005/veriauth/internal/client/models"
	"github.com/dmitrijs2005/veriauth/internal/client/providers"
	"github.com/dmitrijs2005/veriauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/veriauth/internal/client/services"
	"github.com/dmitrijs2005/veriauth/internal/logging"
)

// pinger checks that the gRPC server is up.
type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

// backend is the API surface the App needs beyond client.Client.
type backend interface {
	client.Client
	Endpoint(path string) string
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    metadata.Store
	api      backend
	sessions *services.SessionStore
	flow     *services.LoginFlow
	authHTTP *http.Client
	health   pinger

	route  string
	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the session storage and builds the services behind the CLI.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	store, err := metadata.Open(ctx, c.StorageBackend, c.StorageDSN)
	if err != nil {
		return nil, fmt.Errorf("open session storage: %w", err)
	}

	api, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	google := providers.NewGoogleProvider(providers.GoogleConfig{
		ClientID:     c.GoogleClientID,
		ClientSecret: c.GoogleClientSecret,
		IssuerURL:    c.GoogleIssuerURL,
		RedirectAddr: c.GoogleRedirectAddr,
	}, os.Stdout, logger)

	a := newApp(c, logger, store, api, os.Stdin, os.Stdout)
	a.sessions.RegisterResolver(models.ProviderGoogle, services.ProviderResolver(google))

	if c.GRPCAddr != "" {
		health, err := client.NewHealthClient(c.GRPCAddr, a.sessions, api)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("grpc health client: %w", err)
		}
		a.health = health
	}
	return a, nil
}

// newApp wires the services over already-open dependencies.
func newApp(c *config.Config, logger logging.Logger, store metadata.Store, api backend, in io.Reader, out io.Writer) *App {
	sessions := services.NewSessionStore(store, logger)
	sessions.RegisterResolver(models.ProviderEmail, services.EmailResolver(api))

	a := &App{
		config:   c,
		logger:   logger,
		store:    store,
		api:      api,
		sessions: sessions,
		reader:   bufio.NewReader(in),
		out:      out,
	}
	a.flow = services.NewLoginFlow(sessions, api, a, logger)

	a.authHTTP = client.NewAuthorizedHTTPClient(sessions, api)
	a.authHTTP.Timeout = c.RequestTimeout
	return a
}

// Navigate implements services.Navigator.
func (a *App) Navigate(route string) {
	a.route = route
	if route == services.RouteHome {
		if u := a.sessions.User(); u != nil {
			fmt.Fprintf(a.out, "Welcome, %s!\n", displayName(u))
		}
	}
}

// Run restores the saved session and blocks in the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if err := a.sessions.Restore(ctx); err != nil {
		a.logger.Warn(ctx, "could not restore session", "error", err)
	}

	fmt.Fprintln(a.out, "Welcome to VeriEarth CLI (type 'help' for commands)")
	if u := a.sessions.User(); u != nil {
		fmt.Fprintf(a.out, "Signed in as %s\n", u.Email)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() error {
	var errs []error
	if a.health != nil {
		errs = append(errs, a.health.Close())
	}
	errs = append(errs, a.api.Close(), a.store.Close())
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.sessions.IsAuthenticated()
}

func (a *App) getStatus() string {
	if a.sessions.Loading() {
		return "(signing in...)"
	}
	if u := a.sessions.User(); u != nil {
		return fmt.Sprintf("(%s)", u.Email)
	}
	return "(guest)"
}

func displayName(u *models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
