package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/veriauth/internal/flagx"
)

var knownFlags = []string{
	"-s", "-b", "-d", "-t", "-g", "-l", "-f",
	"-google-client-id", "-google-client-secret", "-google-issuer", "-google-redirect",
}

// parseFlags populates Config fields from command-line flags. Only the flags
// listed in knownFlags are parsed; -c, -config and -env are handled by the
// earlier stages.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("veriauth", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "backend base URL")
	fs.StringVar(&cfg.StorageBackend, "b", cfg.StorageBackend, "storage backend")
	fs.StringVar(&cfg.StorageDSN, "d", cfg.StorageDSN, "storage DSN")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "gRPC health check address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format")
	fs.StringVar(&cfg.GoogleClientID, "google-client-id", cfg.GoogleClientID, "Google OAuth client id")
	fs.StringVar(&cfg.GoogleClientSecret, "google-client-secret", cfg.GoogleClientSecret, "Google OAuth client secret")
	fs.StringVar(&cfg.GoogleIssuerURL, "google-issuer", cfg.GoogleIssuerURL, "OIDC issuer URL")
	fs.StringVar(&cfg.GoogleRedirectAddr, "google-redirect", cfg.GoogleRedirectAddr, "loopback address for the OAuth callback")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// -t only counts when given, so a sub-second JSON value survives
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
