// Package cli provides the interactive veriauth command-line client.
//
// It wires configuration, session storage, the backend API client and the
// sign-in providers, then runs a REPL. The saved session is restored before
// the first prompt.
//
// Commands:
//   - login [email|google|phone]
//   - register, verify <token>
//   - whoami, token
//   - get <path>   authenticated GET against the backend
//   - ping         gRPC health check (when -g is set)
//   - logout, help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
