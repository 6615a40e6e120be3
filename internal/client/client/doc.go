// Package client talks to the VeriEarth backend on behalf of the session
// store.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     Login, Register, Refresh.
//  2. A JSON-over-HTTP implementation (see HTTPClient).
//  3. AuthTransport, an http.RoundTripper that attaches the stored
//     "<tokenType> <token>" credential to every request and, when the server
//     answers 401, refreshes the token once and retries.
//  4. TokenCredentials and UnaryInterceptor, doing the same for gRPC
//     connections.
//
// # Error Handling
//
// Failures are exposed as sentinel errors matched with errors.Is:
// ErrUnavailable, ErrUnauthorized, ErrMalformedResponse. Non-2xx answers are
// returned as *APIError carrying the server's "detail" message.
package client
