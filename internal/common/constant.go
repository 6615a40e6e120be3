// Package common contains shared constants, sentinel errors and helpers used
// across veriauth components.
package common

// AuthorizationHeaderName is the HTTP header (and gRPC metadata key, in lower
// case) carrying the "<tokenType> <token>" credential on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName tags each outbound request with a unique id.
const RequestIDHeaderName = "X-Request-ID"

// DefaultTokenType is the scheme label the backend issues tokens with.
const DefaultTokenType = "bearer"
