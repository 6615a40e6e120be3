// Package services contains the client's application services: the session
// store that owns the signed-in user and token, the identity resolvers it
// delegates to, and the login flow driven by the CLI.
package services
