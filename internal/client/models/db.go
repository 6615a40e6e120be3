// Package models defines client-side data models used by the veriauth
// session store, login flow and CLI.
package models

// Storage keys the session is mirrored under.
const (
	KeyAuthToken    = "authToken"
	KeyUser         = "user"
	KeyRefreshToken = "refreshToken"
)
