package models

import (
	"strings"
	"time"
)

// Session is the user identity together with the credential authorising
// their requests. The session store swaps whole Session values, never
// individual fields.
type Session struct {
	User *User

	// Token is the formatted "<tokenType> <token>" credential.
	Token string

	// RefreshToken is optional and only present for backend logins.
	RefreshToken string
}

// IsAuthenticated reports whether a user is present. A token without a user
// does not count.
func (s Session) IsAuthenticated() bool {
	return s.User != nil
}

// FormatToken joins a token type and a raw token as "<tokenType> <token>".
func FormatToken(token, tokenType string) string {
	return tokenType + " " + token
}

// SplitToken is the inverse of FormatToken. ok is false when the value has
// no scheme prefix.
func SplitToken(formatted string) (tokenType, token string, ok bool) {
	tokenType, token, ok = strings.Cut(formatted, " ")
	if !ok || tokenType == "" || token == "" {
		return "", "", false
	}
	return tokenType, token, true
}

// Identity is what an identity resolver returns after a successful login:
// the user's claims plus the credential that proves them.
type Identity struct {
	Subject      string
	Email        string
	Name         string
	AccessToken  string
	TokenType    string
	RefreshToken string
	Expiry       time.Time
}
