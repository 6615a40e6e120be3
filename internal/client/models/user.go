package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// AuthProvider names the mechanism a user signed in with.
type AuthProvider string

const (
	ProviderGoogle AuthProvider = "google"
	ProviderEmail  AuthProvider = "email"
	ProviderPhone  AuthProvider = "phone"
)

// ParseAuthProvider validates s against the known providers.
func ParseAuthProvider(s string) (AuthProvider, error) {
	switch p := AuthProvider(s); p {
	case ProviderGoogle, ProviderEmail, ProviderPhone:
		return p, nil
	default:
		return "", fmt.Errorf("unknown auth provider %q", s)
	}
}

// User is the signed-in identity. It is serialised as JSON under KeyUser.
type User struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	AuthProvider AuthProvider `json:"authProvider"`
}

// userNamespace scopes UUIDv5 user ids derived from provider subjects.
var userNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://veriearth.com/users"))

// UserID returns subject itself when it is already a UUID, otherwise a
// stable UUIDv5 computed from provider and subject.
func UserID(provider AuthProvider, subject string) string {
	if id, err := uuid.Parse(subject); err == nil {
		return id.String()
	}
	return uuid.NewSHA1(userNamespace, []byte(string(provider)+":"+subject)).String()
}

// MarshalUser encodes u for storage.
func MarshalUser(u *User) ([]byte, error) {
	return json.Marshal(u)
}

// UnmarshalUser decodes a stored user. A value without an email or provider
// is rejected so that a half-written record is never restored.
func UnmarshalUser(b []byte) (*User, error) {
	var u User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if u.Email == "" || u.AuthProvider == "" {
		return nil, fmt.Errorf("decode user: incomplete record")
	}
	return &u, nil
}
