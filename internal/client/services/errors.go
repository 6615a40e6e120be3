package services

import "errors"

var (
	ErrProviderNotSupported = errors.New("auth provider not supported")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrIncompleteIdentity   = errors.New("identity incomplete")
)
