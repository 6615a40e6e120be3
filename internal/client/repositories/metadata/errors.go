package metadata

import "errors"

var (
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")

	errReadOnlyView = errors.New("read-only view")
)
