package domain

import "errors"

var (
	// ErrTransport means the local node could not be queried or answered nonsense.
	ErrTransport = errors.New("local node unavailable")

	// ErrReferenceUnavailable means the external network reference could not be queried
	// or answered nonsense.
	ErrReferenceUnavailable = errors.New("network reference unavailable")
)
