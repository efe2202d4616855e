package trello

import "errors"

// Sentinel kinds for client errors.
var (
	ErrStatus      = errors.New("unexpected response status")
	ErrBadDocument = errors.New("malformed action document")
)
