package domain

import "errors"

var (
	ErrMalformedDirective = errors.New("malformed directive")
	ErrNoHandler          = errors.New("no handler for location")
	ErrMissingOverride    = errors.New("missing override")
)
