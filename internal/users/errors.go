package users

import "errors"

var (
	// ErrNotFound indicates no user matched the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrMissingProviderID indicates a provider user without a usable id.
	ErrMissingProviderID = errors.New("provider user id is required")
)
