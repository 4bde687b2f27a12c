package calllog

import "errors"

var (
	// ErrMissingCallID is returned when a record has no provider call id
	ErrMissingCallID = errors.New("call id is required")

	// ErrNotFound is returned when no record exists for a call id
	ErrNotFound = errors.New("call log not found")
)
