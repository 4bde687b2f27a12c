package leads

import "errors"

var (
	// ErrMissingMobile is returned when a lead has no mobile number
	ErrMissingMobile = errors.New("mobile number is required")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")
)
