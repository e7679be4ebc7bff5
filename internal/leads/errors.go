package leads

import "errors"

var (
	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrInvalidStatus is returned for a status outside the six pipeline stages
	ErrInvalidStatus = errors.New("invalid lead status")

	// ErrInvalidSegment is returned for an unknown customer segment
	ErrInvalidSegment = errors.New("invalid lead segment")

	// ErrMissingCompany is returned when the company name is blank
	ErrMissingCompany = errors.New("company name is required")

	// ErrInvalidValue is returned for negative monetary values
	ErrInvalidValue = errors.New("lead value must not be negative")

	// ErrDuplicateLead is returned when a lead id is already taken
	ErrDuplicateLead = errors.New("lead already exists")
)
