package models

import "errors"

// Domain errors surfaced by the registration engine and credential ledger.
// Handlers translate these to HTTP status codes with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrAccessDenied      = errors.New("access denied")
	ErrCapacityExceeded  = errors.New("category is full")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyFinalized  = errors.New("registration already finalized")
	ErrAlreadyIssued     = errors.New("certificate already issued")
	ErrNotEligible       = errors.New("not eligible for a certificate")
	ErrNotIssued         = errors.New("no certificate issued")
)
