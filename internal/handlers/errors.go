package handlers

import (
	"errors"

	"github.com/clubsphere/club-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
)

// domainError maps engine/ledger errors onto HTTP problem responses.
func domainError(err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, models.ErrValidation):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, models.ErrAccessDenied):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, models.ErrCapacityExceeded),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrAlreadyFinalized),
		errors.Is(err, models.ErrAlreadyIssued),
		errors.Is(err, models.ErrNotEligible),
		errors.Is(err, models.ErrNotIssued):
		return huma.Error409Conflict(err.Error())
	default:
		return huma.Error500InternalServerError("Failed to process request: " + err.Error())
	}
}
