package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubsphere/club-api/internal/models"
)

const (
	OutcomeIssued  = "issued"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// BulkOutcome reports one target's result of a bulk issuance. A skipped
// or failed target never aborts the rest of the batch.
type BulkOutcome struct {
	TargetID     uint   `json:"target_id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	CredentialID string `json:"credential_id,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// BulkIssueRegistrations issues certificates for every confirmed,
// not-yet-issued registration of the event.
func (l *Ledger) BulkIssueRegistrations(ctx context.Context, eventID uint) ([]BulkOutcome, error) {
	var regs []models.Registration
	if err := l.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id asc").Find(&regs).Error; err != nil {
		return nil, err
	}

	outcomes := make([]BulkOutcome, 0, len(regs))
	for _, reg := range regs {
		outcome := BulkOutcome{TargetID: reg.ID, Name: reg.Name}
		credentialID, err := l.IssueRegistration(ctx, reg.ID)
		switch {
		case err == nil:
			outcome.Status = OutcomeIssued
			outcome.CredentialID = credentialID
		case errors.Is(err, models.ErrAlreadyIssued):
			outcome.Status = OutcomeSkipped
			outcome.Reason = "already issued"
		case errors.Is(err, models.ErrNotEligible):
			outcome.Status = OutcomeSkipped
			outcome.Reason = fmt.Sprintf("not eligible (status %s)", reg.Status)
		default:
			outcome.Status = OutcomeFailed
			outcome.Reason = err.Error()
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// BulkIssueParticipants issues certificates for the event's staff
// entries, optionally filtered by role.
func (l *Ledger) BulkIssueParticipants(ctx context.Context, eventID uint, roleFilter string) ([]BulkOutcome, error) {
	q := l.db.WithContext(ctx).Where("event_id = ?", eventID)
	if roleFilter != "" {
		q = q.Where("role = ?", roleFilter)
	}
	var participants []models.EventParticipant
	if err := q.Preload("User").Order("id asc").Find(&participants).Error; err != nil {
		return nil, err
	}

	outcomes := make([]BulkOutcome, 0, len(participants))
	for _, p := range participants {
		outcome := BulkOutcome{TargetID: p.ID, Name: p.DisplayName()}
		credentialID, err := l.IssueParticipant(ctx, p.ID)
		switch {
		case err == nil:
			outcome.Status = OutcomeIssued
			outcome.CredentialID = credentialID
		case errors.Is(err, models.ErrAlreadyIssued):
			outcome.Status = OutcomeSkipped
			outcome.Reason = "already issued"
		default:
			outcome.Status = OutcomeFailed
			outcome.Reason = err.Error()
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}
