package credentials

import (
	"context"
	"time"

	"github.com/clubsphere/club-api/internal/models"
)

// VerificationResult is the public verification payload. Every failure
// path returns the same generic shape: a revoked id, a never-issued id
// and a malformed id are indistinguishable to the caller.
type VerificationResult struct {
	Valid        bool      `json:"valid"`
	Message      string    `json:"message,omitempty"`
	Name         string    `json:"name,omitempty"`
	EventTitle   string    `json:"event_title,omitempty"`
	EventDate    time.Time `json:"event_date,omitzero"`
	Role         string    `json:"role,omitempty"`
	CredentialID string    `json:"credential_id,omitempty"`
}

func invalidResult() *VerificationResult {
	return &VerificationResult{Valid: false, Message: "certificate not found or invalid"}
}

// Verify resolves a credential id without authentication. It succeeds
// only for an id that exists and is currently issued.
func (l *Ledger) Verify(ctx context.Context, credentialID string) *VerificationResult {
	if credentialID == "" {
		return invalidResult()
	}

	var reg models.Registration
	err := l.db.WithContext(ctx).Preload("Category").
		Where("credential_id = ? AND certificate_issued = ?", credentialID, true).
		First(&reg).Error
	if err == nil {
		var event models.Event
		l.db.WithContext(ctx).First(&event, reg.EventID)
		return &VerificationResult{
			Valid:        true,
			Name:         reg.Name,
			EventTitle:   event.Title,
			EventDate:    event.Date,
			Role:         reg.Category.Name,
			CredentialID: credentialID,
		}
	}

	var p models.EventParticipant
	err = l.db.WithContext(ctx).Preload("User").Preload("Event").
		Where("credential_id = ? AND certificate_issued = ?", credentialID, true).
		First(&p).Error
	if err == nil {
		return &VerificationResult{
			Valid:        true,
			Name:         p.DisplayName(),
			EventTitle:   p.Event.Title,
			EventDate:    p.Event.Date,
			Role:         p.Role,
			CredentialID: credentialID,
		}
	}

	return invalidResult()
}
