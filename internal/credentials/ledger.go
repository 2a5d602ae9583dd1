// Package credentials implements the certificate ledger: issuing,
// revoking and bulk-issuing credentials for confirmed registrations and
// event staff entries, plus the public verification lookup.
package credentials

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/clubsphere/club-api/internal/models"
	"github.com/clubsphere/club-api/internal/notifier"
	"gorm.io/gorm"
)

type Ledger struct {
	db       *gorm.DB
	prefix   string
	notifier notifier.Notifier
}

func NewLedger(db *gorm.DB, prefix string, n notifier.Notifier) *Ledger {
	if prefix == "" {
		prefix = "CERT"
	}
	return &Ledger{db: db, prefix: prefix, notifier: n}
}

// mint builds a structured credential id: namespace, event reference,
// target marker, timestamp and a random component so ids cannot be
// guessed from one another. Re-issuing after a revoke always mints a
// fresh id; old ids stay in the credential log and are never reused.
func (l *Ledger) mint(eventID uint, kind string, targetID uint) string {
	marker := "R"
	if kind == models.TargetParticipant {
		marker = "P"
	}
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is not recoverable at this level
		panic(err)
	}
	return fmt.Sprintf("%s-E%d-%s%d-%d-%s",
		l.prefix, eventID, marker, targetID, time.Now().Unix(), hex.EncodeToString(buf))
}

// IssueRegistration issues a certificate for a confirmed registration.
func (l *Ledger) IssueRegistration(ctx context.Context, regID uint) (string, error) {
	var credentialID string
	var reg models.Registration

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reg, regID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: registration", models.ErrNotFound)
			}
			return err
		}
		if reg.Status != models.StatusConfirmed {
			return models.ErrNotEligible
		}
		if reg.CertificateIssued {
			return models.ErrAlreadyIssued
		}

		credentialID = l.mint(reg.EventID, models.TargetRegistration, reg.ID)

		// Conditional write: a concurrent issue loses on rows affected.
		res := tx.Model(&models.Registration{}).
			Where("id = ? AND certificate_issued = ?", reg.ID, false).
			Updates(map[string]interface{}{"certificate_issued": true, "credential_id": credentialID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrAlreadyIssued
		}

		return tx.Create(&models.CredentialLog{
			CredentialID: credentialID,
			TargetKind:   models.TargetRegistration,
			TargetID:     reg.ID,
			EventID:      reg.EventID,
			Action:       models.CredentialIssued,
		}).Error
	})
	if err != nil {
		return "", err
	}

	l.notifyIssued(reg.Name, reg.EventID, credentialID)
	return credentialID, nil
}

// IssueParticipant issues a certificate for an event staff entry. Any
// participant entry is eligible.
func (l *Ledger) IssueParticipant(ctx context.Context, participantID uint) (string, error) {
	var credentialID string
	var p models.EventParticipant

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").First(&p, participantID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: participant", models.ErrNotFound)
			}
			return err
		}
		if p.CertificateIssued {
			return models.ErrAlreadyIssued
		}

		credentialID = l.mint(p.EventID, models.TargetParticipant, p.ID)

		res := tx.Model(&models.EventParticipant{}).
			Where("id = ? AND certificate_issued = ?", p.ID, false).
			Updates(map[string]interface{}{"certificate_issued": true, "credential_id": credentialID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrAlreadyIssued
		}

		return tx.Create(&models.CredentialLog{
			CredentialID: credentialID,
			TargetKind:   models.TargetParticipant,
			TargetID:     p.ID,
			EventID:      p.EventID,
			Action:       models.CredentialIssued,
		}).Error
	})
	if err != nil {
		return "", err
	}

	l.notifyIssued(p.DisplayName(), p.EventID, credentialID)
	return credentialID, nil
}

// RevokeRegistration clears the issued flag. The minted id stays in the
// credential log for audit; verification reports it invalid from now on.
func (l *Ledger) RevokeRegistration(ctx context.Context, regID uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg models.Registration
		if err := tx.First(&reg, regID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: registration", models.ErrNotFound)
			}
			return err
		}
		if !reg.CertificateIssued {
			return models.ErrNotIssued
		}
		if err := tx.Model(&models.Registration{}).Where("id = ?", reg.ID).
			Update("certificate_issued", false).Error; err != nil {
			return err
		}
		return tx.Create(&models.CredentialLog{
			CredentialID: reg.CredentialID,
			TargetKind:   models.TargetRegistration,
			TargetID:     reg.ID,
			EventID:      reg.EventID,
			Action:       models.CredentialRevoked,
		}).Error
	})
}

// RevokeParticipant clears the issued flag on a staff entry.
func (l *Ledger) RevokeParticipant(ctx context.Context, participantID uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.EventParticipant
		if err := tx.First(&p, participantID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: participant", models.ErrNotFound)
			}
			return err
		}
		if !p.CertificateIssued {
			return models.ErrNotIssued
		}
		if err := tx.Model(&models.EventParticipant{}).Where("id = ?", p.ID).
			Update("certificate_issued", false).Error; err != nil {
			return err
		}
		return tx.Create(&models.CredentialLog{
			CredentialID: p.CredentialID,
			TargetKind:   models.TargetParticipant,
			TargetID:     p.ID,
			EventID:      p.EventID,
			Action:       models.CredentialRevoked,
		}).Error
	})
}

func (l *Ledger) notifyIssued(name string, eventID uint, credentialID string) {
	if l.notifier == nil {
		return
	}
	var event models.Event
	title := ""
	if err := l.db.First(&event, eventID).Error; err == nil {
		title = event.Title
	}
	if err := l.notifier.NotifyCertificateIssued(name, title, credentialID); err != nil {
		log.Printf("Failed to send certificate notification: %v", err)
	}
}
