package models

import (
	"gorm.io/gorm"
)

const (
	TargetRegistration = "registration"
	TargetParticipant  = "participant"
)

const (
	CredentialIssued  = "issued"
	CredentialRevoked = "revoked"
)

// CredentialLog is the append-only audit trail of the certificate ledger.
// Revoking clears the issued flag on the target row but every minted id
// stays recorded here; ids are never reassigned.
type CredentialLog struct {
	gorm.Model
	CredentialID string `gorm:"index" json:"credential_id"`
	TargetKind   string `json:"target_kind"`
	TargetID     uint   `json:"target_id"`
	EventID      uint   `json:"event_id"`
	Action       string `json:"action"`
}
