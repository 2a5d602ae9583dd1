package models

import (
	"gorm.io/gorm"
)

const (
	ParticipantRoleOrganizer       = "organizer"
	ParticipantRoleVolunteer       = "volunteer"
	ParticipantRoleCoreAdjudicator = "core_adjudicator"
	ParticipantRoleTabTeam         = "tab_team"
	ParticipantRoleSpeaker         = "speaker"
	ParticipantRoleGuest           = "guest"
)

const (
	ParticipantInternal = "internal"
	ParticipantExternal = "external"
)

// EventParticipant is an event-staff entry (organizer, volunteer, ...),
// distinct from a Registration. Kind tags the identity variant: internal
// entries reference a User, external entries carry free-text identity.
type EventParticipant struct {
	gorm.Model
	EventID uint   `json:"event_id"`
	Event   Event  `json:"-"`
	Role    string `json:"role"`
	Kind    string `json:"kind"`

	// internal variant
	UserID *uint `json:"user_id"`
	User   *User `json:"user,omitempty"`

	// external variant
	Name         string `json:"name"`
	Designation  string `json:"designation"`
	Organization string `json:"organization"`

	CertificateIssued bool   `json:"certificate_issued"`
	CredentialID      string `gorm:"index" json:"credential_id"`
}

// DisplayName resolves the participant's name for either identity variant.
func (p *EventParticipant) DisplayName() string {
	if p.Kind == ParticipantInternal && p.User != nil {
		return p.User.Username
	}
	return p.Name
}
