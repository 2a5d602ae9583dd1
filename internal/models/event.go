package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	CategoryIndividual = "individual"
	CategoryTeam       = "team"
)

const (
	AccessAll            = "all"
	AccessRegisteredOnly = "registered_only"
	AccessMembersOnly    = "members_only"
)

type Event struct {
	gorm.Model
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Date             time.Time `json:"date"`
	RegistrationOpen bool      `json:"registration_open"`
}

// EventCategory is a single registration offering within an event,
// e.g. "Speaker" or "Adjudicator". Price 0 means free; a nil Capacity
// means unlimited seats.
type EventCategory struct {
	gorm.Model
	EventID    uint   `json:"event_id"`
	Event      Event  `json:"-"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Price      int    `json:"price"`
	Capacity   *int   `json:"capacity"`
	AccessType string `gorm:"default:all" json:"access_type"`
	TeamMin    int    `json:"team_min"`
	TeamMax    int    `json:"team_max"`
}

// IsTeam reports whether registrations for this category carry team members.
func (c *EventCategory) IsTeam() bool {
	return c.Type == CategoryTeam
}

// IsFree reports whether a registration confirms without payment.
func (c *EventCategory) IsFree() bool {
	return c.Price <= 0
}
