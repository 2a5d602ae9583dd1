package models

import (
	"gorm.io/gorm"
)

const (
	StatusPendingPayment = "pending_payment"
	StatusConfirmed      = "confirmed"
	StatusCancelled      = "cancelled"
	StatusFailed         = "failed"
)

const (
	PaymentNone    = "none"
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// PaymentFields is the payment sub-record of a priced registration.
// TransactionID is the merchant transaction id handed to the gateway and
// echoed back on its return callbacks.
type PaymentFields struct {
	Amount        int    `json:"amount"`
	Currency      string `json:"currency"`
	Method        string `json:"method"`
	TransactionID string `gorm:"index" json:"transaction_id"`
	PaymentStatus string `gorm:"default:none" json:"payment_status"`
}

type Registration struct {
	gorm.Model
	EventID       uint          `json:"event_id"`
	CategoryID    uint          `json:"category_id"`
	Category      EventCategory `json:"-"`
	UserID        *uint         `json:"user_id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	TeamName      string        `json:"team_name"`
	TeamMembers   []TeamMember  `json:"team_members"`
	Status        string        `json:"status"`
	PaymentFields `gorm:"embedded"`
	CertificateIssued bool   `json:"certificate_issued"`
	CredentialID      string `gorm:"index" json:"credential_id"`
	TrackingToken     string `gorm:"uniqueIndex" json:"-"`
}

// CountsAgainstCapacity reports whether this registration occupies a seat.
// Cancelled and failed registrations release their slot.
func (r *Registration) CountsAgainstCapacity() bool {
	return r.Status == StatusPendingPayment || r.Status == StatusConfirmed
}

// Terminal reports whether no further payment transitions are allowed.
func (r *Registration) Terminal() bool {
	return r.Status == StatusConfirmed || r.Status == StatusCancelled || r.Status == StatusFailed
}

type TeamMember struct {
	gorm.Model
	RegistrationID uint   `json:"registration_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	StudentID      string `json:"student_id"`
}

// RegistrationHistory is an append-only snapshot written alongside every
// status transition, in the same transaction as the change itself.
type RegistrationHistory struct {
	gorm.Model
	RegistrationID uint   `json:"registration_id"`
	EventID        uint   `json:"event_id"`
	Status         string `json:"status"`
	PaymentStatus  string `json:"payment_status"`
	Note           string `json:"note"`
}
