// Package registration implements the event registration workflow: the
// category catalog, submission against a category, the payment-gated
// status state machine and the opaque-token tracking lookup.
package registration

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/clubsphere/club-api/internal/models"
	"github.com/clubsphere/club-api/internal/notifier"
	"github.com/clubsphere/club-api/internal/payment"
	"github.com/clubsphere/club-api/internal/permissions"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Engine struct {
	db       *gorm.DB
	notifier notifier.Notifier
	gateway  *payment.Gateway
}

func NewEngine(db *gorm.DB, n notifier.Notifier, gateway *payment.Gateway) *Engine {
	return &Engine{db: db, notifier: n, gateway: gateway}
}

type TeamMemberInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	StudentID string `json:"student_id"`
}

type SubmitRequest struct {
	Name        string
	Email       string
	Phone       string
	UserID      *uint
	TeamName    string
	TeamMembers []TeamMemberInput
}

// SubmitResult carries the created registration, its tracking token and,
// for priced categories, the gateway initiation data.
type SubmitResult struct {
	Registration *models.Registration
	Payment      *payment.Initiation
}

// Submit validates and creates a registration against a category. The
// capacity check and the insert run inside one transaction so concurrent
// submissions cannot overshoot the category capacity.
func (e *Engine) Submit(ctx context.Context, eventID, categoryID uint, requester *models.User, req SubmitRequest) (*SubmitResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrValidation)
	}
	if req.Email == "" {
		return nil, fmt.Errorf("%w: email is required", models.ErrValidation)
	}
	if req.Phone == "" {
		return nil, fmt.Errorf("%w: phone is required", models.ErrValidation)
	}

	var category models.EventCategory
	if err := e.db.WithContext(ctx).Where("id = ? AND event_id = ?", categoryID, eventID).First(&category).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: category", models.ErrNotFound)
		}
		return nil, err
	}

	var event models.Event
	if err := e.db.WithContext(ctx).First(&event, eventID).Error; err != nil {
		return nil, fmt.Errorf("%w: event", models.ErrNotFound)
	}
	if !event.RegistrationOpen {
		return nil, fmt.Errorf("%w: registration window is closed", models.ErrAccessDenied)
	}

	if err := checkAccess(&category, requester); err != nil {
		return nil, err
	}

	if category.IsTeam() {
		if strings.TrimSpace(req.TeamName) == "" {
			return nil, fmt.Errorf("%w: team_name is required for team categories", models.ErrValidation)
		}
		n := len(req.TeamMembers)
		if n < category.TeamMin || n > category.TeamMax {
			return nil, fmt.Errorf("%w: team size must be between %d and %d, got %d",
				models.ErrValidation, category.TeamMin, category.TeamMax, n)
		}
	} else if len(req.TeamMembers) > 0 {
		return nil, fmt.Errorf("%w: team members are only allowed for team categories", models.ErrValidation)
	}

	reg := &models.Registration{
		EventID:       eventID,
		CategoryID:    category.ID,
		UserID:        req.UserID,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		TrackingToken: uuid.NewString(),
	}
	if requester != nil && reg.UserID == nil {
		id := requester.ID
		reg.UserID = &id
	}
	if category.IsTeam() {
		reg.TeamName = strings.TrimSpace(req.TeamName)
		for _, m := range req.TeamMembers {
			reg.TeamMembers = append(reg.TeamMembers, models.TeamMember{
				Name:      m.Name,
				Email:     m.Email,
				Phone:     m.Phone,
				StudentID: m.StudentID,
			})
		}
	}

	if category.IsFree() {
		reg.Status = models.StatusConfirmed
		reg.PaymentStatus = models.PaymentNone
	} else {
		reg.Status = models.StatusPendingPayment
		reg.PaymentFields = models.PaymentFields{
			Amount:        category.Price,
			Currency:      e.gateway.Currency(),
			TransactionID: uuid.NewString(),
			PaymentStatus: models.PaymentPending,
		}
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if category.Capacity != nil {
			count, err := activeCount(tx, category.ID)
			if err != nil {
				return err
			}
			if count >= int64(*category.Capacity) {
				return models.ErrCapacityExceeded
			}
		}

		if err := tx.Create(reg).Error; err != nil {
			return err
		}

		return appendHistory(tx, reg, "submitted")
	})
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{Registration: reg}
	if reg.Status == models.StatusConfirmed {
		e.notifyConfirmed(reg, &category)
	} else {
		result.Payment = e.gateway.Initiate(reg.TransactionID, reg.Amount)
	}
	return result, nil
}

// Reconcile applies a payment outcome to a pending registration. It is
// idempotent under redelivery: a repeated call with the matching outcome
// returns the record unchanged and fires no second notification.
func (e *Engine) Reconcile(ctx context.Context, regID uint, outcome string) (*models.Registration, error) {
	if outcome != models.PaymentPaid && outcome != models.PaymentFailed {
		return nil, fmt.Errorf("%w: outcome must be paid or failed", models.ErrValidation)
	}

	var reg models.Registration
	transitioned := false

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("TeamMembers").First(&reg, regID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: registration", models.ErrNotFound)
			}
			return err
		}

		switch reg.Status {
		case models.StatusPendingPayment:
			if outcome == models.PaymentPaid {
				reg.Status = models.StatusConfirmed
				reg.PaymentStatus = models.PaymentPaid
			} else {
				reg.Status = models.StatusFailed
				reg.PaymentStatus = models.PaymentFailed
			}
			transitioned = true
			if err := tx.Model(&models.Registration{}).Where("id = ?", reg.ID).
				Updates(map[string]interface{}{"status": reg.Status, "payment_status": reg.PaymentStatus}).Error; err != nil {
				return err
			}
			return appendHistory(tx, &reg, "payment "+outcome)

		case models.StatusConfirmed:
			if outcome == models.PaymentPaid && reg.PaymentStatus == models.PaymentPaid {
				return nil // redelivered success, no-op
			}
			return models.ErrAlreadyFinalized

		case models.StatusFailed:
			if outcome == models.PaymentFailed {
				return nil // redelivered failure, no-op
			}
			return models.ErrAlreadyFinalized

		case models.StatusCancelled:
			return models.ErrAlreadyFinalized

		default:
			return models.ErrInvalidTransition
		}
	})
	if err != nil {
		return nil, err
	}

	if transitioned && outcome == models.PaymentPaid {
		e.notifyPaid(&reg)
	}
	return &reg, nil
}

// ReconcileByTransaction resolves a gateway callback by its merchant
// transaction id.
func (e *Engine) ReconcileByTransaction(ctx context.Context, tranID, outcome string) (*models.Registration, error) {
	if tranID == "" {
		return nil, fmt.Errorf("%w: tran_id is required", models.ErrValidation)
	}
	var reg models.Registration
	if err := e.db.WithContext(ctx).Where("transaction_id = ?", tranID).First(&reg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: transaction", models.ErrNotFound)
		}
		return nil, err
	}
	return e.Reconcile(ctx, reg.ID, outcome)
}

// Cancel moves a pending registration to cancelled, releasing its
// capacity slot. Other states reject the transition.
func (e *Engine) Cancel(ctx context.Context, regID uint) (*models.Registration, error) {
	var reg models.Registration
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reg, regID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: registration", models.ErrNotFound)
			}
			return err
		}
		if reg.Status != models.StatusPendingPayment {
			return models.ErrInvalidTransition
		}
		reg.Status = models.StatusCancelled
		if err := tx.Model(&models.Registration{}).Where("id = ?", reg.ID).
			Update("status", models.StatusCancelled).Error; err != nil {
			return err
		}
		return appendHistory(tx, &reg, "cancelled by applicant")
	})
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// TrackByToken returns the full registration snapshot for a tracking
// token, independent of any login session.
func (e *Engine) TrackByToken(ctx context.Context, token string) (*models.Registration, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", models.ErrValidation)
	}
	var reg models.Registration
	err := e.db.WithContext(ctx).Preload("TeamMembers").Preload("Category").
		Where("tracking_token = ?", token).First(&reg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: registration", models.ErrNotFound)
		}
		return nil, err
	}
	return &reg, nil
}

// Get returns one registration by id.
func (e *Engine) Get(ctx context.Context, regID uint) (*models.Registration, error) {
	var reg models.Registration
	if err := e.db.WithContext(ctx).Preload("TeamMembers").First(&reg, regID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: registration", models.ErrNotFound)
		}
		return nil, err
	}
	return &reg, nil
}

// ListByEvent returns all registrations of an event for the dashboard.
func (e *Engine) ListByEvent(ctx context.Context, eventID uint) ([]models.Registration, error) {
	var regs []models.Registration
	err := e.db.WithContext(ctx).Preload("TeamMembers").
		Where("event_id = ?", eventID).Order("created_at asc").Find(&regs).Error
	return regs, err
}

func checkAccess(category *models.EventCategory, requester *models.User) error {
	switch category.AccessType {
	case models.AccessMembersOnly:
		if requester == nil {
			return fmt.Errorf("%w: category is members only, log in with a member account", models.ErrAccessDenied)
		}
		if !permissions.IsMemberTier(requester.Role) {
			return fmt.Errorf("%w: category is members only", models.ErrAccessDenied)
		}
	case models.AccessRegisteredOnly:
		if requester == nil {
			return fmt.Errorf("%w: category requires a logged in account", models.ErrAccessDenied)
		}
	}
	return nil
}

// activeCount counts registrations still holding a seat. Derived from the
// rows themselves rather than a maintained counter, under the same
// transaction as the insert that depends on it.
func activeCount(tx *gorm.DB, categoryID uint) (int64, error) {
	var n int64
	err := tx.Model(&models.Registration{}).
		Where("category_id = ? AND status IN ?", categoryID,
			[]string{models.StatusPendingPayment, models.StatusConfirmed}).
		Count(&n).Error
	return n, err
}

func appendHistory(tx *gorm.DB, reg *models.Registration, note string) error {
	return tx.Create(&models.RegistrationHistory{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		Status:         reg.Status,
		PaymentStatus:  reg.PaymentStatus,
		Note:           note,
	}).Error
}

func (e *Engine) notifyConfirmed(reg *models.Registration, category *models.EventCategory) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.NotifyRegistrationConfirmed(*reg, *category); err != nil {
		log.Printf("Failed to send confirmation notification: %v", err)
	}
}

func (e *Engine) notifyPaid(reg *models.Registration) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.NotifyPaymentReceived(*reg); err != nil {
		log.Printf("Failed to send payment notification: %v", err)
	}
}
