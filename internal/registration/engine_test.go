package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clubsphere/club-api/internal/config"
	"github.com/clubsphere/club-api/internal/models"
	"github.com/clubsphere/club-api/internal/payment"
	"github.com/clubsphere/club-api/internal/permissions"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// recordingNotifier counts notifications so idempotency tests can assert
// that redelivered callbacks never fire twice.
type recordingNotifier struct {
	confirmed int
	paid      int
	issued    int
}

func (n *recordingNotifier) NotifyRegistrationConfirmed(models.Registration, models.EventCategory) error {
	n.confirmed++
	return nil
}

func (n *recordingNotifier) NotifyPaymentReceived(models.Registration) error {
	n.paid++
	return nil
}

func (n *recordingNotifier) NotifyCertificateIssued(string, string, string) error {
	n.issued++
	return nil
}

func setupEngine(t *testing.T) (*gorm.DB, *Engine, *recordingNotifier) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.EventCategory{},
		&models.Registration{},
		&models.TeamMember{},
		&models.RegistrationHistory{},
	)

	cfg := &config.Config{
		BaseURL:         "http://127.0.0.1:8080",
		GatewayEndpoint: "https://sandbox.gateway.example.com/checkout",
		Currency:        "BDT",
	}
	rec := &recordingNotifier{}
	engine := NewEngine(db, rec, payment.NewGateway(cfg))
	return db, engine, rec
}

func createEvent(t *testing.T, db *gorm.DB, open bool) *models.Event {
	t.Helper()
	event := &models.Event{Title: "Annual Debate", Date: time.Now().Add(30 * 24 * time.Hour), RegistrationOpen: open}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	return event
}

func createCategory(t *testing.T, db *gorm.DB, eventID uint, mut func(*models.EventCategory)) *models.EventCategory {
	t.Helper()
	category := &models.EventCategory{
		EventID:    eventID,
		Name:       "Speaker",
		Type:       models.CategoryIndividual,
		AccessType: models.AccessAll,
	}
	if mut != nil {
		mut(category)
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return category
}

func submitReq(name string) SubmitRequest {
	return SubmitRequest{Name: name, Email: name + "@example.com", Phone: "01700000000"}
}

func TestSubmitFreeCapacity(t *testing.T) {
	db, engine, rec := setupEngine(t)
	event := createEvent(t, db, true)
	capacity := 5
	category := createCategory(t, db, event.ID, func(c *models.EventCategory) {
		c.Capacity = &capacity
	})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		result, err := engine.Submit(ctx, event.ID, category.ID, nil, submitReq("applicant"+string(rune('a'+i))))
		if err != nil {
			t.Fatalf("submission %d failed: %v", i+1, err)
		}
		if result.Registration.Status != models.StatusConfirmed {
			t.Errorf("free submission %d: status = %s, want confirmed", i+1, result.Registration.Status)
		}
		if result.Payment != nil {
			t.Errorf("free submission %d unexpectedly returned payment data", i+1)
		}
		if result.Registration.TrackingToken == "" {
			t.Errorf("submission %d has no tracking token", i+1)
		}
	}

	_, err := engine.Submit(ctx, event.ID, category.ID, nil, submitReq("sixth"))
	if !errors.Is(err, models.ErrCapacityExceeded) {
		t.Fatalf("sixth submission: err = %v, want ErrCapacityExceeded", err)
	}

	var count int64
	db.Model(&models.Registration{}).
		Where("category_id = ? AND status IN ?", category.ID,
			[]string{models.StatusPendingPayment, models.StatusConfirmed}).
		Count(&count)
	if count != 5 {
		t.Errorf("active registrations = %d, want 5", count)
	}
	if rec.confirmed != 5 {
		t.Errorf("confirmation notifications = %d, want 5", rec.confirmed)
	}
}

func TestSubmitPricedAndReconcile(t *testing.T) {
	db, engine, rec := setupEngine(t)
	event := createEvent(t, db, true)
	category := createCategory(t, db, event.ID, func(c *models.EventCategory) {
		c.Price = 500
	})

	ctx := context.Background()
	result, err := engine.Submit(ctx, event.ID, category.ID, nil, submitReq("payer"))
	if err != nil {
		t.Fatalf("priced submission failed: %v", err)
	}
	reg := result.Registration

	if reg.Status != models.StatusPendingPayment {
		t.Errorf("status = %s, want pending_payment", reg.Status)
	}
	if reg.Amount != 500 {
		t.Errorf("payment amount = %d, want 500", reg.Amount)
	}
	if reg.PaymentStatus != models.PaymentPending {
		t.Errorf("payment status = %s, want pending", reg.PaymentStatus)
	}
	if result.Payment == nil || result.Payment.GatewayURL == "" {
		t.Fatal("priced submission returned no gateway redirect")
	}
	if result.Payment.TransactionID != reg.TransactionID {
		t.Error("initiation transaction id does not match the registration")
	}
	if rec.confirmed != 0 {
		t.Errorf("pending submission fired %d confirmation notifications", rec.confirmed)
	}

	// First reconcile transitions and notifies once.
	updated, err := engine.Reconcile(ctx, reg.ID, models.PaymentPaid)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if updated.Status != models.StatusConfirmed || updated.PaymentStatus != models.PaymentPaid {
		t.Errorf("after reconcile: status=%s payment=%s", updated.Status, updated.PaymentStatus)
	}
	if rec.paid != 1 {
		t.Errorf("payment notifications = %d, want 1", rec.paid)
	}

	// Redelivered success is a silent no-op.
	again, err := engine.Reconcile(ctx, reg.ID, models.PaymentPaid)
	if err != nil {
		t.Fatalf("redelivered reconcile surfaced an error: %v", err)
	}
	if again.Status != models.StatusConfirmed {
		t.Errorf("redelivery changed status to %s", again.Status)
	}
	if rec.paid != 1 {
		t.Errorf("redelivery double-fired notifications: %d", rec.paid)
	}

	// Conflicting outcome on a finalized record is rejected.
	_, err = engine.Reconcile(ctx, reg.ID, models.PaymentFailed)
	if !errors.Is(err, models.ErrAlreadyFinalized) {
		t.Errorf("conflicting outcome: err = %v, want ErrAlreadyFinalized", err)
	}
}

func TestReconcileFailure(t *testing.T) {
	db, engine, _ := setupEngine(t)
	event := createEvent(t, db, true)
	capacity := 1
	category := createCategory(t, db, event.ID, func(c *models.EventCategory) {
		c.Price = 300
		c.Capacity = &capacity
	})

	ctx := context.Background()
	result, err := engine.Submit(ctx, event.ID, category.ID, nil, submitReq("failer"))
	if err != nil {
		t.Fatalf("submission failed: %v", err)
	}

	updated, err := engine.Reconcile(ctx, result.Registration.ID, models.PaymentFailed)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if updated.Status != models.StatusFailed || updated.PaymentStatus != models.PaymentFailed {
		t.Errorf("after failed reconcile: status=%s payment=%s", updated.Status, updated.PaymentStatus)
	}

	// The failed registration released its slot.
	if _, err := engine.Submit(ctx, event.ID, category.ID, nil, submitReq("retrier")); err != nil {
		t.Errorf("slot was not released after failure: %v", err)
	}
}

func TestReconcileByTransaction(t *testing.T) {
	db, engine, _ := setupEngine(t)
	event := createEvent(t, db, true)
	category := createCategory(t, db, event.ID, func(c *models.EventCategory) {
		c.Price = 250
	})

	ctx := context.Background()
	result, err := engine.Submit(ctx, event.ID, category.ID, nil, submitReq("gw"))
	if err != nil {
		t.Fatalf("submission failed: %v", err)
	}

	updated, err := engine.ReconcileByTransaction(ctx, result.Registration.TransactionID, models.PaymentPaid)
	if err != nil {
		t.Fatalf("reconcile by transaction failed: %v", err)
	}
	if updated.Status != models.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", updated.Status)
	}

	if _, err := engine.ReconcileByTransaction(ctx, "no-such-tx", models.PaymentPaid); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown transaction: err = %v, want ErrNotFound", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	db, engine, _ := setupEngine(t)
	event := createEvent(t, db, true)
	category := createCategory(t, db, event.ID, nil)

	ctx := context.Background()
	cases := []struct {
		name string
		req  SubmitRequest
	}{
		{"missing name", SubmitRequest{Email: "a@b.com", Phone: "017"}},
		{"missing email", SubmitRequest{Name: "a", Phone: "017"}},
		{"missing phone", SubmitRequest{Name: "a", Email: "a@b.com"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := engine.Submit(ctx, event.ID, category.ID, nil, c.req); !errors.Is(err, models.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}

	t.Run("unknown category", func(t *testing.T) {
		if _, err := engine.Submit(ctx, event.ID, 9999, nil, submitReq("x")); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("category of another event", func(t *testing.T) {
		other := createEvent(t, db, true)
		otherCategory := createCategory(t, db, other.ID, nil)
		if _, err := engine.Submit(ctx, event.ID, otherCategory.ID, nil, submitReq("x")); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("closed registration window", func(t *testing.T) {
		closed := createEvent(t, db, false)
		closedCategory := createCategory(t, db, closed.ID, nil)
		if _, err := engine.Submit(ctx, closed.ID, closedCategory.ID, nil, submitReq("x")); !errors.Is(err, models.ErrAccessDenied) {
			t.Errorf("err = %v, want ErrAccessDenied", err)
		}
	})
}

func TestTeamSizeBounds(t *testing.T) {
	db, engine, _ := setupEngine(t)
	event := createEvent(t, db, true)
	category := createCategory(t, db, event.ID, func(c *models.EventCategory) {
		c.Type = models.CategoryTeam
		c.TeamMin = 2
		c.TeamMax = 3
	})

	members := func(n int) []TeamMemberInput {
		out := make([]TeamMemberInput, n)
		for i := range out {
			out[i] = TeamMemberInput{Name: "m", Email: "m@example.com", Phone: "017"}
		}
		return out
	}

	ctx := context.Background()
	for _, n := range []int{0, 1, 4} {
		req := submitReq("team")
		req.TeamName = "The Motion"
		req.TeamMembers = members(n)
		if _, err := engine.Submit(ctx, event.ID, category.ID, nil, req); !errors.Is(err, models.ErrValidation) {
			t.Errorf("team of %d: err = %v, want ErrValidation", n, err)
		}
	}

	t.Run("missing team name", func(t *testing.T) {
		req := submitReq("team")
		req.TeamMembers = members(2)
		if _, err := engine.Submit(ctx, event.ID, category.ID, nil, req); !errors.Is(err, models.ErrValidation) {
			t.Errorf("err = %v, want ErrValidation", err)
		}
	})

	t.Run("valid team", func(t *testing.T) {
		req := submitReq("team")
		req.TeamName = "The Motion"
		req.TeamMembers = members(3)
		result, err := engine.Submit(ctx, event.ID, category.ID, nil, req)
		if err != nil {
			t.Fatalf("valid team rejected: %v", err)
		}
		if len(result.Registration.TeamMembers) != 3 {
			t.Errorf("stored %d team members, want 3", len(result.Registration.TeamMembers))
		}
	})

	t.Run("members on individual category", func(t *testing.T) {
		individual := createCategory(t, db, event.ID, nil)
		req := submitReq("solo")
		req.TeamMembers = members(2)
		if _, err := engine.Submit(ctx, event.ID, individual.ID, nil, req); !errors.Is(err, models.ErrValidation) {
			t.Errorf("err = %v, want ErrValidation", err)
		}
	})
}

func TestAccessRules(t *testing.T) {
	db, engine, _ := setupEngine(t)
	event := createEvent(t, db, true)
	membersOnly := createCategory(t, db, event.ID, func(c *models.EventCategory) {
		c.AccessType = models.AccessMembersOnly
	})
	registeredOnly := createCategory(t, db, event.ID, func(c *models.EventCategory) {
		c.AccessType = models.AccessRegisteredOnly
	})

	plainUser := &models.User{DiscordID: "u1", Username: "plain", Role: permissions.RoleUser}
	db.Create(plainUser)
	member := &models.User{DiscordID: "m1", Username: "member", Role: permissions.RoleMember}
	db.Create(member)

	ctx := context.Background()

	t.Run("guest denied members_only", func(t *testing.T) {
		if _, err := engine.Submit(ctx, event.ID, membersOnly.ID, nil, submitReq("g")); !errors.Is(err, models.ErrAccessDenied) {
			t.Errorf("err = %v, want ErrAccessDenied", err)
		}
	})
	t.Run("plain user denied members_only", func(t *testing.T) {
		if _, err := engine.Submit(ctx, event.ID, membersOnly.ID, plainUser, submitReq("p")); !errors.Is(err, models.ErrAccessDenied) {
			t.Errorf("err = %v, want ErrAccessDenied", err)
		}
	})
	t.Run("member allowed members_only", func(t *testing.T) {
		if _, err := engine.Submit(ctx, event.ID, membersOnly.ID, member, submitReq("m")); err != nil {
			t.Errorf("member rejected: %v", err)
		}
	})
	t.Run("guest denied registered_only", func(t *testing.T) {
		if _, err := engine.Submit(ctx, event.ID, registeredOnly.ID, nil, submitReq("g2")); !errors.Is(err, models.ErrAccessDenied) {
			t.Errorf("err = %v, want ErrAccessDenied", err)
		}
	})
	t.Run("plain user allowed registered_only", func(t *testing.T) {
		if _, err := engine.Submit(ctx, event.ID, registeredOnly.ID, plainUser, submitReq("p2")); err != nil {
			t.Errorf("logged-in user rejected: %v", err)
		}
	})
}

func TestCancelReleasesSlot(t *testing.T) {
	db, engine, _ := setupEngine(t)
	event := createEvent(t, db, true)
	capacity := 1
	category := createCategory(t, db, event.ID, func(c *models.EventCategory) {
		c.Price = 100
		c.Capacity = &capacity
	})

	ctx := context.Background()
	result, err := engine.Submit(ctx, event.ID, category.ID, nil, submitReq("first"))
	if err != nil {
		t.Fatalf("submission failed: %v", err)
	}

	if _, err := engine.Submit(ctx, event.ID, category.ID, nil, submitReq("second")); !errors.Is(err, models.ErrCapacityExceeded) {
		t.Fatalf("category should be full: %v", err)
	}

	cancelled, err := engine.Cancel(ctx, result.Registration.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	if _, err := engine.Submit(ctx, event.ID, category.ID, nil, submitReq("second")); err != nil {
		t.Errorf("slot was not released by cancel: %v", err)
	}

	// Cancel is only valid from pending_payment.
	if _, err := engine.Cancel(ctx, cancelled.ID); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("double cancel: err = %v, want ErrInvalidTransition", err)
	}
}

func TestTrackByToken(t *testing.T) {
	db, engine, _ := setupEngine(t)
	event := createEvent(t, db, true)
	category := createCategory(t, db, event.ID, func(c *models.EventCategory) {
		c.Type = models.CategoryTeam
		c.TeamMin = 2
		c.TeamMax = 4
		c.Price = 800
	})

	ctx := context.Background()
	req := submitReq("captain")
	req.TeamName = "Proposition"
	req.TeamMembers = []TeamMemberInput{
		{Name: "a", Email: "a@e.com", Phone: "1", StudentID: "s1"},
		{Name: "b", Email: "b@e.com", Phone: "2", StudentID: "s2"},
	}
	result, err := engine.Submit(ctx, event.ID, category.ID, nil, req)
	if err != nil {
		t.Fatalf("submission failed: %v", err)
	}

	tracked, err := engine.TrackByToken(ctx, result.Registration.TrackingToken)
	if err != nil {
		t.Fatalf("tracking failed: %v", err)
	}
	if tracked.ID != result.Registration.ID {
		t.Errorf("tracked registration %d, want %d", tracked.ID, result.Registration.ID)
	}
	if len(tracked.TeamMembers) != 2 {
		t.Errorf("tracked %d team members, want 2", len(tracked.TeamMembers))
	}
	if tracked.Category.Name == "" {
		t.Error("tracked snapshot is missing the category")
	}
	if tracked.Amount != 800 || tracked.PaymentStatus != models.PaymentPending {
		t.Errorf("tracked payment: amount=%d status=%s", tracked.Amount, tracked.PaymentStatus)
	}

	if _, err := engine.TrackByToken(ctx, "unknown-token"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown token: err = %v, want ErrNotFound", err)
	}
}

func TestHistoryWrittenOnTransitions(t *testing.T) {
	db, engine, _ := setupEngine(t)
	event := createEvent(t, db, true)
	category := createCategory(t, db, event.ID, func(c *models.EventCategory) {
		c.Price = 100
	})

	ctx := context.Background()
	result, err := engine.Submit(ctx, event.ID, category.ID, nil, submitReq("h"))
	if err != nil {
		t.Fatalf("submission failed: %v", err)
	}
	if _, err := engine.Reconcile(ctx, result.Registration.ID, models.PaymentPaid); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	var histories []models.RegistrationHistory
	db.Where("registration_id = ?", result.Registration.ID).Order("id asc").Find(&histories)
	if len(histories) != 2 {
		t.Fatalf("history rows = %d, want 2", len(histories))
	}
	if histories[0].Status != models.StatusPendingPayment || histories[1].Status != models.StatusConfirmed {
		t.Errorf("history statuses = %s, %s", histories[0].Status, histories[1].Status)
	}
}
