package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/clubsphere/club-api/internal/auth"
	"github.com/clubsphere/club-api/internal/config"
	"github.com/clubsphere/club-api/internal/models"
	"github.com/clubsphere/club-api/internal/permissions"
	"github.com/clubsphere/club-api/internal/registration"
)

type PaymentHandler struct {
	engine      *registration.Engine
	authHandler *auth.AuthHandler
	cfg         *config.Config
}

func NewPaymentHandler(engine *registration.Engine, authHandler *auth.AuthHandler, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{engine: engine, authHandler: authHandler, cfg: cfg}
}

// HandleGatewayReturn produces the raw handler for one gateway return
// endpoint. The gateway redirects the applicant's browser here with the
// merchant transaction id; success and failure reconcile the pending
// registration, cancel leaves it pending. The handler then forwards the
// browser to the frontend status page. Gateways redeliver callbacks, so
// a repeated outcome must stay a silent no-op.
func (h *PaymentHandler) HandleGatewayReturn(outcome string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tranID := r.URL.Query().Get("tran_id")
		if tranID == "" {
			tranID = r.FormValue("tran_id")
		}
		if tranID == "" {
			http.Error(w, "tran_id is required", http.StatusBadRequest)
			return
		}

		if outcome != "" {
			if _, err := h.engine.ReconcileByTransaction(r.Context(), tranID, outcome); err != nil {
				// AlreadyFinalized on a redelivered conflicting callback is
				// not the applicant's problem; log and continue to the
				// frontend, which shows current state.
				log.Printf("Gateway return (%s) for %s: %v", outcome, tranID, err)
			}
		}

		page := "payment-cancelled"
		switch outcome {
		case models.PaymentPaid:
			page = "payment-success"
		case models.PaymentFailed:
			page = "payment-failed"
		}
		target := fmt.Sprintf("%s/%s?tran_id=%s", h.cfg.FrontendURL, page, url.QueryEscape(tranID))
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

type VerifyPaymentRequest struct {
	auth.AuthInput
	EventID        uint `path:"eventID"`
	RegistrationID uint `path:"regID"`
	Body           struct {
		PaymentStatus string `json:"payment_status" enum:"paid,failed" doc:"Outcome to apply" required:"true"`
	}
}

type VerifyPaymentResponse struct {
	Body struct {
		Registration RegistrationView `json:"registration"`
	}
}

// HandleVerifyPayment is the admin-side reconciliation entry point. It
// shares the engine contract with the gateway callbacks; only the
// authorization differs.
func (h *PaymentHandler) HandleVerifyPayment(ctx context.Context, input *VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, permissions.DashboardPayments); err != nil {
		return nil, err
	}

	existing, err := h.engine.Get(ctx, input.RegistrationID)
	if err != nil {
		return nil, domainError(err)
	}
	if existing.EventID != input.EventID {
		return nil, domainError(fmt.Errorf("%w: registration", models.ErrNotFound))
	}

	reg, err := h.engine.Reconcile(ctx, input.RegistrationID, input.Body.PaymentStatus)
	if err != nil {
		return nil, domainError(err)
	}

	res := &VerifyPaymentResponse{}
	res.Body.Registration = registrationView(reg, false)
	return res, nil
}
