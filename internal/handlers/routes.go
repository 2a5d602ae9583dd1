package handlers

import (
	"net/http"

	"github.com/clubsphere/club-api/internal/auth"
	"github.com/clubsphere/club-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func RegisterRoutes(
	r *chi.Mux,
	authHandler *auth.AuthHandler,
	eventHandler *EventHandler,
	registrationHandler *RegistrationHandler,
	paymentHandler *PaymentHandler,
	certificateHandler *CertificateHandler,
) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("Club API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Auth routes
	r.Get("/auth/discord/login", authHandler.HandleLogin)
	r.Get("/auth/discord/callback", authHandler.HandleCallback)
	huma.Get(api, "/me", authHandler.HandleMe, withCookieAuth)

	// Catalog and registration
	huma.Get(api, "/events/{eventID}/categories", registrationHandler.HandleListCategories)
	huma.Post(api, "/events/{eventID}/categories/{categoryID}/register", registrationHandler.HandleRegister)
	huma.Get(api, "/registrations/track", registrationHandler.HandleTrack)
	huma.Post(api, "/registrations/cancel", registrationHandler.HandleCancel)

	// Gateway return endpoints; the gateway may hit these with GET or POST.
	for path, outcome := range map[string]string{
		"/payments/payment-success":   models.PaymentPaid,
		"/payments/payment-failed":    models.PaymentFailed,
		"/payments/payment-cancelled": "",
	} {
		handler := paymentHandler.HandleGatewayReturn(outcome)
		r.Get(path, handler)
		r.Post(path, handler)
	}

	// Public certificate verification, no auth honored
	huma.Get(api, "/events/verify-certificate/{credentialID}", certificateHandler.HandleVerifyCertificate)

	// Management routes
	huma.Post(api, "/events", eventHandler.HandleCreateEvent, withCookieAuth)
	huma.Put(api, "/events/{eventID}", eventHandler.HandleUpdateEvent, withCookieAuth)
	huma.Post(api, "/events/{eventID}/categories", eventHandler.HandleCreateCategory, withCookieAuth)
	huma.Put(api, "/events/{eventID}/categories/{categoryID}", eventHandler.HandleUpdateCategory, withCookieAuth)
	huma.Delete(api, "/events/{eventID}/categories/{categoryID}", eventHandler.HandleDeleteCategory, withCookieAuth)
	huma.Post(api, "/events/{eventID}/team", eventHandler.HandleAddParticipant, withCookieAuth)
	huma.Get(api, "/events/{eventID}/registrations", eventHandler.HandleListRegistrations, withCookieAuth)
	huma.Put(api, "/events/{eventID}/registrations/{regID}/verify", paymentHandler.HandleVerifyPayment, withCookieAuth)

	// Certificates
	huma.Post(api, "/events/{eventID}/registrations/{regID}/certificate", certificateHandler.HandleIssue, withCookieAuth)
	huma.Delete(api, "/events/{eventID}/registrations/{regID}/certificate", certificateHandler.HandleRevoke, withCookieAuth)
	huma.Post(api, "/events/{eventID}/registrations/bulk-certificate", certificateHandler.HandleBulkIssueRegistrations, withCookieAuth)
	huma.Post(api, "/events/{eventID}/team/{participantID}/certificate", certificateHandler.HandleIssueParticipant, withCookieAuth)
	huma.Delete(api, "/events/{eventID}/team/{participantID}/certificate", certificateHandler.HandleRevokeParticipant, withCookieAuth)
	huma.Post(api, "/events/{eventID}/team/bulk-certificate", certificateHandler.HandleBulkIssueParticipants, withCookieAuth)
}

func withCookieAuth(o *huma.Operation) {
	o.Security = []map[string][]string{{"cookieAuth": {}}}
}
