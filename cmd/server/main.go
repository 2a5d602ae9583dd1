package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/clubsphere/club-api/internal/auth"
	"github.com/clubsphere/club-api/internal/config"
	"github.com/clubsphere/club-api/internal/credentials"
	"github.com/clubsphere/club-api/internal/database"
	"github.com/clubsphere/club-api/internal/handlers"
	"github.com/clubsphere/club-api/internal/notifier"
	"github.com/clubsphere/club-api/internal/payment"
	"github.com/clubsphere/club-api/internal/registration"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)

	// Initialize Notifier
	var n notifier.Notifier
	if cfg.DiscordBotToken != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.Printf("Discord notifier not initialized: %v", err)
		} else {
			n = notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID)
		}
	}

	// Initialize Core
	gateway := payment.NewGateway(cfg)
	engine := registration.NewEngine(db, n, gateway)
	ledger := credentials.NewLedger(db, cfg.CertificatePrefix, n)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db)
	eventHandler := handlers.NewEventHandler(db, engine, authHandler)
	registrationHandler := handlers.NewRegistrationHandler(engine, authHandler)
	paymentHandler := handlers.NewPaymentHandler(engine, authHandler, cfg)
	certificateHandler := handlers.NewCertificateHandler(ledger, engine, authHandler)

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, authHandler, eventHandler, registrationHandler, paymentHandler, certificateHandler)

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
