package database

import (
	"log"

	"github.com/clubsphere/club-api/internal/config"
	"github.com/clubsphere/club-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto Migrate
	err = db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.EventCategory{},
		&models.Registration{},
		&models.TeamMember{},
		&models.RegistrationHistory{},
		&models.EventParticipant{},
		&models.CredentialLog{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	return db
}
