package auth

import (
	"context"
	"testing"

	"github.com/clubsphere/club-api/internal/config"
	"github.com/clubsphere/club-api/internal/models"
	"github.com/clubsphere/club-api/internal/permissions"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.AutoMigrate(&models.User{})
	return db
}

func TestHandleMe(t *testing.T) {
	db := setupDB(t)

	user := models.User{
		DiscordID: "123456",
		Username:  "testuser",
		Email:     "test@example.com",
		Avatar:    "avatar_url",
		Role:      permissions.RoleMember,
	}
	db.Create(&user)

	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, db)

	t.Run("Authenticated", func(t *testing.T) {
		token, _ := handler.GenerateToken(user.ID)
		input := &MeInput{}
		input.Cookie = "auth_token=" + token

		resp, err := handler.HandleMe(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}

		if resp.Body.Username != user.Username {
			t.Errorf("expected username %s, got %s", user.Username, resp.Body.Username)
		}
		if resp.Body.Role != permissions.RoleMember {
			t.Errorf("expected role member, got %s", resp.Body.Role)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		input := &MeInput{}
		_, err := handler.HandleMe(context.Background(), input)
		if err == nil {
			t.Fatal("expected error for unauthenticated request, got nil")
		}
	})
}

func TestRequirePermission(t *testing.T) {
	db := setupDB(t)

	member := models.User{DiscordID: "m1", Username: "member", Role: permissions.RoleMember}
	db.Create(&member)
	secretary := models.User{DiscordID: "gs1", Username: "gs", Role: permissions.RoleGeneralSecretary}
	db.Create(&secretary)

	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, db)

	t.Run("Granted", func(t *testing.T) {
		token, _ := handler.GenerateToken(secretary.ID)
		user, err := handler.RequirePermission(context.Background(), "auth_token="+token, permissions.DashboardPayments)
		if err != nil {
			t.Fatalf("RequirePermission returned error: %v", err)
		}
		if user.ID != secretary.ID {
			t.Errorf("expected user %d, got %d", secretary.ID, user.ID)
		}
	})

	t.Run("Denied", func(t *testing.T) {
		token, _ := handler.GenerateToken(member.ID)
		_, err := handler.RequirePermission(context.Background(), "auth_token="+token, permissions.DashboardPayments)
		if err == nil {
			t.Fatal("expected 403 for member without dashboard.payments")
		}
	})

	t.Run("AnyOf", func(t *testing.T) {
		token, _ := handler.GenerateToken(secretary.ID)
		_, err := handler.RequirePermission(context.Background(), "auth_token="+token,
			permissions.ManageUsers, permissions.ManageCertificates)
		if err != nil {
			t.Fatalf("expected ANY-of semantics to grant via manage.certificates: %v", err)
		}
	})
}

func TestMaybeUser(t *testing.T) {
	db := setupDB(t)
	user := models.User{DiscordID: "u1", Username: "u1"}
	db.Create(&user)

	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, db)

	if got := handler.MaybeUser(context.Background(), ""); got != nil {
		t.Errorf("expected nil user for empty cookie, got %v", got)
	}
	if got := handler.MaybeUser(context.Background(), "auth_token=garbage"); got != nil {
		t.Errorf("expected nil user for invalid token, got %v", got)
	}

	token, _ := handler.GenerateToken(user.ID)
	got := handler.MaybeUser(context.Background(), "auth_token="+token)
	if got == nil || got.ID != user.ID {
		t.Errorf("expected user %d, got %v", user.ID, got)
	}
}
