package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/clubsphere/club-api/internal/models"
	"github.com/clubsphere/club-api/internal/permissions"
	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AuthInput is embedded in huma request structs for operations that read
// the auth cookie. Public endpoints that personalize embed it too and use
// MaybeUser instead of Authorize.
type AuthInput struct {
	Cookie string `header:"Cookie" doc:"Auth cookie" required:"false"`
}

// Authorize validates the auth_token cookie and returns the user id.
func (h *AuthHandler) Authorize(ctx context.Context, cookieHeader string) (uint, error) {
	userID, err := h.parseAuthCookie(cookieHeader)
	if err != nil {
		return 0, huma.Error401Unauthorized("Unauthorized")
	}
	return userID, nil
}

// CurrentUser resolves the authenticated user record.
func (h *AuthHandler) CurrentUser(ctx context.Context, cookieHeader string) (*models.User, error) {
	userID, err := h.Authorize(ctx, cookieHeader)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	return &user, nil
}

// MaybeUser resolves the user when a valid cookie is present; a missing or
// invalid cookie yields nil without error.
func (h *AuthHandler) MaybeUser(ctx context.Context, cookieHeader string) *models.User {
	userID, err := h.parseAuthCookie(cookieHeader)
	if err != nil {
		return nil
	}
	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return nil
	}
	return &user
}

// RequirePermission authorizes the request and checks that the user's role
// holds at least one of the given permissions.
func (h *AuthHandler) RequirePermission(ctx context.Context, cookieHeader string, perms ...permissions.Permission) (*models.User, error) {
	user, err := h.CurrentUser(ctx, cookieHeader)
	if err != nil {
		return nil, err
	}
	if !permissions.HasAny(user.Role, perms...) {
		return nil, huma.Error403Forbidden("Access denied: insufficient role")
	}
	return user, nil
}

func (h *AuthHandler) parseAuthCookie(cookieHeader string) (uint, error) {
	if cookieHeader == "" {
		return 0, fmt.Errorf("no cookie")
	}

	// Reuse net/http cookie parsing on the raw header value.
	req := http.Request{Header: http.Header{"Cookie": []string{cookieHeader}}}
	cookie, err := req.Cookie("auth_token")
	if err != nil {
		return 0, err
	}

	token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("invalid user_id claim")
	}
	return uint(userIDFloat), nil
}

type MeInput struct {
	AuthInput
}

type MeOutput struct {
	Body struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Avatar   string `json:"avatar"`
		Role     string `json:"role"`
	}
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *MeInput) (*MeOutput, error) {
	user, err := h.CurrentUser(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	res := &MeOutput{}
	res.Body.ID = user.ID
	res.Body.Username = user.Username
	res.Body.Email = user.Email
	res.Body.Avatar = user.Avatar
	res.Body.Role = user.Role
	return res, nil
}
