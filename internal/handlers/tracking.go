package handlers

import (
	"context"
	"time"
)

type TrackRequest struct {
	Token string `query:"token" doc:"Opaque tracking token" required:"true"`
}

type TrackedTeamMember struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	StudentID string `json:"student_id"`
}

type TrackResponse struct {
	Body struct {
		ID            uint                `json:"id"`
		EventID       uint                `json:"event_id"`
		CategoryName  string              `json:"category_name"`
		Name          string              `json:"name"`
		Email         string              `json:"email"`
		Phone         string              `json:"phone"`
		Status        string              `json:"status"`
		TeamName      string              `json:"team_name,omitempty"`
		TeamMembers   []TrackedTeamMember `json:"team_members,omitempty"`
		Amount        int                 `json:"amount"`
		Currency      string              `json:"currency,omitempty"`
		PaymentStatus string              `json:"payment_status"`
		CreatedAt     time.Time           `json:"created_at"`
	}
}

// HandleTrack serves the self-service status lookup. The token is the
// only credential; no session is required or consulted.
func (h *RegistrationHandler) HandleTrack(ctx context.Context, input *TrackRequest) (*TrackResponse, error) {
	reg, err := h.engine.TrackByToken(ctx, input.Token)
	if err != nil {
		return nil, domainError(err)
	}

	res := &TrackResponse{}
	res.Body.ID = reg.ID
	res.Body.EventID = reg.EventID
	res.Body.CategoryName = reg.Category.Name
	res.Body.Name = reg.Name
	res.Body.Email = reg.Email
	res.Body.Phone = reg.Phone
	res.Body.Status = reg.Status
	res.Body.TeamName = reg.TeamName
	for _, m := range reg.TeamMembers {
		res.Body.TeamMembers = append(res.Body.TeamMembers, TrackedTeamMember{
			Name:      m.Name,
			Email:     m.Email,
			Phone:     m.Phone,
			StudentID: m.StudentID,
		})
	}
	res.Body.Amount = reg.Amount
	res.Body.Currency = reg.Currency
	res.Body.PaymentStatus = reg.PaymentStatus
	res.Body.CreatedAt = reg.CreatedAt
	return res, nil
}
