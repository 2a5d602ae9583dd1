package handlers

import (
	"context"

	"github.com/clubsphere/club-api/internal/auth"
	"github.com/clubsphere/club-api/internal/models"
	"github.com/clubsphere/club-api/internal/payment"
	"github.com/clubsphere/club-api/internal/registration"
)

type RegistrationHandler struct {
	engine      *registration.Engine
	authHandler *auth.AuthHandler
}

func NewRegistrationHandler(engine *registration.Engine, authHandler *auth.AuthHandler) *RegistrationHandler {
	return &RegistrationHandler{engine: engine, authHandler: authHandler}
}

type ListCategoriesRequest struct {
	auth.AuthInput
	EventID uint `path:"eventID"`
}

type ListCategoriesResponse struct {
	Body struct {
		Categories []registration.CategoryView `json:"categories"`
	}
}

// HandleListCategories is public; a logged-in requester gets hasAccess
// evaluated against their role instead of as a guest.
func (h *RegistrationHandler) HandleListCategories(ctx context.Context, input *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	requester := h.authHandler.MaybeUser(ctx, input.Cookie)
	views, err := h.engine.ListCategories(ctx, input.EventID, requester)
	if err != nil {
		return nil, domainError(err)
	}
	res := &ListCategoriesResponse{}
	res.Body.Categories = views
	return res, nil
}

type RegisterRequest struct {
	auth.AuthInput
	EventID    uint `path:"eventID"`
	CategoryID uint `path:"categoryID"`
	Body       struct {
		Name        string                         `json:"name" doc:"Applicant name" required:"true"`
		Email       string                         `json:"email" doc:"Applicant email" required:"true"`
		Phone       string                         `json:"phone" doc:"Applicant phone" required:"true"`
		TeamName    string                         `json:"team_name,omitempty" doc:"Team name, required for team categories"`
		TeamMembers []registration.TeamMemberInput `json:"team_members,omitempty"`
	}
}

type RegistrationView struct {
	ID            uint   `json:"id"`
	EventID       uint   `json:"event_id"`
	CategoryID    uint   `json:"category_id"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	TeamName      string `json:"team_name,omitempty"`
	PaymentStatus string `json:"payment_status"`
	TrackingToken string `json:"tracking_token,omitempty"`
}

type RegisterResponse struct {
	Body struct {
		Registration RegistrationView    `json:"registration"`
		Payment      *payment.Initiation `json:"payment,omitempty"`
	}
}

func (h *RegistrationHandler) HandleRegister(ctx context.Context, input *RegisterRequest) (*RegisterResponse, error) {
	requester := h.authHandler.MaybeUser(ctx, input.Cookie)

	result, err := h.engine.Submit(ctx, input.EventID, input.CategoryID, requester, registration.SubmitRequest{
		Name:        input.Body.Name,
		Email:       input.Body.Email,
		Phone:       input.Body.Phone,
		TeamName:    input.Body.TeamName,
		TeamMembers: input.Body.TeamMembers,
	})
	if err != nil {
		return nil, domainError(err)
	}

	res := &RegisterResponse{}
	res.Body.Registration = registrationView(result.Registration, true)
	res.Body.Payment = result.Payment
	return res, nil
}

type CancelRequest struct {
	Token string `query:"token" doc:"Tracking token of the registration" required:"true"`
}

type CancelResponse struct {
	Body struct {
		Registration RegistrationView `json:"registration"`
	}
}

// HandleCancel lets the applicant withdraw a pending registration using
// the tracking token, releasing its capacity slot.
func (h *RegistrationHandler) HandleCancel(ctx context.Context, input *CancelRequest) (*CancelResponse, error) {
	reg, err := h.engine.TrackByToken(ctx, input.Token)
	if err != nil {
		return nil, domainError(err)
	}
	cancelled, err := h.engine.Cancel(ctx, reg.ID)
	if err != nil {
		return nil, domainError(err)
	}
	res := &CancelResponse{}
	res.Body.Registration = registrationView(cancelled, false)
	return res, nil
}

func registrationView(reg *models.Registration, includeToken bool) RegistrationView {
	view := RegistrationView{
		ID:            reg.ID,
		EventID:       reg.EventID,
		CategoryID:    reg.CategoryID,
		Name:          reg.Name,
		Status:        reg.Status,
		TeamName:      reg.TeamName,
		PaymentStatus: reg.PaymentStatus,
	}
	if includeToken {
		view.TrackingToken = reg.TrackingToken
	}
	return view
}
