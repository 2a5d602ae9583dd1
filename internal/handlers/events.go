package handlers

import (
	"context"
	"time"

	"github.com/clubsphere/club-api/internal/auth"
	"github.com/clubsphere/club-api/internal/models"
	"github.com/clubsphere/club-api/internal/permissions"
	"github.com/clubsphere/club-api/internal/registration"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

type EventHandler struct {
	db          *gorm.DB
	engine      *registration.Engine
	authHandler *auth.AuthHandler
}

func NewEventHandler(db *gorm.DB, engine *registration.Engine, authHandler *auth.AuthHandler) *EventHandler {
	return &EventHandler{db: db, engine: engine, authHandler: authHandler}
}

type EventBody struct {
	Title            string    `json:"title" doc:"Event title" required:"true"`
	Description      string    `json:"description"`
	Date             time.Time `json:"date"`
	RegistrationOpen bool      `json:"registration_open"`
}

type CreateEventRequest struct {
	auth.AuthInput
	Body EventBody
}

type EventResponse struct {
	Body struct {
		ID               uint      `json:"id"`
		Title            string    `json:"title"`
		Description      string    `json:"description"`
		Date             time.Time `json:"date"`
		RegistrationOpen bool      `json:"registration_open"`
	}
}

func (h *EventHandler) HandleCreateEvent(ctx context.Context, input *CreateEventRequest) (*EventResponse, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, permissions.ManageEvents); err != nil {
		return nil, err
	}

	event := models.Event{
		Title:            input.Body.Title,
		Description:      input.Body.Description,
		Date:             input.Body.Date,
		RegistrationOpen: input.Body.RegistrationOpen,
	}
	if err := h.db.Create(&event).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create event: " + err.Error())
	}
	return eventResponse(&event), nil
}

type UpdateEventRequest struct {
	auth.AuthInput
	EventID uint `path:"eventID"`
	Body    EventBody
}

func (h *EventHandler) HandleUpdateEvent(ctx context.Context, input *UpdateEventRequest) (*EventResponse, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, permissions.ManageEvents); err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.First(&event, input.EventID).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}
	event.Title = input.Body.Title
	event.Description = input.Body.Description
	event.Date = input.Body.Date
	event.RegistrationOpen = input.Body.RegistrationOpen
	if err := h.db.Save(&event).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update event: " + err.Error())
	}
	return eventResponse(&event), nil
}

func eventResponse(event *models.Event) *EventResponse {
	res := &EventResponse{}
	res.Body.ID = event.ID
	res.Body.Title = event.Title
	res.Body.Description = event.Description
	res.Body.Date = event.Date
	res.Body.RegistrationOpen = event.RegistrationOpen
	return res
}

type CreateCategoryRequest struct {
	auth.AuthInput
	EventID uint `path:"eventID"`
	Body    registration.CategoryInput
}

type CategoryResponse struct {
	Body struct {
		ID uint `json:"id"`
		registration.CategoryInput
	}
}

func (h *EventHandler) HandleCreateCategory(ctx context.Context, input *CreateCategoryRequest) (*CategoryResponse, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, permissions.ManageEvents); err != nil {
		return nil, err
	}

	category, err := h.engine.CreateCategory(ctx, input.EventID, input.Body)
	if err != nil {
		return nil, domainError(err)
	}
	return categoryResponse(category), nil
}

type UpdateCategoryRequest struct {
	auth.AuthInput
	EventID    uint `path:"eventID"`
	CategoryID uint `path:"categoryID"`
	Body       registration.CategoryInput
}

func (h *EventHandler) HandleUpdateCategory(ctx context.Context, input *UpdateCategoryRequest) (*CategoryResponse, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, permissions.ManageEvents); err != nil {
		return nil, err
	}

	category, err := h.engine.UpdateCategory(ctx, input.EventID, input.CategoryID, input.Body)
	if err != nil {
		return nil, domainError(err)
	}
	return categoryResponse(category), nil
}

type DeleteCategoryRequest struct {
	auth.AuthInput
	EventID    uint `path:"eventID"`
	CategoryID uint `path:"categoryID"`
}

func (h *EventHandler) HandleDeleteCategory(ctx context.Context, input *DeleteCategoryRequest) (*struct{}, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, permissions.ManageEvents); err != nil {
		return nil, err
	}

	if err := h.engine.DeleteCategory(ctx, input.EventID, input.CategoryID); err != nil {
		return nil, domainError(err)
	}
	return nil, nil
}

func categoryResponse(category *models.EventCategory) *CategoryResponse {
	res := &CategoryResponse{}
	res.Body.ID = category.ID
	res.Body.Name = category.Name
	res.Body.Type = category.Type
	res.Body.Price = category.Price
	res.Body.Capacity = category.Capacity
	res.Body.AccessType = category.AccessType
	res.Body.TeamMin = category.TeamMin
	res.Body.TeamMax = category.TeamMax
	return res
}

type AddParticipantRequest struct {
	auth.AuthInput
	EventID uint `path:"eventID"`
	Body    struct {
		Role         string `json:"role" doc:"Staff role, e.g. organizer, volunteer" required:"true"`
		UserID       *uint  `json:"user_id,omitempty" doc:"Internal member reference"`
		Name         string `json:"name,omitempty" doc:"External participant name"`
		Designation  string `json:"designation,omitempty"`
		Organization string `json:"organization,omitempty"`
	}
}

type ParticipantResponse struct {
	Body struct {
		ID   uint   `json:"id"`
		Role string `json:"role"`
		Kind string `json:"kind"`
		Name string `json:"name"`
	}
}

// HandleAddParticipant records an event staff entry, either an internal
// member reference or an external free-text identity, never both.
func (h *EventHandler) HandleAddParticipant(ctx context.Context, input *AddParticipantRequest) (*ParticipantResponse, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, permissions.ManageEvents); err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.First(&event, input.EventID).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}

	p := models.EventParticipant{
		EventID: input.EventID,
		Role:    input.Body.Role,
	}
	switch {
	case input.Body.UserID != nil && input.Body.Name != "":
		return nil, huma.Error422UnprocessableEntity("Provide either user_id or name, not both")
	case input.Body.UserID != nil:
		var user models.User
		if err := h.db.First(&user, *input.Body.UserID).Error; err != nil {
			return nil, huma.Error404NotFound("User not found")
		}
		p.Kind = models.ParticipantInternal
		p.UserID = input.Body.UserID
		p.User = &user
	case input.Body.Name != "":
		p.Kind = models.ParticipantExternal
		p.Name = input.Body.Name
		p.Designation = input.Body.Designation
		p.Organization = input.Body.Organization
	default:
		return nil, huma.Error422UnprocessableEntity("Either user_id or name is required")
	}

	if err := h.db.Create(&p).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to add participant: " + err.Error())
	}

	res := &ParticipantResponse{}
	res.Body.ID = p.ID
	res.Body.Role = p.Role
	res.Body.Kind = p.Kind
	res.Body.Name = p.DisplayName()
	return res, nil
}

type ListRegistrationsRequest struct {
	auth.AuthInput
	EventID uint `path:"eventID"`
}

type ListRegistrationsResponse struct {
	Body struct {
		Registrations []RegistrationView `json:"registrations"`
	}
}

func (h *EventHandler) HandleListRegistrations(ctx context.Context, input *ListRegistrationsRequest) (*ListRegistrationsResponse, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, permissions.ManageRegistrations, permissions.DashboardPayments); err != nil {
		return nil, err
	}

	regs, err := h.engine.ListByEvent(ctx, input.EventID)
	if err != nil {
		return nil, domainError(err)
	}

	res := &ListRegistrationsResponse{}
	res.Body.Registrations = make([]RegistrationView, 0, len(regs))
	for i := range regs {
		res.Body.Registrations = append(res.Body.Registrations, registrationView(&regs[i], false))
	}
	return res, nil
}
