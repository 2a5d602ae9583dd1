package registration

import (
	"context"
	"fmt"

	"github.com/clubsphere/club-api/internal/models"
	"gorm.io/gorm"
)

// CategoryView is a category as seen by a specific requester. The derived
// flags are computed at read time; capacity moves on every submission, so
// they are never cached.
type CategoryView struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Price      int    `json:"price"`
	Capacity   *int   `json:"capacity"`
	AccessType string `json:"access_type"`
	TeamMin    int    `json:"team_min,omitempty"`
	TeamMax    int    `json:"team_max,omitempty"`
	HasAccess  bool   `json:"has_access"`
	IsOpen     bool   `json:"is_open"`
	IsFull     bool   `json:"is_full"`
}

// ListCategories returns the event's offerings with per-requester derived
// fields. A nil requester is a guest.
func (e *Engine) ListCategories(ctx context.Context, eventID uint, requester *models.User) ([]CategoryView, error) {
	var event models.Event
	if err := e.db.WithContext(ctx).First(&event, eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: event", models.ErrNotFound)
		}
		return nil, err
	}

	var categories []models.EventCategory
	if err := e.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id asc").Find(&categories).Error; err != nil {
		return nil, err
	}

	views := make([]CategoryView, 0, len(categories))
	for i := range categories {
		c := &categories[i]
		view := CategoryView{
			ID:         c.ID,
			Name:       c.Name,
			Type:       c.Type,
			Price:      c.Price,
			Capacity:   c.Capacity,
			AccessType: c.AccessType,
			TeamMin:    c.TeamMin,
			TeamMax:    c.TeamMax,
			HasAccess:  checkAccess(c, requester) == nil,
			IsOpen:     event.RegistrationOpen,
		}
		if c.Capacity != nil {
			count, err := activeCount(e.db.WithContext(ctx), c.ID)
			if err != nil {
				return nil, err
			}
			view.IsFull = count >= int64(*c.Capacity)
		}
		views = append(views, view)
	}
	return views, nil
}

type CategoryInput struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Price      int    `json:"price"`
	Capacity   *int   `json:"capacity"`
	AccessType string `json:"access_type"`
	TeamMin    int    `json:"team_min"`
	TeamMax    int    `json:"team_max"`
}

func validateCategory(in *CategoryInput) error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", models.ErrValidation)
	}
	if in.Type != models.CategoryIndividual && in.Type != models.CategoryTeam {
		return fmt.Errorf("%w: type must be individual or team", models.ErrValidation)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", models.ErrValidation)
	}
	if in.Capacity != nil && *in.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", models.ErrValidation)
	}
	switch in.AccessType {
	case models.AccessAll, models.AccessRegisteredOnly, models.AccessMembersOnly:
	default:
		return fmt.Errorf("%w: unknown access_type %q", models.ErrValidation, in.AccessType)
	}
	if in.Type == models.CategoryTeam {
		if in.TeamMin < 2 {
			return fmt.Errorf("%w: team_min must be at least 2", models.ErrValidation)
		}
		if in.TeamMax < in.TeamMin {
			return fmt.Errorf("%w: team_max must be >= team_min", models.ErrValidation)
		}
	}
	return nil
}

// CreateCategory adds an offering to an event.
func (e *Engine) CreateCategory(ctx context.Context, eventID uint, in CategoryInput) (*models.EventCategory, error) {
	if err := validateCategory(&in); err != nil {
		return nil, err
	}
	var event models.Event
	if err := e.db.WithContext(ctx).First(&event, eventID).Error; err != nil {
		return nil, fmt.Errorf("%w: event", models.ErrNotFound)
	}
	category := &models.EventCategory{
		EventID:    eventID,
		Name:       in.Name,
		Type:       in.Type,
		Price:      in.Price,
		Capacity:   in.Capacity,
		AccessType: in.AccessType,
		TeamMin:    in.TeamMin,
		TeamMax:    in.TeamMax,
	}
	if err := e.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory edits an offering in place.
func (e *Engine) UpdateCategory(ctx context.Context, eventID, categoryID uint, in CategoryInput) (*models.EventCategory, error) {
	if err := validateCategory(&in); err != nil {
		return nil, err
	}
	var category models.EventCategory
	if err := e.db.WithContext(ctx).Where("id = ? AND event_id = ?", categoryID, eventID).First(&category).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: category", models.ErrNotFound)
		}
		return nil, err
	}
	category.Name = in.Name
	category.Type = in.Type
	category.Price = in.Price
	category.Capacity = in.Capacity
	category.AccessType = in.AccessType
	category.TeamMin = in.TeamMin
	category.TeamMax = in.TeamMax
	if err := e.db.WithContext(ctx).Save(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes an offering; refused while any registration,
// whatever its status, references it.
func (e *Engine) DeleteCategory(ctx context.Context, eventID, categoryID uint) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.EventCategory
		if err := tx.Where("id = ? AND event_id = ?", categoryID, eventID).First(&category).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: category", models.ErrNotFound)
			}
			return err
		}
		var n int64
		if err := tx.Model(&models.Registration{}).Where("category_id = ?", categoryID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: category has registrations", models.ErrValidation)
		}
		return tx.Delete(&category).Error
	})
}
