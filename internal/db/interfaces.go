package db

import (
	"context"
	"errors"

	"github.com/luminher/luminher-api/internal/models"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// PlanRepository defines storage operations for shared plans.
type PlanRepository interface {
	Create(ctx context.Context, plan *models.SharedPlan) error
	GetByID(ctx context.Context, planID string) (*models.SharedPlan, error)
	// List returns plans newest first.
	List(ctx context.Context) ([]*models.SharedPlan, error)
	// SetRating stores one rater's value without touching the other ratings.
	SetRating(ctx context.Context, planID, raterID string, value int) error
	Delete(ctx context.Context, planID string) error
}

// FavoriteRepository defines storage operations for a user's map favorites.
type FavoriteRepository interface {
	Create(ctx context.Context, uid string, fav *models.Favorite) error
	// ListByUser returns favorites newest first.
	ListByUser(ctx context.Context, uid string) ([]*models.Favorite, error)
}

// ProgressRepository reads a user's progress documents. It never writes.
type ProgressRepository interface {
	ListByUser(ctx context.Context, uid string) ([]models.ProgressEntry, error)
}
