package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/luminher/luminher-api/internal/models"
)

// MemoryPlanRepository is an in-memory PlanRepository used by tests.
type MemoryPlanRepository struct {
	mu    sync.RWMutex
	plans map[string]*models.SharedPlan
}

// NewMemoryPlanRepository creates an empty MemoryPlanRepository.
func NewMemoryPlanRepository() *MemoryPlanRepository {
	return &MemoryPlanRepository{plans: make(map[string]*models.SharedPlan)}
}

func (r *MemoryPlanRepository) Create(_ context.Context, plan *models.SharedPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[plan.ID]; ok {
		return fmt.Errorf("plan '%s' already exists", plan.ID)
	}
	r.plans[plan.ID] = clonePlan(plan)
	return nil
}

func (r *MemoryPlanRepository) GetByID(_ context.Context, planID string) (*models.SharedPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plan, ok := r.plans[planID]
	if !ok {
		return nil, fmt.Errorf("plan with ID '%s' not found: %w", planID, ErrNotFound)
	}
	return clonePlan(plan), nil
}

func (r *MemoryPlanRepository) List(_ context.Context) ([]*models.SharedPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plans := make([]*models.SharedPlan, 0, len(r.plans))
	for _, p := range r.plans {
		plans = append(plans, clonePlan(p))
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].CreatedAt.After(plans[j].CreatedAt) })
	return plans, nil
}

func (r *MemoryPlanRepository) SetRating(_ context.Context, planID, raterID string, value int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[planID]
	if !ok {
		return fmt.Errorf("plan with ID '%s' not found: %w", planID, ErrNotFound)
	}
	plan.Ratings[raterID] = value
	return nil
}

func (r *MemoryPlanRepository) Delete(_ context.Context, planID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.plans, planID)
	return nil
}

func clonePlan(p *models.SharedPlan) *models.SharedPlan {
	c := *p
	c.Ratings = make(map[string]int, len(p.Ratings))
	for k, v := range p.Ratings {
		c.Ratings[k] = v
	}
	return &c
}

// MemoryFavoriteRepository is an in-memory FavoriteRepository used by tests.
type MemoryFavoriteRepository struct {
	mu        sync.RWMutex
	favorites map[string][]*models.Favorite
	now       func() time.Time
}

// NewMemoryFavoriteRepository creates an empty MemoryFavoriteRepository.
func NewMemoryFavoriteRepository() *MemoryFavoriteRepository {
	return &MemoryFavoriteRepository{favorites: make(map[string][]*models.Favorite), now: time.Now}
}

func (r *MemoryFavoriteRepository) Create(_ context.Context, uid string, fav *models.Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *fav
	c.CreatedAt = r.now().UTC()
	r.favorites[uid] = append(r.favorites[uid], &c)
	return nil
}

func (r *MemoryFavoriteRepository) ListByUser(_ context.Context, uid string) ([]*models.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.favorites[uid]
	out := make([]*models.Favorite, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		c := *stored[i]
		out = append(out, &c)
	}
	return out, nil
}

// MemoryProgressRepository serves fixed progress entries, keyed by UID.
type MemoryProgressRepository struct {
	Entries map[string][]models.ProgressEntry
}

func (r *MemoryProgressRepository) ListByUser(_ context.Context, uid string) ([]models.ProgressEntry, error) {
	entries := r.Entries[uid]
	if entries == nil {
		return []models.ProgressEntry{}, nil
	}
	return entries, nil
}
