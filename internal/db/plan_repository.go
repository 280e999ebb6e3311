package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/luminher/luminher-api/internal/models"
)

const (
	plansCollection = "sharedPlans"
	maxListedPlans  = 500
)

// firestorePlanRepository implements the PlanRepository interface using Firestore.
type firestorePlanRepository struct {
	client *firestore.Client
}

// NewFirestorePlanRepository creates a new instance of firestorePlanRepository.
func NewFirestorePlanRepository(client *firestore.Client) PlanRepository {
	return &firestorePlanRepository{client: client}
}

// Create stores a plan under its own ID. The ID must be set by the caller.
func (r *firestorePlanRepository) Create(ctx context.Context, plan *models.SharedPlan) error {
	if plan.ID == "" {
		return errors.New("plan ID cannot be empty for Create operation")
	}
	if plan.Ratings == nil {
		plan.Ratings = map[string]int{}
	}
	if _, err := r.client.Collection(plansCollection).Doc(plan.ID).Create(ctx, plan); err != nil {
		return fmt.Errorf("failed to create plan '%s': %w", plan.ID, err)
	}
	return nil
}

func (r *firestorePlanRepository) GetByID(ctx context.Context, planID string) (*models.SharedPlan, error) {
	if planID == "" {
		return nil, errors.New("planID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(plansCollection).Doc(planID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("plan with ID '%s' not found: %w", planID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get plan with ID '%s': %w", planID, err)
	}
	return decodePlan(docSnap)
}

func (r *firestorePlanRepository) List(ctx context.Context) ([]*models.SharedPlan, error) {
	iter := r.client.Collection(plansCollection).
		OrderBy("createdAt", firestore.Desc).
		Limit(maxListedPlans).
		Documents(ctx)
	defer iter.Stop()

	plans := []*models.SharedPlan{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate plans: %w", err)
		}
		plan, err := decodePlan(docSnap)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// SetRating updates the single ratings.<raterID> field so concurrent raters do not
// overwrite each other.
func (r *firestorePlanRepository) SetRating(ctx context.Context, planID, raterID string, value int) error {
	_, err := r.client.Collection(plansCollection).Doc(planID).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"ratings", raterID}, Value: value},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("plan with ID '%s' not found: %w", planID, ErrNotFound)
		}
		return fmt.Errorf("failed to rate plan '%s': %w", planID, err)
	}
	return nil
}

func (r *firestorePlanRepository) Delete(ctx context.Context, planID string) error {
	if _, err := r.client.Collection(plansCollection).Doc(planID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete plan '%s': %w", planID, err)
	}
	return nil
}

func decodePlan(docSnap *firestore.DocumentSnapshot) (*models.SharedPlan, error) {
	var plan models.SharedPlan
	if err := docSnap.DataTo(&plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan data for ID '%s': %w", docSnap.Ref.ID, err)
	}
	plan.ID = docSnap.Ref.ID
	if plan.Ratings == nil {
		plan.Ratings = map[string]int{}
	}
	return &plan, nil
}
