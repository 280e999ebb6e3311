package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/db"
	"github.com/luminher/luminher-api/internal/models"
)

// planService implements the PlanService interface.
type planService struct {
	repo   db.PlanRepository
	authz  *Authorizer
	clock  func() time.Time
	logger *zap.Logger
}

// NewPlanService creates a new PlanService instance.
func NewPlanService(repo db.PlanRepository, clock func() time.Time, logger *zap.Logger) PlanService {
	if clock == nil {
		clock = time.Now
	}
	return &planService{
		repo:   repo,
		authz:  NewAuthorizer(nil),
		clock:  clock,
		logger: logger,
	}
}

// Share publishes a plan owned by the caller and returns its ID.
func (s *planService) Share(ctx context.Context, caller *models.Caller, req models.SharePlanRequest) (string, error) {
	if err := s.authz.RequireAuthenticated(caller); err != nil {
		return "", err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = models.DefaultPlanTitle
	}
	plan := &models.SharedPlan{
		ID:         uuid.NewString(),
		OwnerID:    caller.UID,
		OwnerName:  ownerName(caller),
		OwnerEmail: caller.Email,
		Title:      title,
		Payload:    req.Payload,
		Ratings:    map[string]int{},
		CreatedAt:  s.clock().UTC(),
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return "", storageError(err)
	}
	s.logger.Info("Plan shared", zap.String("planId", plan.ID), zap.String("owner", caller.UID))
	return plan.ID, nil
}

// List returns every shared plan, newest first, with its rating figures.
func (s *planService) List(ctx context.Context, caller *models.Caller) ([]models.PlanStats, error) {
	if err := s.authz.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	plans, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	out := make([]models.PlanStats, 0, len(plans))
	for _, p := range plans {
		out = append(out, p.Stats())
	}
	return out, nil
}

// Rate records the caller's rating, replacing any earlier rating by the same caller.
func (s *planService) Rate(ctx context.Context, caller *models.Caller, req models.RatePlanRequest) (*models.PlanStats, error) {
	if err := s.authz.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	value, err := models.ClampRating(*req.Value)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	if err := s.repo.SetRating(ctx, req.PlanID, caller.UID, value); err != nil {
		return nil, storageError(err)
	}
	plan, err := s.repo.GetByID(ctx, req.PlanID)
	if err != nil {
		return nil, storageError(err)
	}
	stats := plan.Stats()
	s.logger.Debug("Plan rated",
		zap.String("planId", req.PlanID),
		zap.String("rater", caller.UID),
		zap.Int("value", value),
		zap.Float64("avg", stats.Average))
	return &stats, nil
}

// Remove deletes a plan. Only its owner may do so.
func (s *planService) Remove(ctx context.Context, caller *models.Caller, req models.RemovePlanRequest) error {
	if err := s.authz.RequireAuthenticated(caller); err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		return err
	}
	plan, err := s.repo.GetByID(ctx, req.PlanID)
	if err != nil {
		return storageError(err)
	}
	if plan.OwnerID != caller.UID {
		return fmt.Errorf("%w: only the owner can remove plan '%s'", ErrPermissionDenied, req.PlanID)
	}
	if err := s.repo.Delete(ctx, req.PlanID); err != nil {
		return storageError(err)
	}
	s.logger.Info("Plan removed", zap.String("planId", req.PlanID), zap.String("owner", caller.UID))
	return nil
}

// ownerName prefers the display name carried by the token, then the email local part.
func ownerName(caller *models.Caller) string {
	if name, ok := caller.Claims["name"].(string); ok && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	if at := strings.Index(caller.Email, "@"); at > 0 {
		return caller.Email[:at]
	}
	return caller.Email
}

// storageError translates repository failures into the shared taxonomy.
func storageError(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return Upstream("firestore", 0, err)
}
