package core

import (
	"context"

	"github.com/luminher/luminher-api/internal/models"
)

// IdentityProvider is the adapter over the external authentication service.
// Implementations return ErrNotFound / ErrAlreadyExists for the matching provider
// conditions and *UpstreamError for everything else.
type IdentityProvider interface {
	GetUser(ctx context.Context, uid string) (*models.UserRecord, error)
	ListUsers(ctx context.Context, pageSize int, pageToken string) (*models.UserPage, error)
	CreateUser(ctx context.Context, user models.NewUser) (string, error)
	DeleteUser(ctx context.Context, uid string) error
	// SetAdmin writes only the admin custom claim and keeps every other stored claim.
	SetAdmin(ctx context.Context, uid string, admin bool) error
	PasswordResetLink(ctx context.Context, email string) (string, error)
}

// TokenVerifier verifies an identity assertion and returns the caller it proves.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*models.Caller, error)
}

// AdminService implements the admin-only user operations and self-promotion.
type AdminService interface {
	EnsureAdminClaim(ctx context.Context, caller *models.Caller) (*models.EnsureAdminResult, error)
	ListUsers(ctx context.Context, caller *models.Caller, req models.ListUsersRequest) (*models.UserPage, error)
	CreateUser(ctx context.Context, caller *models.Caller, req models.CreateUserRequest) (string, error)
	DeleteUser(ctx context.Context, caller *models.Caller, req models.DeleteUserRequest) error
	SetUserRole(ctx context.Context, caller *models.Caller, req models.SetUserRoleRequest) error
	GenerateResetLink(ctx context.Context, caller *models.Caller, req models.ResetLinkRequest) (string, error)
}

// MetricsService aggregates over every identity.
type MetricsService interface {
	UserMetrics(ctx context.Context) (*models.UserMetrics, error)
	DailySignups(ctx context.Context) (*models.DailySignups, error)
}

// EmailService resolves identities to addresses and dispatches one message.
type EmailService interface {
	Send(ctx context.Context, req models.SendEmailRequest) (int, error)
}

// PlanService manages shared plans and their ratings.
type PlanService interface {
	Share(ctx context.Context, caller *models.Caller, req models.SharePlanRequest) (string, error)
	List(ctx context.Context, caller *models.Caller) ([]models.PlanStats, error)
	Rate(ctx context.Context, caller *models.Caller, req models.RatePlanRequest) (*models.PlanStats, error)
	Remove(ctx context.Context, caller *models.Caller, req models.RemovePlanRequest) error
}

// FavoriteService manages the caller's saved map points.
type FavoriteService interface {
	Save(ctx context.Context, caller *models.Caller, req models.SaveFavoriteRequest) (string, error)
	List(ctx context.Context, caller *models.Caller) ([]*models.Favorite, error)
}

// ProgressService reads a user's progress documents.
type ProgressService interface {
	List(ctx context.Context, uid string) ([]models.ProgressEntry, error)
}
