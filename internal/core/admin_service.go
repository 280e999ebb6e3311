package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 1000
)

// adminService implements the AdminService interface.
type adminService struct {
	identity IdentityProvider
	authz    *Authorizer
	policy   AdminPolicy
	logger   *zap.Logger
}

// NewAdminService creates a new AdminService instance.
func NewAdminService(identity IdentityProvider, policy AdminPolicy, logger *zap.Logger) AdminService {
	return &adminService{
		identity: identity,
		authz:    NewAuthorizer(identity),
		policy:   policy,
		logger:   logger,
	}
}

// EnsureAdminClaim promotes the caller (and only the caller) when its email matches the
// admin policy. It never demotes.
func (s *adminService) EnsureAdminClaim(ctx context.Context, caller *models.Caller) (*models.EnsureAdminResult, error) {
	if err := s.authz.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	record, err := s.identity.GetUser(ctx, caller.UID)
	if err != nil {
		return nil, err
	}
	if record.Admin || !s.policy.ShouldBeAdmin(record.Email) {
		return &models.EnsureAdminResult{Updated: false, Admin: record.Admin}, nil
	}
	if err := s.identity.SetAdmin(ctx, record.UID, true); err != nil {
		return nil, err
	}
	s.logger.Info("Admin claim granted by email policy", zap.String("uid", record.UID))
	return &models.EnsureAdminResult{Updated: true, Admin: true}, nil
}

func (s *adminService) ListUsers(ctx context.Context, caller *models.Caller, req models.ListUsersRequest) (*models.UserPage, error) {
	if _, err := s.authz.RequireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.identity.ListUsers(ctx, clampPageSize(req.PageSize), req.PageToken)
}

// CreateUser creates an identity and, when requested, flags it as admin.
func (s *adminService) CreateUser(ctx context.Context, caller *models.Caller, req models.CreateUserRequest) (string, error) {
	if _, err := s.authz.RequireAdmin(ctx, caller); err != nil {
		return "", err
	}
	if err := validateRequest(req); err != nil {
		return "", err
	}
	uid, err := s.identity.CreateUser(ctx, models.NewUser{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return "", err
	}
	if req.Admin {
		if err := s.identity.SetAdmin(ctx, uid, true); err != nil {
			s.logger.Error("User created but admin claim could not be set", zap.String("uid", uid), zap.Error(err))
			return "", fmt.Errorf("user '%s' created without admin flag: %w", uid, err)
		}
	}
	s.logger.Info("User created", zap.String("uid", uid), zap.String("by", caller.UID), zap.Bool("admin", req.Admin))
	return uid, nil
}

func (s *adminService) DeleteUser(ctx context.Context, caller *models.Caller, req models.DeleteUserRequest) error {
	if _, err := s.authz.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		return err
	}
	if err := s.identity.DeleteUser(ctx, req.UID); err != nil {
		return err
	}
	s.logger.Info("User deleted", zap.String("uid", req.UID), zap.String("by", caller.UID))
	return nil
}

func (s *adminService) SetUserRole(ctx context.Context, caller *models.Caller, req models.SetUserRoleRequest) error {
	if _, err := s.authz.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		return err
	}
	if err := s.identity.SetAdmin(ctx, req.UID, *req.Admin); err != nil {
		return err
	}
	s.logger.Info("User role changed", zap.String("uid", req.UID), zap.Bool("admin", *req.Admin), zap.String("by", caller.UID))
	return nil
}

func (s *adminService) GenerateResetLink(ctx context.Context, caller *models.Caller, req models.ResetLinkRequest) (string, error) {
	if _, err := s.authz.RequireAdmin(ctx, caller); err != nil {
		return "", err
	}
	if err := validateRequest(req); err != nil {
		return "", err
	}
	return s.identity.PasswordResetLink(ctx, req.Email)
}

func clampPageSize(n int) int {
	if n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}
