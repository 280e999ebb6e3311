package api

import (
	"github.com/gin-gonic/gin"

	"github.com/luminher/luminher-api/internal/core"
	"github.com/luminher/luminher-api/internal/models"
)

// AdminHandler serves the admin callables.
type AdminHandler struct {
	adminService core.AdminService
	authz        *core.Authorizer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(as core.AdminService, authz *core.Authorizer) *AdminHandler {
	return &AdminHandler{adminService: as, authz: authz}
}

type createUserResult struct {
	UID string `json:"uid"`
}

type resetLinkResult struct {
	Link string `json:"link"`
}

// decodeAsAdmin decodes the payload. A payload that cannot be decoded is reported only
// once the caller has been authorized, so non-admins never learn about input rules.
func (h *AdminHandler) decodeAsAdmin(c *gin.Context, caller *models.Caller, decode func(interface{}) error, dst interface{}) error {
	if err := decode(dst); err != nil {
		if _, authErr := h.authz.RequireAdmin(c.Request.Context(), caller); authErr != nil {
			return authErr
		}
		return err
	}
	return nil
}

// EnsureAdminClaim handles the ensureAdminClaim callable. It takes no input.
func (h *AdminHandler) EnsureAdminClaim(c *gin.Context, caller *models.Caller, _ func(interface{}) error) (interface{}, error) {
	return h.adminService.EnsureAdminClaim(c.Request.Context(), caller)
}

func (h *AdminHandler) ListUsers(c *gin.Context, caller *models.Caller, decode func(interface{}) error) (interface{}, error) {
	var req models.ListUsersRequest
	if err := h.decodeAsAdmin(c, caller, decode, &req); err != nil {
		return nil, err
	}
	return h.adminService.ListUsers(c.Request.Context(), caller, req)
}

func (h *AdminHandler) CreateUser(c *gin.Context, caller *models.Caller, decode func(interface{}) error) (interface{}, error) {
	var req models.CreateUserRequest
	if err := h.decodeAsAdmin(c, caller, decode, &req); err != nil {
		return nil, err
	}
	uid, err := h.adminService.CreateUser(c.Request.Context(), caller, req)
	if err != nil {
		return nil, err
	}
	return createUserResult{UID: uid}, nil
}

func (h *AdminHandler) DeleteUser(c *gin.Context, caller *models.Caller, decode func(interface{}) error) (interface{}, error) {
	var req models.DeleteUserRequest
	if err := h.decodeAsAdmin(c, caller, decode, &req); err != nil {
		return nil, err
	}
	if err := h.adminService.DeleteUser(c.Request.Context(), caller, req); err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func (h *AdminHandler) SetUserRole(c *gin.Context, caller *models.Caller, decode func(interface{}) error) (interface{}, error) {
	var req models.SetUserRoleRequest
	if err := h.decodeAsAdmin(c, caller, decode, &req); err != nil {
		return nil, err
	}
	if err := h.adminService.SetUserRole(c.Request.Context(), caller, req); err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func (h *AdminHandler) GenerateResetLink(c *gin.Context, caller *models.Caller, decode func(interface{}) error) (interface{}, error) {
	var req models.ResetLinkRequest
	if err := h.decodeAsAdmin(c, caller, decode, &req); err != nil {
		return nil, err
	}
	link, err := h.adminService.GenerateResetLink(c.Request.Context(), caller, req)
	if err != nil {
		return nil, err
	}
	return resetLinkResult{Link: link}, nil
}
