package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/luminher/luminher-api/internal/models"
)

// Authorizer decides ALLOW/DENY for incoming callers.
//
// Admin checks always re-fetch the identity record by UID; the admin claim embedded in
// the caller's token is ignored because it can lag behind a role change until the
// token is refreshed.
type Authorizer struct {
	identity IdentityProvider
}

// NewAuthorizer creates an Authorizer backed by the given identity provider.
func NewAuthorizer(identity IdentityProvider) *Authorizer {
	return &Authorizer{identity: identity}
}

// RequireAuthenticated fails with ErrUnauthenticated when no assertion was presented.
func (a *Authorizer) RequireAuthenticated(caller *models.Caller) error {
	if caller == nil || caller.UID == "" {
		return fmt.Errorf("%w: sign-in required", ErrUnauthenticated)
	}
	return nil
}

// RequireAdmin returns the caller's current record if it holds the admin flag.
func (a *Authorizer) RequireAdmin(ctx context.Context, caller *models.Caller) (*models.UserRecord, error) {
	if err := a.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	record, err := a.identity.GetUser(ctx, caller.UID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// The token outlived its identity.
			return nil, fmt.Errorf("%w: identity '%s' no longer exists", ErrUnauthenticated, caller.UID)
		}
		return nil, err
	}
	if !record.Admin {
		return nil, fmt.Errorf("%w: admin only", ErrPermissionDenied)
	}
	return record, nil
}
