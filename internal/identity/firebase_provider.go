// Package identity adapts the external authentication service to core.IdentityProvider
// and core.TokenVerifier.
package identity

import (
	"context"
	"fmt"
	"time"

	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/errorutils"
	"google.golang.org/api/iterator"

	"github.com/luminher/luminher-api/internal/core"
	"github.com/luminher/luminher-api/internal/models"
)

const serviceName = "firebase-auth"

// FirebaseProvider implements core.IdentityProvider and core.TokenVerifier on a
// Firebase Auth client.
type FirebaseProvider struct {
	client *auth.Client
}

// NewFirebaseProvider wraps an initialized Firebase Auth client.
func NewFirebaseProvider(client *auth.Client) *FirebaseProvider {
	return &FirebaseProvider{client: client}
}

func (p *FirebaseProvider) GetUser(ctx context.Context, uid string) (*models.UserRecord, error) {
	u, err := p.client.GetUser(ctx, uid)
	if err != nil {
		return nil, mapError(err, "get user '%s'", uid)
	}
	return toUserRecord(u), nil
}

func (p *FirebaseProvider) ListUsers(ctx context.Context, pageSize int, pageToken string) (*models.UserPage, error) {
	pager := iterator.NewPager(p.client.Users(ctx, ""), pageSize, pageToken)
	var users []*auth.ExportedUserRecord
	next, err := pager.NextPage(&users)
	if err != nil {
		return nil, mapError(err, "list users")
	}
	page := &models.UserPage{Users: make([]*models.UserRecord, 0, len(users)), NextPageToken: next}
	for _, u := range users {
		page.Users = append(page.Users, toUserRecord(u.UserRecord))
	}
	return page, nil
}

func (p *FirebaseProvider) CreateUser(ctx context.Context, user models.NewUser) (string, error) {
	params := (&auth.UserToCreate{}).Email(user.Email).Password(user.Password)
	if user.DisplayName != "" {
		params = params.DisplayName(user.DisplayName)
	}
	u, err := p.client.CreateUser(ctx, params)
	if err != nil {
		return "", mapError(err, "create user '%s'", user.Email)
	}
	return u.UID, nil
}

func (p *FirebaseProvider) DeleteUser(ctx context.Context, uid string) error {
	if err := p.client.DeleteUser(ctx, uid); err != nil {
		return mapError(err, "delete user '%s'", uid)
	}
	return nil
}

// SetAdmin merges the admin flag into the claims already stored on the record.
func (p *FirebaseProvider) SetAdmin(ctx context.Context, uid string, admin bool) error {
	u, err := p.client.GetUser(ctx, uid)
	if err != nil {
		return mapError(err, "get user '%s'", uid)
	}
	claims := make(map[string]interface{}, len(u.CustomClaims)+1)
	for k, v := range u.CustomClaims {
		claims[k] = v
	}
	claims[models.AdminClaim] = admin
	if err := p.client.SetCustomUserClaims(ctx, uid, claims); err != nil {
		return mapError(err, "set claims for '%s'", uid)
	}
	return nil
}

func (p *FirebaseProvider) PasswordResetLink(ctx context.Context, email string) (string, error) {
	link, err := p.client.PasswordResetLink(ctx, email)
	if err != nil {
		return "", mapError(err, "generate reset link for '%s'", email)
	}
	return link, nil
}

// VerifyIDToken checks signature, expiry and audience of a Firebase ID token.
func (p *FirebaseProvider) VerifyIDToken(ctx context.Context, idToken string) (*models.Caller, error) {
	token, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ID token: %v", core.ErrUnauthenticated, err)
	}
	email, _ := token.Claims["email"].(string)
	return &models.Caller{UID: token.UID, Email: email, Claims: token.Claims}, nil
}

func toUserRecord(u *auth.UserRecord) *models.UserRecord {
	rec := &models.UserRecord{Disabled: u.Disabled}
	if u.UserInfo != nil {
		rec.UID = u.UID
		rec.Email = u.Email
		rec.DisplayName = u.DisplayName
	}
	if admin, ok := u.CustomClaims[models.AdminClaim].(bool); ok {
		rec.Admin = admin
	}
	if u.UserMetadata != nil {
		if u.UserMetadata.CreationTimestamp > 0 {
			t := millisToTime(u.UserMetadata.CreationTimestamp)
			rec.CreatedAt = &t
		}
		if u.UserMetadata.LastLogInTimestamp > 0 {
			t := millisToTime(u.UserMetadata.LastLogInTimestamp)
			rec.LastSignInAt = &t
		}
	}
	return rec
}

func millisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// mapError classifies a Firebase error into the core taxonomy.
func mapError(err error, format string, args ...interface{}) error {
	op := fmt.Sprintf(format, args...)
	switch {
	case auth.IsUserNotFound(err):
		return fmt.Errorf("%w: %s: %v", core.ErrNotFound, op, err)
	case auth.IsEmailAlreadyExists(err), auth.IsUIDAlreadyExists(err):
		return fmt.Errorf("%w: %s: %v", core.ErrAlreadyExists, op, err)
	case errorutils.IsInvalidArgument(err):
		return fmt.Errorf("%w: %s: %v", core.ErrInvalidArgument, op, err)
	}
	status := 0
	if resp := errorutils.HTTPResponse(err); resp != nil {
		status = resp.StatusCode
	}
	return core.Upstream(serviceName, status, fmt.Errorf("%s: %w", op, err))
}
