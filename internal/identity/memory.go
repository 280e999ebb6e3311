package identity

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/luminher/luminher-api/internal/core"
	"github.com/luminher/luminher-api/internal/models"
)

type memoryUser struct {
	record   models.UserRecord
	password string
	claims   map[string]interface{}
}

// MemoryProvider is an in-memory core.IdentityProvider and core.TokenVerifier.
// Users are listed in insertion order; page tokens are offsets.
//
// A token verifies if it was registered with AddToken, or if it equals the UID of an
// existing user.
type MemoryProvider struct {
	mu     sync.RWMutex
	users  map[string]*memoryUser
	order  []string
	tokens map[string]string
	now    func() time.Time

	// ListErr, when set, is returned by ListUsers for every page after the first.
	ListErr error
}

// NewMemoryProvider returns an empty MemoryProvider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		users:  make(map[string]*memoryUser),
		tokens: make(map[string]string),
		now:    time.Now,
	}
}

// Add inserts or replaces a user record. Extra claims are stored alongside admin.
func (p *MemoryProvider) Add(rec models.UserRecord, claims map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.users[rec.UID]; !ok {
		p.order = append(p.order, rec.UID)
	}
	stored := map[string]interface{}{}
	for k, v := range claims {
		stored[k] = v
	}
	if rec.Admin {
		stored[models.AdminClaim] = true
	}
	p.users[rec.UID] = &memoryUser{record: rec, claims: stored}
}

// AddToken registers an ID token for uid.
func (p *MemoryProvider) AddToken(token, uid string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[token] = uid
}

// Claims returns a copy of the custom claims stored for uid.
func (p *MemoryProvider) Claims(uid string) map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	u, ok := p.users[uid]
	if !ok {
		return nil
	}
	out := make(map[string]interface{}, len(u.claims))
	for k, v := range u.claims {
		out[k] = v
	}
	return out
}

func (p *MemoryProvider) GetUser(_ context.Context, uid string) (*models.UserRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	u, ok := p.users[uid]
	if !ok {
		return nil, fmt.Errorf("%w: user '%s'", core.ErrNotFound, uid)
	}
	rec := u.record
	return &rec, nil
}

func (p *MemoryProvider) ListUsers(_ context.Context, pageSize int, pageToken string) (*models.UserPage, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	offset := 0
	if pageToken != "" {
		n, err := strconv.Atoi(pageToken)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: malformed page token", core.ErrInvalidArgument)
		}
		offset = n
		if p.ListErr != nil {
			return nil, core.Upstream(serviceName, 503, p.ListErr)
		}
	}
	if pageSize <= 0 {
		pageSize = core.DefaultPageSize
	}
	page := &models.UserPage{Users: []*models.UserRecord{}}
	end := offset + pageSize
	if end > len(p.order) {
		end = len(p.order)
	}
	for i := offset; i < end; i++ {
		rec := p.users[p.order[i]].record
		page.Users = append(page.Users, &rec)
	}
	if end < len(p.order) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page, nil
}

func (p *MemoryProvider) CreateUser(_ context.Context, user models.NewUser) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range p.users {
		if u.record.Email != "" && strings.EqualFold(u.record.Email, user.Email) {
			return "", fmt.Errorf("%w: email '%s'", core.ErrAlreadyExists, user.Email)
		}
	}
	uid := uuid.NewString()
	created := p.now().UTC()
	p.users[uid] = &memoryUser{
		record: models.UserRecord{
			UID:         uid,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			CreatedAt:   &created,
		},
		password: user.Password,
		claims:   map[string]interface{}{},
	}
	p.order = append(p.order, uid)
	return uid, nil
}

func (p *MemoryProvider) DeleteUser(_ context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.users[uid]; !ok {
		return fmt.Errorf("%w: user '%s'", core.ErrNotFound, uid)
	}
	delete(p.users, uid)
	for i, id := range p.order {
		if id == uid {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return nil
}

func (p *MemoryProvider) SetAdmin(_ context.Context, uid string, admin bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[uid]
	if !ok {
		return fmt.Errorf("%w: user '%s'", core.ErrNotFound, uid)
	}
	u.claims[models.AdminClaim] = admin
	u.record.Admin = admin
	return nil
}

func (p *MemoryProvider) PasswordResetLink(_ context.Context, email string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, u := range p.users {
		if strings.EqualFold(u.record.Email, email) {
			return "https://example.test/reset?oobCode=" + u.record.UID, nil
		}
	}
	return "", fmt.Errorf("%w: no user with email '%s'", core.ErrNotFound, email)
}

func (p *MemoryProvider) VerifyIDToken(_ context.Context, idToken string) (*models.Caller, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	uid, ok := p.tokens[idToken]
	if !ok {
		uid = idToken
	}
	u, ok := p.users[uid]
	if !ok {
		if _, registered := p.tokens[idToken]; !registered {
			return nil, fmt.Errorf("%w: invalid ID token", core.ErrUnauthenticated)
		}
		// Registered token whose identity has since been deleted.
		return &models.Caller{UID: uid, Claims: map[string]interface{}{}}, nil
	}
	claims := map[string]interface{}{"email": u.record.Email}
	if u.record.DisplayName != "" {
		claims["name"] = u.record.DisplayName
	}
	for k, v := range u.claims {
		claims[k] = v
	}
	return &models.Caller{UID: uid, Email: u.record.Email, Claims: claims}, nil
}
