// Package session holds the client's signed-in user and the role derived from it.
//
// A Store has a single writer path (SignIn, SignOut, OnAuthStateChanged, Restore);
// readers take snapshots with Current or subscribe to changes.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Role is derived from the user's admin flag.
type Role string

const (
	RoleAnonymous Role = ""
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
)

// User is the signed-in identity as the client knows it.
type User struct {
	UID     string `yaml:"uid"`
	Email   string `yaml:"email"`
	Name    string `yaml:"name"`
	Admin   bool   `yaml:"admin"`
	IDToken string `yaml:"idToken"`
}

// Snapshot is an immutable view of the session.
type Snapshot struct {
	User *User
	Role Role
}

// Authenticated reports whether a user is signed in.
func (s Snapshot) Authenticated() bool { return s.User != nil }

// IsAdmin reports whether the signed-in user holds the admin role.
func (s Snapshot) IsAdmin() bool { return s.Role == RoleAdmin }

// RoleOf derives the role of u. A nil user has no role.
func RoleOf(u *User) Role {
	switch {
	case u == nil:
		return RoleAnonymous
	case u.Admin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Persister stores the session between runs. Load returns (nil, nil) when nothing is stored.
type Persister interface {
	Load() (*User, error)
	Save(u *User) error
	Clear() error
}

// ErrInvalidUser is returned by SignIn for a user without a UID.
var ErrInvalidUser = errors.New("session user must have a UID")

// Store is the session state container.
type Store struct {
	mu        sync.Mutex
	user      *User
	subs      map[int]func(Snapshot)
	nextSub   int
	persister Persister
	logger    *zap.Logger
}

// NewStore creates an empty Store. A nil persister keeps the session in memory only.
func NewStore(p Persister, logger *zap.Logger) *Store {
	if p == nil {
		p = NewMemoryPersister()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{subs: make(map[int]func(Snapshot)), persister: p, logger: logger}
}

// Current returns the current snapshot.
func (s *Store) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	if s.user == nil {
		return Snapshot{}
	}
	u := *s.user
	return Snapshot{User: &u, Role: RoleOf(&u)}
}

// Subscribe registers fn for every change and calls it once with the current snapshot.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	snap := s.snapshotLocked()
	s.mu.Unlock()

	fn(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Restore loads a previously persisted session, if any.
func (s *Store) Restore() error {
	u, err := s.persister.Load()
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if u == nil || u.UID == "" {
		return nil
	}
	s.set(u)
	s.logger.Debug("Session restored", zap.String("uid", u.UID))
	return nil
}

// SignIn replaces the session with u and persists it. A user without a display name
// is named after the local part of their email.
func (s *Store) SignIn(u User) error {
	if u.UID == "" {
		return ErrInvalidUser
	}
	if strings.TrimSpace(u.Name) == "" {
		u.Name = nameFromEmail(u.Email)
	}
	if err := s.persister.Save(&u); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	s.set(&u)
	return nil
}

// SignOut clears the session and its persisted copy.
func (s *Store) SignOut() error {
	if err := s.persister.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.set(nil)
	return nil
}

// OnAuthStateChanged applies a change reported by the identity provider:
// nil signs out, anything else signs in.
func (s *Store) OnAuthStateChanged(u *User) error {
	if u == nil {
		return s.SignOut()
	}
	return s.SignIn(*u)
}

func (s *Store) set(u *User) {
	s.mu.Lock()
	if u != nil {
		c := *u
		s.user = &c
	} else {
		s.user = nil
	}
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func nameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
