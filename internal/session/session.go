// Package session persists the signed-in user between requests.
//
// A Store maps a session id to at most one User. Writes are last-write-wins;
// there is no merge. Middleware binds a Session (store plus id) to each
// request context.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrCorrupt is returned when stored session data cannot be decoded.
var ErrCorrupt = errors.New("session data is corrupt")

// User is the persisted identity.
type User struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsLoggedIn bool   `json:"isLoggedIn"`
}

// Store persists users by session id.
type Store interface {
	// Load returns the user for id. ok is false when nothing is stored.
	Load(ctx context.Context, id string) (u User, ok bool, err error)
	Save(ctx context.Context, id string, u User) error
	Clear(ctx context.Context, id string) error
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// Session is one client's view of a Store.
type Session struct {
	id    string
	store Store
}

// New binds store to id.
func New(store Store, id string) *Session {
	return &Session{id: id, store: store}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// User returns the stored user, if any.
func (s *Session) User(ctx context.Context) (User, bool, error) {
	return s.store.Load(ctx, s.id)
}

// Save stores u, replacing whatever was there.
func (s *Session) Save(ctx context.Context, u User) error {
	return s.store.Save(ctx, s.id, u)
}

// Clear removes the stored user.
func (s *Session) Clear(ctx context.Context) error {
	return s.store.Clear(ctx, s.id)
}

// Authenticated reports whether a logged-in user is stored. Load errors
// count as signed out.
func (s *Session) Authenticated(ctx context.Context) bool {
	u, ok, err := s.User(ctx)
	return err == nil && ok && u.IsLoggedIn
}

type contextKey struct{}

// NewContext returns ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session bound to ctx.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}
