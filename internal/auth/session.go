package auth

import (
	"context"
	"errors"
	"time"

	"erp-backend/internal/audit"
	"erp-backend/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidSession  = errors.New("invalid session")
)

// Session is the single server-side record of a signed-in user.
type Session struct {
	ID                    string    `json:"id"`
	UserID                uint      `json:"user_id"`
	Email                 string    `json:"email"`
	Username              string    `json:"username"`
	FullName              string    `json:"full_name"`
	Role                  string    `json:"role"`
	PasswordResetRequired bool      `json:"password_reset_required"`
	Bootstrap             bool      `json:"bootstrap"`
	CreatedAt             time.Time `json:"created_at"`
	ExpiresAt             time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// DisplayName is what list views and audit entries show for this user.
func (s *Session) DisplayName() string {
	if s.FullName != "" {
		return s.FullName
	}
	return s.Username
}

// Actor identifies the session owner for audit entries. The bootstrap admin
// has no users row, so it carries no user id.
func (s *Session) Actor() audit.Actor {
	a := audit.Actor{Name: s.DisplayName()}
	if !s.Bootstrap {
		id := s.UserID
		a.UserID = &id
	}
	return a
}

func (s *Session) applyUser(u *models.User) {
	s.UserID = u.ID
	s.Email = u.Email
	s.Username = u.Username
	s.FullName = u.FullName
	s.Role = u.Role
	s.PasswordResetRequired = u.PasswordResetRequired
}

// SessionStore keeps sessions until they expire or are deleted.
type SessionStore interface {
	Name() string
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID uint) error
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session placed by SessionMiddleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
