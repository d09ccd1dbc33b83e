package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"erp-backend/internal/config"
	"erp-backend/internal/models"

	"github.com/google/uuid"
)

const bootstrapFullName = "관리자"

// Manager issues, resolves and revokes server sessions.
type Manager struct {
	cfg   *config.Config
	store SessionStore
	now   func() time.Time
}

func NewManager(cfg *config.Config, store SessionStore) *Manager {
	return &Manager{cfg: cfg, store: store, now: time.Now}
}

// NewStore builds the session store named by the configuration.
func NewStore(cfg *config.Config) (SessionStore, error) {
	switch cfg.SessionStore {
	case "redis":
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "memory", "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("bilinmeyen session store: %s", cfg.SessionStore)
	}
}

func (m *Manager) Store() SessionStore { return m.store }

// Issue persists a session for u and returns it with its token. The token is
// only handed out once the store accepted the session.
func (m *Manager) Issue(ctx context.Context, u *models.User) (string, *Session, error) {
	s := m.newSession()
	s.applyUser(u)
	return m.persist(ctx, s)
}

// IssueBootstrap signs in the configured admin without a users row.
func (m *Manager) IssueBootstrap(ctx context.Context) (string, *Session, error) {
	s := m.newSession()
	s.Bootstrap = true
	s.Email = m.cfg.BootstrapAdminEmail
	s.Username = m.cfg.BootstrapAdminUsername
	s.FullName = bootstrapFullName
	s.Role = models.RoleAdmin
	return m.persist(ctx, s)
}

// MatchBootstrap reports whether the credential is the configured admin.
// It never touches the database.
func (m *Manager) MatchBootstrap(method, identifier, password string) bool {
	if !m.cfg.BootstrapEnabled() || password != m.cfg.BootstrapAdminPassword {
		return false
	}
	switch method {
	case LoginMethodUsername:
		return m.cfg.BootstrapAdminUsername != "" && identifier == m.cfg.BootstrapAdminUsername
	default:
		return m.cfg.BootstrapAdminEmail != "" && identifier == m.cfg.BootstrapAdminEmail
	}
}

// Resolve verifies the token and loads its session.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := ParseToken(m.cfg.JWTSecret, token)
	if err != nil {
		return nil, err
	}
	s, err := m.store.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	if s.Expired(m.now()) || s.UserID != claims.UserID {
		return nil, ErrInvalidSession
	}
	return s, nil
}

// Refresh rewrites the session after the user row changed.
func (m *Manager) Refresh(ctx context.Context, s *Session, u *models.User) error {
	s.applyUser(u)
	return m.store.Save(ctx, s)
}

func (m *Manager) Revoke(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

func (m *Manager) RevokeUser(ctx context.Context, userID uint) error {
	return m.store.DeleteByUser(ctx, userID)
}

func (m *Manager) newSession() *Session {
	now := m.now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.cfg.SessionTTL),
	}
}

func (m *Manager) persist(ctx context.Context, s *Session) (string, *Session, error) {
	if err := m.store.Save(ctx, s); err != nil {
		return "", nil, fmt.Errorf("oturum kaydedilemedi: %w", err)
	}
	token, err := GenerateToken(m.cfg.JWTSecret, s)
	if err != nil {
		_ = m.store.Delete(ctx, s.ID)
		return "", nil, fmt.Errorf("token oluşturulamadı: %w", err)
	}
	return token, s, nil
}
