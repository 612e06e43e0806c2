// Package session keeps the "current user" marker in the session scope.
//
// The marker is an HS256-signed JWT holding the public user fields, so a
// tampered or stale marker reads as no session at all.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tripti/internal/common"
	"github.com/dmitrijs2005/tripti/internal/logging"
	"github.com/dmitrijs2005/tripti/internal/models"
	"github.com/dmitrijs2005/tripti/internal/storage/kv"
)

// CurrentUserKey is the session-scope key of the marker.
const CurrentUserKey = "tripti_current_user"

type Session struct {
	User      models.PublicUser
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Manager struct {
	repo   kv.Repository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    logging.Logger
}

type Option func(*Manager)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(repo kv.Repository, secret []byte, ttl time.Duration, log logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		repo:   repo,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
		log:    log.With("component", "session"),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start replaces any existing marker with one for user.
func (m *Manager) Start(ctx context.Context, user models.PublicUser) (*Session, error) {
	now := m.now()
	token, err := GenerateToken(user, m.secret, now, m.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	if err := m.repo.Set(ctx, CurrentUserKey, []byte(token)); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &Session{User: user, IssuedAt: now.Truncate(time.Second), ExpiresAt: now.Add(m.ttl).Truncate(time.Second)}, nil
}

// Current returns the active session or common.ErrNoSession. Invalid or
// expired markers are removed.
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	raw, err := m.repo.Get(ctx, CurrentUserKey)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if raw == nil {
		return nil, common.ErrNoSession
	}

	claims, err := ParseToken(string(raw), m.secret, m.now)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			m.log.Warn(ctx, "discarding invalid session marker")
		}
		if delErr := m.repo.Delete(ctx, CurrentUserKey); delErr != nil {
			return nil, fmt.Errorf("drop session: %w", delErr)
		}
		return nil, common.ErrNoSession
	}

	return &Session{
		User:      claims.User,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// End removes the marker. Ending without a session is a no-op.
func (m *Manager) End(ctx context.Context) error {
	if err := m.repo.Delete(ctx, CurrentUserKey); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}
