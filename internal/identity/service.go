// Package identity handles registration, credential checks and the audit
// trail of logins and logouts.
package identity

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tripti/internal/common"
	"github.com/dmitrijs2005/tripti/internal/docstore"
	"github.com/dmitrijs2005/tripti/internal/logging"
	"github.com/dmitrijs2005/tripti/internal/models"
	"github.com/dmitrijs2005/tripti/internal/session"
)

type Service struct {
	store    *docstore.Store
	sessions *session.Manager
	log      logging.Logger
	delay    time.Duration
	now      func() time.Time
}

type Option func(*Service)

// WithDelay makes Register and RequestPasswordReset wait d before answering.
func WithDelay(d time.Duration) Option { return func(s *Service) { s.delay = d } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(store *docstore.Store, sessions *session.Manager, log logging.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		sessions: sessions,
		log:      log.With("component", "identity"),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// DeriveRole maps an email to its role; see models.RoleForEmail.
func DeriveRole(email string) models.Role {
	return models.RoleForEmail(email)
}

func (s *Service) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register validates req and creates the account.
func (s *Service) Register(ctx context.Context, req SignupRequest) (*models.PublicUser, error) {
	req.Normalize()
	role, err := req.Validate()
	if err != nil {
		return nil, err
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	u, err := s.CreateUser(ctx, req.toUser(role))
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user registered", "user_id", u.ID, "role", string(u.Role))
	return u.Public(), nil
}

// CreateUser stores u with a fresh ID and creation time. A second account for
// the same email is rejected with common.ErrAlreadyExists.
func (s *Service) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	u.Email = common.NormalizeEmail(u.Email)
	if u.Role == models.RoleNone {
		u.Role = models.RoleForEmail(u.Email)
	}

	err := s.store.Update(ctx, func(snap *models.Snapshot) error {
		if snap.FindUserByEmail(u.Email) != nil {
			return fmt.Errorf("%w: an account for %s", common.ErrAlreadyExists, u.Email)
		}
		u.ID = docstore.GenerateID()
		u.CreatedAt = s.now().UTC()
		snap.Users = append(snap.Users, u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByEmail returns the first matching user or common.ErrNotFound.
func (s *Service) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var found *models.User
	err := s.store.View(ctx, func(snap *models.Snapshot) error {
		if u := snap.FindUserByEmail(email); u != nil {
			cp := *u
			found = &cp
			return nil
		}
		return common.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// AuthenticateUser checks credentials and records a login entry. Unknown
// email and wrong password both yield common.ErrUnauthorized and write
// nothing.
func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (*models.PublicUser, error) {
	var user *models.PublicUser
	err := s.store.Update(ctx, func(snap *models.Snapshot) error {
		u := snap.FindUserByEmail(email)
		if u == nil || subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
			return common.ErrUnauthorized
		}
		snap.LoginLogs = append(snap.LoginLogs, s.logEntry(u, models.ActionLogin))
		user = u.Public()
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			s.log.Warn(ctx, "login failed", "email", common.NormalizeEmail(email))
		}
		return nil, err
	}
	s.log.Info(ctx, "login", "user_id", user.ID, "role", string(user.Role))
	return user, nil
}

func (s *Service) logEntry(u *models.User, action models.Action) models.LoginLog {
	return models.LoginLog{
		ID:        docstore.GenerateID(),
		UserID:    u.ID,
		UserName:  u.Name,
		UserRole:  u.Role,
		Action:    action,
		Timestamp: s.now().UTC(),
	}
}

// Login authenticates and starts a session.
func (s *Service) Login(ctx context.Context, email, password string) (*session.Session, error) {
	u, err := s.AuthenticateUser(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.sessions.Start(ctx, *u)
}

// Logout records a logout entry for the session user and ends the session.
// Without a session it does nothing.
func (s *Service) Logout(ctx context.Context) error {
	cur, err := s.sessions.Current(ctx)
	if errors.Is(err, common.ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}

	err = s.store.Update(ctx, func(snap *models.Snapshot) error {
		u := snap.FindUserByID(cur.User.ID)
		if u == nil {
			// account removed by a reset while logged in
			u = &models.User{ID: cur.User.ID, Name: cur.User.Name, Role: cur.User.Role}
		}
		snap.LoginLogs = append(snap.LoginLogs, s.logEntry(u, models.ActionLogout))
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "logout", "user_id", cur.User.ID)
	return s.sessions.End(ctx)
}

// CurrentUser returns the session user or common.ErrNoSession.
func (s *Service) CurrentUser(ctx context.Context) (*models.PublicUser, error) {
	cur, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	return &cur.User, nil
}

// RequireRole returns the session user when it has role, common.ErrForbidden
// when it does not.
func (s *Service) RequireRole(ctx context.Context, role models.Role) (*models.PublicUser, error) {
	u, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if u.Role != role {
		return nil, common.ErrForbidden
	}
	return u, nil
}

// RequestPasswordReset answers the same way whether or not the account
// exists. No message is actually sent.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = common.NormalizeEmail(email)
	if models.RoleForEmail(email) == models.RoleNone {
		return fmt.Errorf("%w: use your university email", common.ErrValidation)
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	_, err := s.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		s.log.Info(ctx, "password reset requested", "email", email)
	case errors.Is(err, common.ErrNotFound):
		s.log.Debug(ctx, "password reset for unknown account", "email", email)
	default:
		return err
	}
	return nil
}

// ListUsers returns the public view of every user with role, or all users
// when role is models.RoleNone.
func (s *Service) ListUsers(ctx context.Context, role models.Role) ([]models.PublicUser, error) {
	var out []models.PublicUser
	err := s.store.View(ctx, func(snap *models.Snapshot) error {
		for i := range snap.Users {
			if role == models.RoleNone || snap.Users[i].Role == role {
				out = append(out, *snap.Users[i].Public())
			}
		}
		return nil
	})
	return out, err
}
