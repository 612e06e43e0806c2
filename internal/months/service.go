// Package months manages the administrator-chosen set of active months.
//
// Exactly three months are configured at once. Confirming them locks the
// configuration; unlocking requires a one-time code sent to the admin.
package months

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/tripti/internal/common"
	"github.com/dmitrijs2005/tripti/internal/logging"
	"github.com/dmitrijs2005/tripti/internal/storage/kv"
	"github.com/dmitrijs2005/tripti/internal/verify"
)

const (
	ConfiguredMonthsKey = "configuredMonths"
	ConfirmedKey        = "monthsConfirmed"

	// Required is the number of months an admin must select.
	Required = 3
)

type Config struct {
	Months    []string
	Confirmed bool
}

// Configured reports whether any months are set. Unlocked months still count.
func (c Config) Configured() bool { return len(c.Months) > 0 }

func (c Config) Contains(label string) bool {
	for _, m := range c.Months {
		if m == label {
			return true
		}
	}
	return false
}

type Service struct {
	repo     kv.Repository
	verifier verify.Provider
	log      logging.Logger
}

func NewService(repo kv.Repository, verifier verify.Provider, log logging.Logger) *Service {
	return &Service{repo: repo, verifier: verifier, log: log.With("component", "months")}
}

// Get reads the configuration. Missing or unreadable values read as empty
// and unlocked.
func (s *Service) Get(ctx context.Context) (Config, error) {
	var cfg Config

	raw, err := s.repo.Get(ctx, ConfiguredMonthsKey)
	if err != nil {
		return Config{}, fmt.Errorf("read configured months: %w", err)
	}
	if raw != nil {
		if err := json.Unmarshal(raw, &cfg.Months); err != nil {
			s.log.Warn(ctx, "configured months unreadable, treating as empty", "error", err)
			cfg.Months = nil
		}
	}

	raw, err = s.repo.Get(ctx, ConfirmedKey)
	if err != nil {
		return Config{}, fmt.Errorf("read months lock: %w", err)
	}
	if raw != nil {
		if err := json.Unmarshal(raw, &cfg.Confirmed); err != nil {
			cfg.Confirmed = false
		}
	}

	return cfg, nil
}

// Confirm stores exactly Required distinct months and locks them.
func (s *Service) Confirm(ctx context.Context, labels []string) (Config, error) {
	cur, err := s.Get(ctx)
	if err != nil {
		return Config{}, err
	}
	if cur.Confirmed {
		return Config{}, common.ErrLocked
	}

	canonical, err := normalize(labels)
	if err != nil {
		return Config{}, err
	}

	rawMonths, err := json.Marshal(canonical)
	if err != nil {
		return Config{}, fmt.Errorf("encode months: %w", err)
	}
	if err := s.repo.SetMany(ctx, map[string][]byte{
		ConfiguredMonthsKey: rawMonths,
		ConfirmedKey:        []byte("true"),
	}); err != nil {
		return Config{}, fmt.Errorf("store months: %w", err)
	}

	s.log.Info(ctx, "months confirmed", "months", canonical)
	return Config{Months: canonical, Confirmed: true}, nil
}

func normalize(labels []string) ([]string, error) {
	if len(labels) != Required {
		return nil, fmt.Errorf("%w: select exactly %d months, got %d", common.ErrValidation, Required, len(labels))
	}
	out := make([]string, 0, len(labels))
	seen := make(map[Month]struct{}, len(labels))
	for _, l := range labels {
		m, err := ParseMonth(l)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[m]; dup {
			return nil, fmt.Errorf("%w: %s selected twice", common.ErrValidation, m)
		}
		seen[m] = struct{}{}
		out = append(out, m.String())
	}
	return out, nil
}

// RequestUnlock sends a one-time code to the admin.
func (s *Service) RequestUnlock(ctx context.Context, adminEmail string) error {
	cfg, err := s.Get(ctx)
	if err != nil {
		return err
	}
	if !cfg.Confirmed {
		return fmt.Errorf("%w: months are not locked", common.ErrValidation)
	}
	return s.verifier.Issue(ctx, adminEmail)
}

// Unlock clears the lock when code is valid. The months themselves are kept
// so they can be edited and confirmed again.
func (s *Service) Unlock(ctx context.Context, adminEmail, code string) error {
	ok, err := s.verifier.Verify(ctx, adminEmail, code)
	if err != nil {
		return fmt.Errorf("verify code: %w", err)
	}
	if !ok {
		return common.ErrInvalidCode
	}
	if err := s.repo.Set(ctx, ConfirmedKey, []byte("false")); err != nil {
		return fmt.Errorf("store months lock: %w", err)
	}
	s.log.Info(ctx, "months unlocked", "by", adminEmail)
	return nil
}
