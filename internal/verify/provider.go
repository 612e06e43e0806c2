// Package verify issues and checks one-time codes used to gate sensitive
// admin actions such as unlocking the month configuration.
package verify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/tripti/internal/common"
	"github.com/dmitrijs2005/tripti/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

// Provider issues a code to a subject (an email address) and verifies it.
type Provider interface {
	Issue(ctx context.Context, subject string) error
	Verify(ctx context.Context, subject, code string) (bool, error)
}

// Notifier delivers a freshly issued code to its subject.
type Notifier interface {
	Deliver(ctx context.Context, subject, code string) error
}

const (
	CodeLength         = 6
	DefaultTTL         = 10 * time.Minute
	DefaultMaxAttempts = 5
)

type challenge struct {
	hash      []byte
	expiresAt time.Time
	attempts  int
}

// MemoryProvider keeps bcrypt hashes of outstanding codes in memory. A code
// is single use and is dropped after it expires or after too many attempts.
type MemoryProvider struct {
	mu          sync.Mutex
	challenges  map[string]*challenge
	notifier    Notifier
	ttl         time.Duration
	maxAttempts int
	cost        int
	now         func() time.Time
	log         logging.Logger
}

type Option func(*MemoryProvider)

func WithTTL(ttl time.Duration) Option { return func(p *MemoryProvider) { p.ttl = ttl } }

func WithMaxAttempts(n int) Option { return func(p *MemoryProvider) { p.maxAttempts = n } }

func WithClock(now func() time.Time) Option { return func(p *MemoryProvider) { p.now = now } }

// WithCost sets the bcrypt cost; tests use bcrypt.MinCost.
func WithCost(cost int) Option { return func(p *MemoryProvider) { p.cost = cost } }

func NewMemoryProvider(n Notifier, log logging.Logger, opts ...Option) *MemoryProvider {
	p := &MemoryProvider{
		challenges:  make(map[string]*challenge),
		notifier:    n,
		ttl:         DefaultTTL,
		maxAttempts: DefaultMaxAttempts,
		cost:        bcrypt.DefaultCost,
		now:         time.Now,
		log:         log.With("component", "verify"),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Issue replaces any outstanding code for subject and delivers a new one.
func (p *MemoryProvider) Issue(ctx context.Context, subject string) error {
	subject = common.NormalizeEmail(subject)

	code, err := common.MakeRandDigits(CodeLength)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), p.cost)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}

	p.mu.Lock()
	p.challenges[subject] = &challenge{hash: hash, expiresAt: p.now().Add(p.ttl)}
	p.mu.Unlock()

	if err := p.notifier.Deliver(ctx, subject, code); err != nil {
		p.mu.Lock()
		delete(p.challenges, subject)
		p.mu.Unlock()
		return fmt.Errorf("deliver code: %w", err)
	}

	p.log.Info(ctx, "verification code issued", "subject", subject, "expires_in", p.ttl.String())
	return nil
}

// Verify reports whether code matches the outstanding challenge. A match
// consumes the challenge.
func (p *MemoryProvider) Verify(ctx context.Context, subject, code string) (bool, error) {
	subject = common.NormalizeEmail(subject)

	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.challenges[subject]
	if !ok {
		return false, nil
	}
	if p.now().After(c.expiresAt) {
		delete(p.challenges, subject)
		return false, nil
	}

	if bcrypt.CompareHashAndPassword(c.hash, []byte(code)) == nil {
		delete(p.challenges, subject)
		return true, nil
	}

	c.attempts++
	if c.attempts >= p.maxAttempts {
		delete(p.challenges, subject)
		p.log.Warn(ctx, "verification attempts exhausted", "subject", subject)
	}
	return false, nil
}
