package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/tripti/internal/allocation"
	"github.com/dmitrijs2005/tripti/internal/audit"
	"github.com/dmitrijs2005/tripti/internal/common"
	"github.com/dmitrijs2005/tripti/internal/config"
	"github.com/dmitrijs2005/tripti/internal/docstore"
	"github.com/dmitrijs2005/tripti/internal/identity"
	"github.com/dmitrijs2005/tripti/internal/logging"
	"github.com/dmitrijs2005/tripti/internal/months"
	"github.com/dmitrijs2005/tripti/internal/session"
	"github.com/dmitrijs2005/tripti/internal/stats"
	"github.com/dmitrijs2005/tripti/internal/storage/kv"
	"github.com/dmitrijs2005/tripti/internal/verify"
)

const (
	sessionPrefix = "tripti:session:"
	closeTimeout  = 5 * time.Second
)

// Stores are the two storage scopes: durable data and the session marker.
type Stores struct {
	Durable kv.Store
	Session kv.Store
}

// Close ends the session scope, so the next process starts logged out, and
// releases both connections.
func (s *Stores) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	clearErr := s.Session.Clear(ctx)
	if clearErr != nil {
		clearErr = fmt.Errorf("clear session scope: %w", clearErr)
	}
	return errors.Join(clearErr, s.Durable.Close(), s.Session.Close())
}

// SessionNamespace returns a key prefix unique to one process. Shared
// backends such as Redis keep each terminal's marker apart under it.
func SessionNamespace() (string, error) {
	id, err := common.MakeRandHexString(8)
	if err != nil {
		return "", fmt.Errorf("session namespace: %w", err)
	}
	return sessionPrefix + id + ":", nil
}

// OpenStores opens both scopes as configured. The session scope accepts
// only backends without durable state of their own.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.SessionBackend {
	case kv.BackendMemory, kv.BackendRedis, "":
	default:
		return nil, fmt.Errorf("%w: %q cannot hold the session scope", common.ErrValidation, cfg.SessionBackend)
	}

	prefix, err := SessionNamespace()
	if err != nil {
		return nil, err
	}

	durable, err := kv.Open(ctx, kv.Options{Backend: cfg.StorageBackend, DSN: cfg.StorageDSN})
	if err != nil {
		return nil, err
	}

	sess, err := kv.Open(ctx, kv.Options{
		Backend: cfg.SessionBackend,
		DSN:     cfg.SessionDSN,
		Prefix:  prefix,
		TTL:     cfg.SessionTTL,
	})
	if err != nil {
		_ = durable.Close()
		return nil, err
	}

	return &Stores{Durable: durable, Session: sess}, nil
}

// NewServices builds the service graph on top of stores.
func NewServices(cfg *config.Config, stores *Stores, log logging.Logger) (Services, error) {
	loc, err := cfg.Location()
	if err != nil {
		return Services{}, err
	}

	doc := docstore.New(stores.Durable, log)
	sessions := session.NewManager(stores.Session, []byte(cfg.SecretKey), cfg.SessionTTL, log)
	verifier := verify.NewMemoryProvider(verify.NewLogNotifier(log), log, verify.WithTTL(cfg.OTPTTL))
	monthSvc := months.NewService(stores.Durable, verifier, log)

	return Services{
		Identity:   identity.NewService(doc, sessions, log, identity.WithDelay(cfg.ConfirmDelay)),
		Months:     monthSvc,
		Allocation: allocation.NewEngine(doc, monthSvc, log, allocation.WithLocation(loc)),
		Stats:      stats.NewAggregator(doc, monthSvc, cfg.MonthlyCapacity),
		Audit:      audit.NewService(doc, stores.Durable, newExporter(cfg), log),
	}, nil
}

func newExporter(cfg *config.Config) audit.Exporter {
	if cfg.S3Bucket != "" {
		return &audit.S3Exporter{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3BaseEndpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		}
	}
	return &audit.FileExporter{Dir: cfg.AuditDir}
}

// Build opens storage and returns a ready App. The returned closer releases
// the storage.
func Build(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	svc, err := NewServices(cfg, stores, log)
	if err != nil {
		_ = stores.Close()
		return nil, nil, err
	}

	return NewApp(svc, in, out, log), stores, nil
}
