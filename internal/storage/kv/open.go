package kv

import (
	"context"
	"fmt"
	"time"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Options selects and configures a backend. Prefix and TTL only apply to
// Redis.
type Options struct {
	Backend string
	DSN     string
	Prefix  string
	TTL     time.Duration
}

// Open returns a ready-to-use store for the configured backend.
func Open(ctx context.Context, o Options) (Store, error) {
	switch o.Backend {
	case BackendMemory, "":
		return NewMemoryRepository(), nil
	case BackendSQLite:
		return OpenSQLite(ctx, o.DSN)
	case BackendPostgres:
		return OpenPostgres(ctx, o.DSN)
	case BackendRedis:
		client, err := ConnectRedis(ctx, o.DSN)
		if err != nil {
			return nil, err
		}
		return NewRedisRepository(client, o.Prefix, o.TTL), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", o.Backend)
	}
}
