package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tripti/internal/docstore"
	"github.com/dmitrijs2005/tripti/internal/logging"
	"github.com/dmitrijs2005/tripti/internal/storage/kv"
)

const stampLayout = "20060102T150405.000Z"

type Service struct {
	store    *docstore.Store
	durable  kv.Repository
	exporter Exporter
	now      func() time.Time
	log      logging.Logger
}

// NewService exports from store. durable is the raw scope behind it and is
// only read by ExportBackup.
func NewService(store *docstore.Store, durable kv.Repository, exporter Exporter, log logging.Logger) *Service {
	return &Service{store: store, durable: durable, exporter: exporter, now: time.Now, log: log.With("component", "audit")}
}

// ObjectName is the name a login log export taken at t is stored under.
func ObjectName(t time.Time) string {
	return "audit/login-logs-" + t.UTC().Format(stampLayout) + ".jsonl"
}

// BackupName is the name a storage backup taken at t is stored under.
func BackupName(t time.Time) string {
	return "backup/tripti-" + t.UTC().Format(stampLayout) + ".json"
}

// ExportLoginLogs writes the whole login log and returns its location and
// the number of entries exported.
func (s *Service) ExportLoginLogs(ctx context.Context) (string, int, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return "", 0, err
	}

	var buf bytes.Buffer
	if err := WriteLoginLogs(&buf, snap.LoginLogs); err != nil {
		return "", 0, err
	}

	loc, err := s.exporter.Export(ctx, ObjectName(s.now()), bytes.NewReader(buf.Bytes()))
	if err != nil {
		s.log.Error(ctx, "audit export failed", "error", err)
		return "", 0, err
	}

	s.log.Info(ctx, "login log exported", "location", loc, "entries", len(snap.LoginLogs))
	return loc, len(snap.LoginLogs), nil
}

// ExportBackup writes every durable key as one JSON object. Values that are
// JSON themselves are embedded as is, anything else as a string.
func (s *Service) ExportBackup(ctx context.Context) (string, int, error) {
	pairs, err := s.durable.List(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("read storage: %w", err)
	}

	doc := make(map[string]any, len(pairs))
	for k, v := range pairs {
		if json.Valid(v) {
			doc[k] = json.RawMessage(v)
		} else {
			doc[k] = string(v)
		}
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("encode backup: %w", err)
	}

	loc, err := s.exporter.Export(ctx, BackupName(s.now()), bytes.NewReader(raw))
	if err != nil {
		s.log.Error(ctx, "backup failed", "error", err)
		return "", 0, err
	}

	s.log.Info(ctx, "storage backed up", "location", loc, "keys", len(pairs))
	return loc, len(pairs), nil
}
