// Package docstore persists the application's single JSON document
// ({users, tokens, loginLogs}) under one key of a key/value repository.
//
// Every mutation is load, modify, save of the whole blob. Update serializes
// callers inside this process only; two processes sharing the same storage
// overwrite each other (last write wins).
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/tripti/internal/logging"
	"github.com/dmitrijs2005/tripti/internal/models"
	"github.com/dmitrijs2005/tripti/internal/storage/kv"
	"github.com/google/uuid"
)

// DocumentKey is the storage key of the document blob.
const DocumentKey = "tripti_db"

type Store struct {
	repo kv.Repository
	log  logging.Logger
	mu   sync.Mutex
}

func New(repo kv.Repository, log logging.Logger) *Store {
	return &Store{repo: repo, log: log.With("component", "docstore")}
}

// Load returns the current document. An absent or malformed blob is replaced
// by an empty document, which is persisted before returning.
func (s *Store) Load(ctx context.Context) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) (*models.Snapshot, error) {
	raw, err := s.repo.Get(ctx, DocumentKey)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	if raw != nil {
		snap := &models.Snapshot{}
		err := json.Unmarshal(raw, snap)
		if err == nil {
			snap.Normalize()
			return snap, nil
		}
		s.log.Warn(ctx, "document is malformed, resetting to empty", "error", err, "bytes", len(raw))
	}

	snap := models.NewSnapshot()
	if err := s.save(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Save replaces the stored document with snap.
func (s *Store) Save(ctx context.Context, snap *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, snap)
}

func (s *Store) save(ctx context.Context, snap *models.Snapshot) error {
	snap.Normalize()
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := s.repo.Set(ctx, DocumentKey, raw); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Update loads the document, applies fn and saves the result. Nothing is
// written when fn returns an error.
func (s *Store) Update(ctx context.Context, fn func(snap *models.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(snap); err != nil {
		return err
	}
	return s.save(ctx, snap)
}

// View loads the document and hands it to fn without saving.
func (s *Store) View(ctx context.Context, fn func(snap *models.Snapshot) error) error {
	snap, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return fn(snap)
}

// GenerateID returns a time-ordered random identifier. Collisions are
// possible in theory and not checked.
func GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
