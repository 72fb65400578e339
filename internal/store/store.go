// Package store implements the clinic's document store: CRUD and query
// operations over patients, appointments, inventory and the movement
// ledger, all expressed as whole-document read-modify-write cycles
// against the storage gateway. The store owns cross-collection
// invariants (cascade delete, last-visit stamping, stock mutation via
// ledger entries); collaborators call it and get plain data back.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dentora/dentora/internal/document"
	"github.com/dentora/dentora/internal/storage"
)

// Store is the single handle collaborators hold. Construct one at the
// composition root and pass it by reference; there is no global
// instance.
type Store struct {
	gw  *storage.Gateway
	log zerolog.Logger

	// now is swappable in tests.
	now func() time.Time
}

// New returns a store over the given gateway.
func New(gw *storage.Gateway, logger zerolog.Logger) *Store {
	return &Store{gw: gw, log: logger, now: time.Now}
}

// Gateway exposes the underlying storage gateway for diagnostics
// endpoints.
func (s *Store) Gateway() *storage.Gateway { return s.gw }

// Init loads the document (bootstrapping an empty slot), runs the
// schema migration, and persists the result if anything was backfilled.
// Call once at startup, before the store is handed to collaborators.
func (s *Store) Init(ctx context.Context) error {
	doc, err := s.gw.Load(ctx)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	if doc == nil {
		// Seed documents go through the same migration as persisted ones.
		doc = s.gw.Bootstrap(ctx)
	}
	if changed := document.Migrate(doc); changed {
		s.log.Info().Msg("document migrated to current schema")
		if err := s.gw.Save(ctx, doc); err != nil {
			return fmt.Errorf("persist migrated document: %w", err)
		}
	}
	return nil
}

// withDocument is the one mutation path: load (or bootstrap), apply the
// mutator, save. Every write goes through the gateway's size guard
// because of it. The mutator may return errSkipSave to abort without
// persisting.
func (s *Store) withDocument(ctx context.Context, fn func(doc *document.Document) error) error {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		if err == errSkipSave {
			return nil
		}
		return err
	}
	return s.gw.Save(ctx, doc)
}

// errSkipSave aborts a withDocument cycle without persisting, used when
// a lookup inside the mutator misses.
var errSkipSave = fmt.Errorf("store: skip save")

// readDocument loads the current document, bootstrapping when the slot
// is empty.
func (s *Store) readDocument(ctx context.Context) (*document.Document, error) {
	doc, err := s.gw.Load(ctx)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = s.gw.Bootstrap(ctx)
	}
	return doc, nil
}

// Settings returns the clinic settings.
func (s *Store) Settings(ctx context.Context) (document.Settings, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return document.Settings{}, err
	}
	return doc.Settings, nil
}

// UpdateSettings replaces the clinic settings.
func (s *Store) UpdateSettings(ctx context.Context, settings document.Settings) error {
	return s.withDocument(ctx, func(doc *document.Document) error {
		doc.Settings = settings
		return nil
	})
}
