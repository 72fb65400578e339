package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dentora/dentora/internal/document"
)

// Stats is the dashboard summary derived from the whole document.
type Stats struct {
	TotalPatients       int     `json:"totalPatients"`
	TodayAppointments   int     `json:"todayAppointments"`
	PendingAppointments int     `json:"pendingAppointments"`
	LowStockItems       int     `json:"lowStockItems"`
	TotalInventoryValue float64 `json:"totalInventoryValue"`
}

// Stats computes the dashboard counters.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	today := s.now().Format("2006-01-02")
	st := &Stats{TotalPatients: len(doc.Patients)}
	for _, a := range doc.Appointments {
		if a.Date == today {
			st.TodayAppointments++
		}
		if a.Status == document.StatusPending {
			st.PendingAppointments++
		}
	}
	for _, item := range doc.Inventory {
		if item.Quantity <= item.MinStock {
			st.LowStockItems++
		}
		st.TotalInventoryValue += float64(item.Quantity) * item.Price
	}
	return st, nil
}

// Export returns the whole document as pretty-printed JSON together
// with a download filename carrying the current ISO date.
func (s *Store) Export(ctx context.Context) (string, []byte, error) {
	raw, ok, err := s.gw.RawDocument(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("export: %w", err)
	}
	if !ok {
		doc := s.gw.Bootstrap(ctx)
		if raw, err = json.Marshal(doc); err != nil {
			return "", nil, fmt.Errorf("export: %w", err)
		}
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return "", nil, fmt.Errorf("export: %w", err)
	}
	name := fmt.Sprintf("dentora-backup-%s.json", s.now().Format("2006-01-02"))
	return name, pretty.Bytes(), nil
}

// Import replaces the whole document with the supplied serialized one.
// Malformed input is reported as ok=false with the previously persisted
// state untouched; only storage-level failures surface as errors.
func (s *Store) Import(ctx context.Context, data []byte) (bool, error) {
	var doc document.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn().Err(err).Msg("import rejected: malformed document")
		return false, nil
	}
	doc.Normalize()
	document.Migrate(&doc)
	if err := s.gw.Save(ctx, &doc); err != nil {
		return false, err
	}
	return true, nil
}

// Clear wipes the persisted document and reseeds from the bootstrap
// source, returning the fresh document.
func (s *Store) Clear(ctx context.Context) (*document.Document, error) {
	if err := s.gw.ClearDocument(ctx); err != nil {
		return nil, fmt.Errorf("clear: %w", err)
	}
	return s.gw.Bootstrap(ctx), nil
}
