package core

import (
	"encoding/json"
	"fmt"
	"time"

	"homestock/pkg/domain"
)

// ExportContentType is the media type of exported snapshot documents.
const ExportContentType = "application/json"

// ImportSummary describes a staged import candidate so the caller can review
// it before committing.
type ImportSummary struct {
	ShoppingCount int
	StockCount    int
	CategoryCount int
	UpdatedAt     string
	UpdatedBy     string
}

// Export serializes the canonical snapshot verbatim, without re-stamping, and
// returns the document together with a date-suffixed file name.
func (s *Service) Export() ([]byte, string, error) {
	data, err := json.MarshalIndent(s.snap, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("marshal snapshot: %w", err)
	}
	name := "home-stock-" + time.Now().Format("20060102-1504") + ".json"
	return data, name, nil
}

// StageImport validates data as a snapshot document and holds it as the
// pending candidate without touching canonical state. Staging again replaces
// any previous candidate.
func (s *Service) StageImport(data []byte) (ImportSummary, error) {
	cand, err := domain.ParseSnapshot(data)
	if err != nil {
		return ImportSummary{}, err
	}
	s.pending = &cand
	return ImportSummary{
		ShoppingCount: len(cand.ShoppingItems),
		StockCount:    len(cand.StockItems),
		CategoryCount: len(cand.Categories),
		UpdatedAt:     cand.UpdatedAt,
		UpdatedBy:     cand.UpdatedBy,
	}, nil
}

// CommitImport backs up the current canonical snapshot, then replaces it with
// the staged candidate and persists. The candidate is normalized first so
// missing optional fields are backfilled. The pre-import backup makes the
// commit reversible through RestoreBackup.
func (s *Service) CommitImport() error {
	if s.pending == nil {
		return ErrNoStagedImport
	}
	if _, err := s.store.Backup(); err != nil {
		return fmt.Errorf("pre-import backup: %w", err)
	}
	cand := s.pending.Clone()
	cand.Normalize(s.nowFn())
	s.snap = cand
	s.pending = nil
	return s.persist("commit_import")
}

// CancelImport discards the staged candidate. No other state changes.
func (s *Service) CancelImport() {
	s.pending = nil
}
