package core

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"homestock/pkg/domain"
)

// Sentinel errors surfaced to callers. None of them is fatal: every error
// path leaves the canonical snapshot in its last valid state.
var (
	// ErrEmptyName rejects creating an item or category with a blank name.
	ErrEmptyName = errors.New("name must not be empty")
	// ErrDuplicateCategory rejects adding a category name that already exists.
	ErrDuplicateCategory = errors.New("category already exists")
	// ErrProtectedCategory rejects removing one of the built-in categories.
	ErrProtectedCategory = errors.New("default categories cannot be removed")
	// ErrDuplicateShopping signals that an unchecked shopping item with the
	// same name already exists; add-to-cart does not create a second entry.
	ErrDuplicateShopping = errors.New("item already on the shopping list")
	// ErrPersistence wraps a failed canonical write. The in-memory state
	// remains usable; only durability is lost for that write.
	ErrPersistence = errors.New("persist snapshot")
	// ErrNoStagedImport signals a commit without a staged candidate.
	ErrNoStagedImport = errors.New("no staged import")
)

// Service owns the canonical snapshot and exposes every mutation, query, and
// exchange operation over it. It is a single-writer engine: operations run to
// completion before the next one starts, and each successful mutation is
// followed by a synchronous full-snapshot save.
type Service struct {
	store   domain.SnapshotStore
	log     *slog.Logger
	metrics MetricsRecorder
	nowFn   func() string
	idFn    func() string

	snap    domain.Snapshot
	pending *domain.Snapshot
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger. Defaults to a discard logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics sets the metrics recorder. Defaults to a no-op recorder.
func WithMetrics(rec MetricsRecorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithClock overrides the timestamp source for tests.
func WithClock(nowFn func() string) Option {
	return func(s *Service) {
		if nowFn != nil {
			s.nowFn = nowFn
		}
	}
}

// WithIDGenerator overrides the id source for tests.
func WithIDGenerator(idFn func() string) Option {
	return func(s *Service) {
		if idFn != nil {
			s.idFn = idFn
		}
	}
}

// NewService loads the canonical snapshot from store and returns a ready
// engine. Load never yields an unusable snapshot, so the only failures are
// infrastructure ones.
func NewService(store domain.SnapshotStore, opts ...Option) (*Service, error) {
	s := &Service{
		store:   store,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: noopMetrics{},
		nowFn:   NowISO,
		idFn:    NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	snap, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	s.snap = snap
	return s, nil
}

// Snapshot returns a deep copy of the canonical snapshot.
func (s *Service) Snapshot() domain.Snapshot { return s.snap.Clone() }

// Categories returns the registry in order.
func (s *Service) Categories() []string {
	return append([]string(nil), s.snap.Categories...)
}

// CategoryColor returns the display color for a category against the current
// registry.
func (s *Service) CategoryColor(name string) domain.Color {
	return domain.ColorOf(name, s.snap.Categories)
}

// persist saves the canonical snapshot, keeping the stamped copy in memory
// even when the write fails.
func (s *Service) persist(op string) error {
	start := time.Now()
	saved, err := s.store.Save(s.snap)
	s.snap = saved
	if err != nil {
		s.metrics.Observe(op, false, time.Since(start))
		s.log.Warn("snapshot save failed, in-memory state remains usable",
			"operation", op, "error", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.metrics.Observe(op, true, time.Since(start))
	return nil
}

// AddShoppingItem appends a new unchecked shopping item.
func (s *Service) AddShoppingItem(name, category string) (domain.ShoppingItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ShoppingItem{}, ErrEmptyName
	}
	now := s.nowFn()
	item := domain.ShoppingItem{
		ID:        s.idFn(),
		Name:      name,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.snap.ShoppingItems = append(s.snap.ShoppingItems, item)
	return item, s.persist("add_shopping_item")
}

// ToggleShoppingItem flips the checked state of a shopping item. The
// transition to checked replenishes stock (see replenishStock); the
// transition back is intentionally asymmetric and leaves stock untouched.
// An unknown id is a silent no-op (ok=false): it only arises from stale
// references.
func (s *Service) ToggleShoppingItem(id string) (domain.ShoppingItem, bool, error) {
	idx := s.findShopping(id)
	if idx < 0 {
		return domain.ShoppingItem{}, false, nil
	}
	item := &s.snap.ShoppingItems[idx]
	item.Checked = !item.Checked
	item.UpdatedAt = s.nowFn()
	if item.Checked {
		s.replenishStock(item.Name, item.Category)
	}
	return *item, true, s.persist("toggle_shopping_item")
}

// DeleteShoppingItem removes a shopping item. Unknown ids are silent no-ops.
func (s *Service) DeleteShoppingItem(id string) error {
	idx := s.findShopping(id)
	if idx < 0 {
		return nil
	}
	s.snap.ShoppingItems = append(s.snap.ShoppingItems[:idx], s.snap.ShoppingItems[idx+1:]...)
	return s.persist("delete_shopping_item")
}

// AddStockItem appends a new stock item. An empty status defaults to
// sufficient.
func (s *Service) AddStockItem(name, category string, status domain.StockStatus, note string) (domain.StockItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.StockItem{}, ErrEmptyName
	}
	if status == "" {
		status = domain.StockSufficient
	}
	item := domain.StockItem{
		ID:        s.idFn(),
		Name:      name,
		Category:  category,
		Status:    status,
		Note:      note,
		UpdatedAt: s.nowFn(),
	}
	s.snap.StockItems = append(s.snap.StockItems, item)
	return item, s.persist("add_stock_item")
}

// UpdateStockItem replaces the editable fields of a stock item. Unknown ids
// are silent no-ops (ok=false); an empty trimmed name is rejected.
func (s *Service) UpdateStockItem(id, name, category string, status domain.StockStatus, note string) (domain.StockItem, bool, error) {
	idx := s.findStock(id)
	if idx < 0 {
		return domain.StockItem{}, false, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.StockItem{}, false, ErrEmptyName
	}
	item := &s.snap.StockItems[idx]
	item.Name = name
	item.Category = category
	item.Status = status
	item.Note = note
	item.UpdatedAt = s.nowFn()
	return *item, true, s.persist("update_stock_item")
}

// SetStockStatus sets the status of a stock item directly; transitions are
// unconstrained. Unknown ids are silent no-ops.
func (s *Service) SetStockStatus(id string, status domain.StockStatus) (domain.StockItem, bool, error) {
	idx := s.findStock(id)
	if idx < 0 {
		return domain.StockItem{}, false, nil
	}
	item := &s.snap.StockItems[idx]
	item.Status = status
	item.UpdatedAt = s.nowFn()
	return *item, true, s.persist("set_stock_status")
}

// DeleteStockItem removes a stock item. Unknown ids are silent no-ops.
func (s *Service) DeleteStockItem(id string) error {
	idx := s.findStock(id)
	if idx < 0 {
		return nil
	}
	s.snap.StockItems = append(s.snap.StockItems[:idx], s.snap.StockItems[idx+1:]...)
	return s.persist("delete_stock_item")
}

// AddCategory appends a trimmed, non-empty, not-yet-present category name to
// the end of the registry, preserving index-based coloring for existing
// entries.
func (s *Service) AddCategory(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	for _, cat := range s.snap.Categories {
		if cat == name {
			return ErrDuplicateCategory
		}
	}
	s.snap.Categories = append(s.snap.Categories, name)
	return s.persist("add_category")
}

// RemoveCategory removes a non-default category from the registry. Items
// still referencing it keep their stale name and render with the derived
// fallback color.
func (s *Service) RemoveCategory(name string) error {
	if domain.IsDefaultCategory(name) {
		return ErrProtectedCategory
	}
	for i, cat := range s.snap.Categories {
		if cat == name {
			s.snap.Categories = append(s.snap.Categories[:i], s.snap.Categories[i+1:]...)
			return s.persist("remove_category")
		}
	}
	return nil
}

// SetActor persists the device-local actor label consulted at save time.
func (s *Service) SetActor(name string) error {
	if err := s.store.SetActor(strings.TrimSpace(name)); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Actor returns the persisted actor label.
func (s *Service) Actor() string { return s.store.Actor() }

// CreateBackup copies the persisted canonical snapshot into the backup ring.
func (s *Service) CreateBackup() (string, error) {
	return s.store.Backup()
}

// ListBackups returns the retained backups, newest first.
func (s *Service) ListBackups() ([]domain.BackupInfo, error) {
	return s.store.ListBackups()
}

// RestoreBackup replaces the canonical snapshot with the backup under key.
// The store takes a safety backup of the outgoing state first.
func (s *Service) RestoreBackup(key string) error {
	snap, err := s.store.Restore(key)
	if err != nil {
		return err
	}
	s.snap = snap
	return nil
}

func (s *Service) findShopping(id string) int {
	for i := range s.snap.ShoppingItems {
		if s.snap.ShoppingItems[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) findStock(id string) int {
	for i := range s.snap.StockItems {
		if s.snap.StockItems[i].ID == id {
			return i
		}
	}
	return -1
}
