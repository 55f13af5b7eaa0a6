// Package domain defines the persisted household snapshot, its item
// entities, category coloring, structural validation, and the persistence
// abstractions implemented under internal/infra.
package domain

// SchemaVersion is the snapshot schema tag. It is forward-compatible only:
// imported snapshots with a different version are accepted as-is.
const SchemaVersion = 1

// StockStatus is the three-level inventory sufficiency label for a stock item.
type StockStatus string

// Stock status values. Transitions between them are free; there is no
// ordering constraint.
const (
	StockSufficient StockStatus = "sufficient"
	StockLow        StockStatus = "low"
	StockNone       StockStatus = "none"
)

// ShoppingItem is a single entry on the shopping list. Display order is
// derived by the query engine, never stored.
type ShoppingItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Checked   bool   `json:"checked"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// StockItem is a single entry on the stock (inventory) list. Name uniqueness
// is a soft rule enforced only at cross-sync time, not a stored constraint.
type StockItem struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Category  string      `json:"category"`
	Status    StockStatus `json:"status"`
	Note      string      `json:"note"`
	UpdatedAt string      `json:"updatedAt"`
}

// Snapshot is the root persisted aggregate: both lists, the category
// registry, and mutation metadata. It is replaced wholesale by import and
// restore, never destroyed.
//
// Timestamps are carried as ISO-8601 millisecond UTC strings end to end.
// Equal-format ISO strings order lexicographically, and keeping the wire
// representation avoids reformatting another device's data on import.
type Snapshot struct {
	Version       int            `json:"version"`
	UpdatedAt     string         `json:"updatedAt"`
	UpdatedBy     string         `json:"updatedBy"`
	Categories    []string       `json:"categories"`
	ShoppingItems []ShoppingItem `json:"shoppingItems"`
	StockItems    []StockItem    `json:"stockItems"`
}

// DefaultSnapshot returns a fresh snapshot with the four default categories
// and empty lists, stamped with the supplied timestamp.
func DefaultSnapshot(now string) Snapshot {
	return Snapshot{
		Version:       SchemaVersion,
		UpdatedAt:     now,
		Categories:    DefaultCategoryList(),
		ShoppingItems: []ShoppingItem{},
		StockItems:    []StockItem{},
	}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	cp := s
	cp.Categories = append([]string(nil), s.Categories...)
	cp.ShoppingItems = append([]ShoppingItem(nil), s.ShoppingItems...)
	cp.StockItems = append([]StockItem(nil), s.StockItems...)
	return cp
}

// Normalize backfills any absent top-level field with its default so that a
// partial but structurally valid snapshot becomes complete. It is applied
// when committing an import; a partial candidate is repaired, not rejected.
func (s *Snapshot) Normalize(now string) {
	if s.Version == 0 {
		s.Version = SchemaVersion
	}
	if s.UpdatedAt == "" {
		s.UpdatedAt = now
	}
	if s.Categories == nil {
		s.Categories = DefaultCategoryList()
	}
	if s.ShoppingItems == nil {
		s.ShoppingItems = []ShoppingItem{}
	}
	if s.StockItems == nil {
		s.StockItems = []StockItem{}
	}
}
