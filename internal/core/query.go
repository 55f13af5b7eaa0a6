package core

import (
	"sort"
	"strings"

	"homestock/pkg/domain"
)

// SortMode selects the shopping-list ordering.
type SortMode string

const (
	// SortRecent orders by creation time, newest first.
	SortRecent SortMode = "recent"
	// SortCategory orders by the category's position in the registry.
	SortCategory SortMode = "category"
)

// ViewState is a declarative filter and sort description. The zero value
// selects everything in recent order.
type ViewState struct {
	// Search is a case-insensitive substring match against item names.
	Search string
	// Category restricts to items of one category; empty means all.
	Category string
	// Status restricts stock items to one status; empty means all. Ignored
	// for the shopping list.
	Status domain.StockStatus
	// Sort selects the shopping-list ordering; empty means SortRecent.
	// Ignored for the stock list, which is always newest first.
	Sort SortMode
}

func matchesSearch(name, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(search))
}

// categoryRank maps a category to its registry index. Names missing from the
// registry rank at -1 and therefore sort ahead of every known category.
func categoryRank(name string, categories []string) int {
	for i, cat := range categories {
		if cat == name {
			return i
		}
	}
	return -1
}

// ShoppingView applies view to the snapshot's shopping list and returns a
// fresh, ordered slice. Unchecked items always precede checked ones; within
// each group the requested sort applies. Timestamps are ISO strings, so
// string comparison is chronological.
func ShoppingView(snap domain.Snapshot, view ViewState) []domain.ShoppingItem {
	out := make([]domain.ShoppingItem, 0, len(snap.ShoppingItems))
	for _, item := range snap.ShoppingItems {
		if !matchesSearch(item.Name, view.Search) {
			continue
		}
		if view.Category != "" && item.Category != view.Category {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Checked != b.Checked {
			return !a.Checked
		}
		if view.Sort == SortCategory {
			ra := categoryRank(a.Category, snap.Categories)
			rb := categoryRank(b.Category, snap.Categories)
			if ra != rb {
				return ra < rb
			}
		}
		return a.CreatedAt > b.CreatedAt
	})
	return out
}

// StockView applies view to the snapshot's stock list and returns a fresh
// slice ordered by last update, newest first.
func StockView(snap domain.Snapshot, view ViewState) []domain.StockItem {
	out := make([]domain.StockItem, 0, len(snap.StockItems))
	for _, item := range snap.StockItems {
		if !matchesSearch(item.Name, view.Search) {
			continue
		}
		if view.Category != "" && item.Category != view.Category {
			continue
		}
		if view.Status != "" && item.Status != view.Status {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt > out[j].UpdatedAt
	})
	return out
}

// Shopping returns the service's shopping list filtered and ordered by view.
func (s *Service) Shopping(view ViewState) []domain.ShoppingItem {
	return ShoppingView(s.snap, view)
}

// Stock returns the service's stock list filtered and ordered by view.
func (s *Service) Stock(view ViewState) []domain.StockItem {
	return StockView(s.snap, view)
}
