package core

import (
	"strings"

	"homestock/pkg/domain"
)

// Cross-list synchronization links the two lists by item name, not by id:
// the lists are independently editable, so a shared identity would not
// survive renames and deletions. Matching is case-insensitive on the trimmed
// name.

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// replenishStock records a purchase: the stock item matching name is marked
// sufficient and adopts the shopping item's category, or a new sufficient
// stock item is created when none matches. Only the first match is touched.
func (s *Service) replenishStock(name, category string) {
	for i := range s.snap.StockItems {
		if sameName(s.snap.StockItems[i].Name, name) {
			item := &s.snap.StockItems[i]
			item.Status = domain.StockSufficient
			item.Category = category
			item.UpdatedAt = s.nowFn()
			return
		}
	}
	s.snap.StockItems = append(s.snap.StockItems, domain.StockItem{
		ID:        s.idFn(),
		Name:      strings.TrimSpace(name),
		Category:  category,
		Status:    domain.StockSufficient,
		UpdatedAt: s.nowFn(),
	})
}

// AddStockToShopping puts a stock item onto the shopping list. When an
// unchecked shopping item with the same name already exists the call fails
// with ErrDuplicateShopping; a checked one does not count, the purchase is
// already done and a new round of shopping may begin. Unknown stock ids are
// silent no-ops (ok=false).
func (s *Service) AddStockToShopping(stockID string) (domain.ShoppingItem, bool, error) {
	idx := s.findStock(stockID)
	if idx < 0 {
		return domain.ShoppingItem{}, false, nil
	}
	stock := s.snap.StockItems[idx]
	for i := range s.snap.ShoppingItems {
		if !s.snap.ShoppingItems[i].Checked && sameName(s.snap.ShoppingItems[i].Name, stock.Name) {
			return domain.ShoppingItem{}, false, ErrDuplicateShopping
		}
	}
	now := s.nowFn()
	item := domain.ShoppingItem{
		ID:        s.idFn(),
		Name:      stock.Name,
		Category:  stock.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.snap.ShoppingItems = append(s.snap.ShoppingItems, item)
	return item, true, s.persist("add_stock_to_shopping")
}
