package core

import (
	"testing"

	"homestock/pkg/domain"
)

func querySnapshot() domain.Snapshot {
	return domain.Snapshot{
		Categories: []string{"食料品", "日用品", "消耗品", "その他"},
		ShoppingItems: []domain.ShoppingItem{
			{ID: "1", Name: "Milk", Category: "食料品", CreatedAt: "2025-01-01T00:00:01.000Z"},
			{ID: "2", Name: "Soap", Category: "日用品", Checked: true, CreatedAt: "2025-01-01T00:00:02.000Z"},
			{ID: "3", Name: "Old Sauce", Category: "Imported", CreatedAt: "2025-01-01T00:00:03.000Z"},
			{ID: "4", Name: "Eggs", Category: "食料品", CreatedAt: "2025-01-01T00:00:04.000Z"},
		},
		StockItems: []domain.StockItem{
			{ID: "a", Name: "Rice", Category: "食料品", Status: domain.StockLow, UpdatedAt: "2025-01-01T00:00:01.000Z"},
			{ID: "b", Name: "Tissue", Category: "日用品", Status: domain.StockNone, UpdatedAt: "2025-01-01T00:00:03.000Z"},
			{ID: "c", Name: "Rice Vinegar", Category: "食料品", Status: domain.StockSufficient, UpdatedAt: "2025-01-01T00:00:02.000Z"},
		},
	}
}

func shoppingIDs(items []domain.ShoppingItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestShoppingViewRecentOrder(t *testing.T) {
	got := shoppingIDs(ShoppingView(querySnapshot(), ViewState{}))
	// Unchecked newest-first, then checked.
	want := []string{"4", "3", "1", "2"}
	if !equalIDs(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestShoppingViewCategoryOrder(t *testing.T) {
	got := shoppingIDs(ShoppingView(querySnapshot(), ViewState{Sort: SortCategory}))
	// Unregistered "Imported" sorts ahead of registered categories; within a
	// category, newest first. Checked items trail regardless of category.
	want := []string{"3", "4", "1", "2"}
	if !equalIDs(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestShoppingViewSearchIsCaseInsensitive(t *testing.T) {
	got := ShoppingView(querySnapshot(), ViewState{Search: "mIL"})
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("search result = %+v", got)
	}
}

func TestShoppingViewCategoryFilter(t *testing.T) {
	got := shoppingIDs(ShoppingView(querySnapshot(), ViewState{Category: "食料品"}))
	if !equalIDs(got, []string{"4", "1"}) {
		t.Fatalf("filtered = %v", got)
	}
}

func TestShoppingViewDoesNotMutateSnapshot(t *testing.T) {
	snap := querySnapshot()
	_ = ShoppingView(snap, ViewState{Sort: SortCategory})
	if snap.ShoppingItems[0].ID != "1" {
		t.Fatalf("source snapshot reordered: %v", shoppingIDs(snap.ShoppingItems))
	}
}

func TestStockViewNewestFirst(t *testing.T) {
	got := StockView(querySnapshot(), ViewState{})
	want := []string{"b", "c", "a"}
	for i, item := range got {
		if item.ID != want[i] {
			t.Fatalf("order[%d] = %s, want %s", i, item.ID, want[i])
		}
	}
}

func TestStockViewStatusFilter(t *testing.T) {
	got := StockView(querySnapshot(), ViewState{Status: domain.StockLow})
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("filtered = %+v", got)
	}
}

func TestStockViewSearchAndCategoryCombine(t *testing.T) {
	got := StockView(querySnapshot(), ViewState{Search: "rice", Category: "食料品"})
	if len(got) != 2 {
		t.Fatalf("combined filter = %+v", got)
	}
}

func TestViewsReturnFreshSlices(t *testing.T) {
	snap := querySnapshot()
	a := ShoppingView(snap, ViewState{})
	a[0].Name = "mutated"
	b := ShoppingView(snap, ViewState{})
	if b[0].Name == "mutated" {
		t.Fatal("views share a backing array")
	}
}
