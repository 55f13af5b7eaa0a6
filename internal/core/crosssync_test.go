package core

import (
	"errors"
	"testing"

	"homestock/internal/infra/persistence/memory"
	"homestock/pkg/domain"
)

func TestCheckingItemReplenishesMatchingStock(t *testing.T) {
	svc := newTestService(t, memory.NewStore())
	stock, _ := svc.AddStockItem("Milk", "食料品", domain.StockNone, "2 cartons")
	shopping, _ := svc.AddShoppingItem("milk", "日用品")

	if _, _, err := svc.ToggleShoppingItem(shopping.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	got := svc.Snapshot().StockItems[0]
	if got.ID != stock.ID {
		t.Fatal("a new stock item was created instead of updating the match")
	}
	if got.Status != domain.StockSufficient {
		t.Fatalf("status = %s, want sufficient", got.Status)
	}
	if got.Category != "日用品" {
		t.Fatalf("category = %s, want the shopping item's", got.Category)
	}
	if got.Note != "2 cartons" {
		t.Fatalf("note = %q, must be preserved", got.Note)
	}
	if got.UpdatedAt <= stock.UpdatedAt {
		t.Fatal("stock timestamp not advanced")
	}
}

func TestCheckingItemCreatesStockWhenNoMatch(t *testing.T) {
	svc := newTestService(t, memory.NewStore())
	shopping, _ := svc.AddShoppingItem("Butter", "食料品")

	if _, _, err := svc.ToggleShoppingItem(shopping.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	stock := svc.Snapshot().StockItems
	if len(stock) != 1 {
		t.Fatalf("stock items = %d, want 1", len(stock))
	}
	if stock[0].Name != "Butter" || stock[0].Status != domain.StockSufficient || stock[0].Note != "" {
		t.Fatalf("created stock item: %+v", stock[0])
	}
}

func TestUncheckingHasNoStockEffect(t *testing.T) {
	svc := newTestService(t, memory.NewStore())
	shopping, _ := svc.AddShoppingItem("Milk", "")
	if _, _, err := svc.ToggleShoppingItem(shopping.ID); err != nil {
		t.Fatalf("check: %v", err)
	}
	created := svc.Snapshot().StockItems[0]

	item, ok, err := svc.ToggleShoppingItem(shopping.ID)
	if err != nil || !ok || item.Checked {
		t.Fatalf("uncheck: item=%+v ok=%v err=%v", item, ok, err)
	}
	after := svc.Snapshot().StockItems[0]
	if after != created {
		t.Fatalf("uncheck touched stock: %+v vs %+v", after, created)
	}
}

func TestCheckingTouchesOnlyFirstMatch(t *testing.T) {
	svc := newTestService(t, memory.NewStore())
	first, _ := svc.AddStockItem("Milk", "", domain.StockNone, "")
	second, _ := svc.AddStockItem("Milk", "", domain.StockNone, "")
	shopping, _ := svc.AddShoppingItem("Milk", "")

	if _, _, err := svc.ToggleShoppingItem(shopping.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	stock := svc.Snapshot().StockItems
	if stock[0].ID != first.ID || stock[0].Status != domain.StockSufficient {
		t.Fatalf("first match not replenished: %+v", stock[0])
	}
	if stock[1].ID != second.ID || stock[1].Status != domain.StockNone {
		t.Fatalf("second match must stay untouched: %+v", stock[1])
	}
}

func TestAddStockToShopping(t *testing.T) {
	svc := newTestService(t, memory.NewStore())
	stock, _ := svc.AddStockItem("Rice", "食料品", domain.StockLow, "")

	item, ok, err := svc.AddStockToShopping(stock.ID)
	if err != nil || !ok {
		t.Fatalf("add to shopping: ok=%v err=%v", ok, err)
	}
	if item.Name != "Rice" || item.Category != "食料品" || item.Checked {
		t.Fatalf("created shopping item: %+v", item)
	}

	// Unchecked duplicate blocks a second add.
	if _, _, err := svc.AddStockToShopping(stock.ID); !errors.Is(err, ErrDuplicateShopping) {
		t.Fatalf("error = %v, want ErrDuplicateShopping", err)
	}

	// A checked entry does not count as a duplicate.
	if _, _, err := svc.ToggleShoppingItem(item.ID); err != nil {
		t.Fatalf("check: %v", err)
	}
	if _, ok, err := svc.AddStockToShopping(stock.ID); err != nil || !ok {
		t.Fatalf("re-add after purchase: ok=%v err=%v", ok, err)
	}
	if got := len(svc.Snapshot().ShoppingItems); got != 2 {
		t.Fatalf("shopping items = %d, want 2", got)
	}
}

func TestAddStockToShoppingDuplicateIsCaseInsensitive(t *testing.T) {
	svc := newTestService(t, memory.NewStore())
	stock, _ := svc.AddStockItem("Rice", "", domain.StockLow, "")
	if _, err := svc.AddShoppingItem("RICE", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, _, err := svc.AddStockToShopping(stock.ID); !errors.Is(err, ErrDuplicateShopping) {
		t.Fatalf("error = %v, want ErrDuplicateShopping", err)
	}
}

func TestAddStockToShoppingUnknownID(t *testing.T) {
	svc := newTestService(t, memory.NewStore())
	_, ok, err := svc.AddStockToShopping("ghost")
	if ok || err != nil {
		t.Fatalf("unknown id: ok=%v err=%v", ok, err)
	}
}
