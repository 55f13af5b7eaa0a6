package domain

import "testing"

func TestDefaultSnapshot(t *testing.T) {
	snap := DefaultSnapshot("2025-01-01T00:00:00.000Z")
	if snap.Version != SchemaVersion {
		t.Fatalf("version = %d, want %d", snap.Version, SchemaVersion)
	}
	if snap.UpdatedAt != "2025-01-01T00:00:00.000Z" {
		t.Fatalf("updatedAt = %s", snap.UpdatedAt)
	}
	if len(snap.Categories) != 4 {
		t.Fatalf("categories = %v", snap.Categories)
	}
	if snap.ShoppingItems == nil || snap.StockItems == nil {
		t.Fatal("lists must be empty, not nil")
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	snap := DefaultSnapshot("2025-01-01T00:00:00.000Z")
	snap.ShoppingItems = append(snap.ShoppingItems, ShoppingItem{ID: "1", Name: "Milk"})
	cp := snap.Clone()
	cp.ShoppingItems[0].Name = "Bread"
	cp.Categories[0] = "changed"
	if snap.ShoppingItems[0].Name != "Milk" {
		t.Fatal("clone shares shopping item backing array")
	}
	if snap.Categories[0] == "changed" {
		t.Fatal("clone shares category backing array")
	}
}

func TestNormalizeBackfillsMissingFields(t *testing.T) {
	snap := Snapshot{}
	snap.Normalize("2025-06-01T12:00:00.000Z")
	if snap.Version != SchemaVersion {
		t.Fatalf("version = %d", snap.Version)
	}
	if snap.UpdatedAt != "2025-06-01T12:00:00.000Z" {
		t.Fatalf("updatedAt = %s", snap.UpdatedAt)
	}
	if len(snap.Categories) != 4 {
		t.Fatalf("categories = %v", snap.Categories)
	}
	if snap.ShoppingItems == nil || snap.StockItems == nil {
		t.Fatal("lists not backfilled")
	}
}

func TestNormalizeKeepsExistingValues(t *testing.T) {
	snap := Snapshot{
		Version:       3,
		UpdatedAt:     "2024-01-01T00:00:00.000Z",
		UpdatedBy:     "ken",
		Categories:    []string{"only"},
		ShoppingItems: []ShoppingItem{{ID: "1", Name: "Tea"}},
		StockItems:    []StockItem{},
	}
	snap.Normalize("2025-06-01T12:00:00.000Z")
	if snap.Version != 3 || snap.UpdatedAt != "2024-01-01T00:00:00.000Z" {
		t.Fatalf("existing metadata overwritten: %+v", snap)
	}
	if len(snap.Categories) != 1 || len(snap.ShoppingItems) != 1 {
		t.Fatalf("existing collections replaced: %+v", snap)
	}
}
