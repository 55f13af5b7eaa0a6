package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError reports a structural defect in a candidate snapshot. The
// validator checks shape only: the three collection fields must be present
// and array-shaped. Field-level types inside items are not validated here;
// items that cannot be decoded are dropped instead (see ParseSnapshot).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid snapshot: field %q %s", e.Field, e.Reason)
}

var requiredArrays = []string{"categories", "shoppingItems", "stockItems"}

// ParseSnapshot decodes and structurally validates a candidate snapshot.
// Unknown extra fields are ignored; missing optional fields are left at their
// zero value for Normalize to backfill. On failure the returned error is a
// *ValidationError naming the offending field.
//
// Items whose trimmed name is empty, or which cannot be decoded at all, are
// dropped here so the query engine never sees an item it cannot sort or
// filter. Everything else passes through verbatim.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, &ValidationError{Field: "(root)", Reason: "is not a JSON object"}
	}
	for _, field := range requiredArrays {
		msg, ok := raw[field]
		if !ok {
			return Snapshot{}, &ValidationError{Field: field, Reason: "is missing"}
		}
		if !isArray(msg) {
			return Snapshot{}, &ValidationError{Field: field, Reason: "is not an array"}
		}
	}

	var snap Snapshot
	// Top-level scalars; a wrong-typed scalar falls back to its default
	// rather than rejecting the candidate.
	if msg, ok := raw["version"]; ok {
		_ = json.Unmarshal(msg, &snap.Version)
	}
	if msg, ok := raw["updatedAt"]; ok {
		_ = json.Unmarshal(msg, &snap.UpdatedAt)
	}
	if msg, ok := raw["updatedBy"]; ok {
		_ = json.Unmarshal(msg, &snap.UpdatedBy)
	}
	if err := json.Unmarshal(raw["categories"], &snap.Categories); err != nil {
		return Snapshot{}, &ValidationError{Field: "categories", Reason: "contains non-string entries"}
	}
	if snap.Categories == nil {
		snap.Categories = []string{}
	}
	snap.ShoppingItems = decodeShoppingItems(raw["shoppingItems"])
	snap.StockItems = decodeStockItems(raw["stockItems"])
	return snap, nil
}

func isArray(msg json.RawMessage) bool {
	trimmed := bytes.TrimLeft(msg, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

func decodeShoppingItems(msg json.RawMessage) []ShoppingItem {
	var entries []json.RawMessage
	if err := json.Unmarshal(msg, &entries); err != nil {
		return []ShoppingItem{}
	}
	items := make([]ShoppingItem, 0, len(entries))
	for _, entry := range entries {
		var item ShoppingItem
		if err := json.Unmarshal(entry, &item); err != nil {
			continue
		}
		if !hasName(item.Name) {
			continue
		}
		items = append(items, item)
	}
	return items
}

func decodeStockItems(msg json.RawMessage) []StockItem {
	var entries []json.RawMessage
	if err := json.Unmarshal(msg, &entries); err != nil {
		return []StockItem{}
	}
	items := make([]StockItem, 0, len(entries))
	for _, entry := range entries {
		var item StockItem
		if err := json.Unmarshal(entry, &item); err != nil {
			continue
		}
		if !hasName(item.Name) {
			continue
		}
		items = append(items, item)
	}
	return items
}

func hasName(name string) bool {
	return strings.TrimSpace(name) != ""
}
