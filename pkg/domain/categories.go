package domain

import "unicode/utf16"

// Color is a hex CSS color carried as display metadata for a category.
type Color string

// The four built-in categories. They cannot be removed and keep fixed colors.
var defaultCategories = []string{"食料品", "日用品", "消耗品", "その他"}

var defaultColors = map[string]Color{
	"食料品": "#4CAF50",
	"日用品": "#2196F3",
	"消耗品": "#FF9800",
	"その他": "#9E9E9E",
}

// extraPalette colors non-default categories by their index offset into the
// registry, wrapping around. Order matters: it keeps colors stable across
// devices that share the same registry.
var extraPalette = []Color{
	"#AB47BC", "#EF5350", "#26C6DA", "#8D6E63",
	"#78909C", "#EC407A", "#66BB6A", "#FFA726",
}

// DefaultCategoryList returns a fresh copy of the built-in category names in
// registry order.
func DefaultCategoryList() []string {
	return append([]string(nil), defaultCategories...)
}

// IsDefaultCategory reports whether name is one of the built-in categories.
func IsDefaultCategory(name string) bool {
	_, ok := defaultColors[name]
	return ok
}

// ColorOf returns the deterministic display color for a category name given
// the current registry. Default categories map to their fixed colors.
// Non-default registered categories are colored by their index offset into
// the palette. A name absent from the registry (a stale reference on an
// imported item) falls back to a hash of the name, so the same stale name
// renders the same color on every device.
func ColorOf(name string, categories []string) Color {
	if c, ok := defaultColors[name]; ok {
		return c
	}
	for i, cat := range categories {
		if cat != name {
			continue
		}
		extra := i - len(defaultCategories)
		if extra >= 0 {
			return extraPalette[extra%len(extraPalette)]
		}
		break
	}
	h := int64(nameHash(name))
	if h < 0 {
		h = -h
	}
	return extraPalette[h%int64(len(extraPalette))]
}

// nameHash is the classic 31x string hash over UTF-16 code units with int32
// wrap-around. Snapshots are exchanged with devices that compute category
// fallback colors the same way, so the exact arithmetic is part of the
// interchange contract.
func nameHash(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(u)
	}
	return h
}
