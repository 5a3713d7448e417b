package domain

import "strings"

// Category is a population classification used to slice the observation table.
type Category string

const (
	CategoryAll      Category = "全体"
	CategoryResident Category = "住人"
	CategoryVisitor  Category = "来訪者"
)

var categoryAliases = map[string]Category{
	"all":      CategoryAll,
	"resident": CategoryResident,
	"visitor":  CategoryVisitor,
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return []Category{CategoryAll, CategoryResident, CategoryVisitor}
}

// Known reports whether c is one of the fixed categories.
func (c Category) Known() bool {
	switch c {
	case CategoryAll, CategoryResident, CategoryVisitor:
		return true
	}
	return false
}

// Alias returns the English alias, or "" for unknown categories.
func (c Category) Alias() string {
	for alias, cat := range categoryAliases {
		if cat == c {
			return alias
		}
	}
	return ""
}

// ParseCategory maps a source label or English alias to a Category.
// Unrecognized input is returned as-is so filtering yields an empty result.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	if c, ok := categoryAliases[strings.ToLower(s)]; ok {
		return c
	}
	return Category(s)
}
