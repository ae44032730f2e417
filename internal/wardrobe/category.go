// ABOUTME: Garment categories, layering ranks and sub-category tables
// ABOUTME: Unknown categories are accepted and rank after all known ones

package wardrobe

import (
	"slices"
	"strings"
)

// Category is a top-level garment category.
type Category string

const (
	Underwear     Category = "Underwear"
	Bottoms       Category = "Bottoms"
	SuitsDresses  Category = "Suits & Dresses"
	TopsOuterwear Category = "Tops & Outerwear"
	Shoes         Category = "Shoes"
	Accessories   Category = "Accessories"
	Thematic      Category = "Thematic"
)

// RankCustom is the rank of any category outside the known set.
const RankCustom = 6

// Categories lists the known categories in rank order.
var Categories = []Category{Underwear, TopsOuterwear, SuitsDresses, Bottoms, Shoes, Accessories, Thematic}

// Rank returns the layering rank of c.
func (c Category) Rank() int {
	switch c {
	case Underwear:
		return 0
	case TopsOuterwear, SuitsDresses:
		return 1
	case Bottoms:
		return 2
	case Shoes:
		return 3
	case Accessories:
		return 4
	case Thematic:
		return 5
	default:
		return RankCustom
	}
}

// Known reports whether c is one of the fixed categories.
func (c Category) Known() bool {
	return c.Rank() != RankCustom
}

// ParseCategory matches s against the known categories case-insensitively.
// Any other non-empty name is returned as a custom category.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return Category(s), true
}

// CategoryStructure lists the sub-categories of each known category.
var CategoryStructure = map[Category][]string{
	Underwear:     {"Bottoms", "Tops", "Bodysuits", "Sensual"},
	Bottoms:       {"Pants", "Shorts", "Yoga Pants"},
	SuitsDresses:  {"Skirts", "Dresses", "Suits"},
	TopsOuterwear: {"Coats", "Jackets", "Blouses"},
	Shoes:         {"Heels", "Sneakers", "Boots"},
	Accessories:   {"Handbags", "Jewelry", "Umbrellas", "Ties"},
	Thematic:      {"Sport", "Business", "Industry"},
}

// ThematicSubCategories refines each Thematic sub-category.
var ThematicSubCategories = map[string][]string{
	"Sport":    {"Swimsuits", "Gym Wear", "Yoga"},
	"Business": {"Executive Suits", "Formal Shirts", "Silk Ties"},
	"Industry": {"Aprons", "Lab Coats", "Uniforms", "Theatrical"},
}

// SubCategories returns a copy of the sub-categories for c, or nil for a custom category.
func SubCategories(c Category) []string {
	return slices.Clone(CategoryStructure[c])
}

// ValidSubCategory reports whether sub belongs to c. An empty sub is always
// valid, and custom categories accept any sub-category.
func ValidSubCategory(c Category, sub string) bool {
	if sub == "" || !c.Known() {
		return true
	}
	if slices.Contains(CategoryStructure[c], sub) {
		return true
	}
	if c == Thematic {
		for _, subs := range ThematicSubCategories {
			if slices.Contains(subs, sub) {
				return true
			}
		}
	}
	return false
}
