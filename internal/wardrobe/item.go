// ABOUTME: Wardrobe item record and constructors for built-in and custom garments
// ABOUTME: Custom items get a generated id and the custom library brand

package wardrobe

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	// CustomBrand is the brand assigned to user-uploaded garments.
	CustomBrand = "Custom Library"

	// DefaultCustomName is used when an upload has no name.
	DefaultCustomName = "Unnamed Garment"

	customIDPrefix = "custom-"
)

// Item is a garment that can be layered onto a render.
// ImageRef is either a registry asset id or a literal URL / data URL.
type Item struct {
	ID          string   `json:"id" yaml:"id" toml:"id"`
	Name        string   `json:"name" yaml:"name" toml:"name"`
	ImageRef    string   `json:"image_ref" yaml:"image_ref" toml:"image_ref"`
	Category    Category `json:"category" yaml:"category" toml:"category"`
	SubCategory string   `json:"sub_category,omitempty" yaml:"sub_category,omitempty" toml:"sub_category,omitempty"`
	Brand       string   `json:"brand,omitempty" yaml:"brand,omitempty" toml:"brand,omitempty"`
	Custom      bool     `json:"custom,omitempty" yaml:"custom,omitempty" toml:"custom,omitempty"`
}

// Rank returns the layering rank of the item's category.
func (i Item) Rank() int {
	return i.Category.Rank()
}

// Validate checks the fields required to layer and render the item.
func (i Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("item id is required")
	}
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("item %s: name is required", i.ID)
	}
	if strings.TrimSpace(i.ImageRef) == "" {
		return fmt.Errorf("item %s: image_ref is required", i.ID)
	}
	if strings.TrimSpace(string(i.Category)) == "" {
		return fmt.Errorf("item %s: category is required", i.ID)
	}
	if !ValidSubCategory(i.Category, i.SubCategory) {
		return fmt.Errorf("item %s: sub-category %q does not belong to %s", i.ID, i.SubCategory, i.Category)
	}
	return nil
}

// NewCustomItem builds a user-uploaded garment with a fresh id.
func NewCustomItem(name string, category Category, subCategory, imageRef string) Item {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultCustomName
	}
	return Item{
		ID:          customIDPrefix + uuid.New().String(),
		Name:        name,
		ImageRef:    imageRef,
		Category:    category,
		SubCategory: subCategory,
		Brand:       CustomBrand,
		Custom:      true,
	}
}

// DefaultCatalog returns the items a fresh library is seeded with.
func DefaultCatalog() []Item {
	return []Item{
		{
			ID:          "gemini-sweat",
			Name:        "Gemini Tech Studio",
			ImageRef:    "https://raw.githubusercontent.com/ammaarreshi/app-images/refs/heads/main/gemini-sweat-2.png",
			Category:    TopsOuterwear,
			SubCategory: "Jackets",
			Brand:       "Google Cloud",
		},
	}
}
