// ABOUTME: Catalog file loading in TOML, YAML or JSON and JSON export
// ABOUTME: Every loaded item is validated and duplicate ids are rejected

package wardrobe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Catalog is the on-disk shape of a catalog file.
type Catalog struct {
	Items []Item `json:"items" yaml:"items" toml:"items"`
}

// LoadCatalog reads and validates a catalog file. The format is chosen by extension.
func LoadCatalog(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseCatalog(data, filepath.Ext(path))
}

// ParseCatalog decodes catalog data in the format named by ext (".toml", ".yaml", ".yml" or ".json").
func ParseCatalog(data []byte, ext string) ([]Item, error) {
	var cat Catalog

	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cat); err != nil {
			return nil, fmt.Errorf("parsing toml catalog: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cat); err != nil {
			return nil, fmt.Errorf("parsing yaml catalog: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cat); err != nil {
			return nil, fmt.Errorf("parsing json catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}

	seen := make(map[string]struct{}, len(cat.Items))
	for i, item := range cat.Items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("items[%d]: duplicate id %s", i, item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	return cat.Items, nil
}

// ExportCatalog renders items as indented JSON accepted by ParseCatalog.
func ExportCatalog(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	data, err := json.MarshalIndent(Catalog{Items: items}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return data, nil
}
