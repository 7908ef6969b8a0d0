package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"qa-gate/internal/models"
)

// Default conditional approval durations in days
const (
	DefaultMaterialDurationDays = 14
	DefaultEntityDurationDays   = 30
)

// DurationTable holds the conditional approval duration per material category and entity type.
//
// Example file:
//
//	materials:
//	  default: 14
//	  categories:
//	    dry_goods: 21
//	    fresh_produce: 7
//	suppliers: 30
//	products: 30
type DurationTable struct {
	Materials MaterialDurations `yaml:"materials"`
	Suppliers int               `yaml:"suppliers"`
	Products  int               `yaml:"products"`
}

// MaterialDurations holds material durations keyed by category
type MaterialDurations struct {
	Default    int            `yaml:"default"`
	Categories map[string]int `yaml:"categories"`
}

// DefaultDurationTable returns the table used when no file is configured
func DefaultDurationTable() *DurationTable {
	return &DurationTable{
		Materials: MaterialDurations{Default: DefaultMaterialDurationDays, Categories: map[string]int{}},
		Suppliers: DefaultEntityDurationDays,
		Products:  DefaultEntityDurationDays,
	}
}

// LoadDurationTable reads a YAML duration table. An empty path yields the defaults;
// entries missing from the file fall back to the defaults as well.
func LoadDurationTable(path string) (*DurationTable, error) {
	table := DefaultDurationTable()
	if strings.TrimSpace(path) == "" {
		return table, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read duration table: %w", err)
	}

	var parsed DurationTable
	if err := yaml.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse duration table: %w", err)
	}

	if parsed.Materials.Default > 0 {
		table.Materials.Default = parsed.Materials.Default
	}
	for category, days := range parsed.Materials.Categories {
		if days <= 0 {
			return nil, fmt.Errorf("duration for material category %q must be positive", category)
		}
		table.Materials.Categories[normalizeCategory(category)] = days
	}
	if parsed.Suppliers > 0 {
		table.Suppliers = parsed.Suppliers
	}
	if parsed.Products > 0 {
		table.Products = parsed.Products
	}

	return table, nil
}

// DaysFor returns the conditional approval duration for a record. The lookup is total:
// unknown categories and tables fall back to the documented defaults.
func (t *DurationTable) DaysFor(table models.EntityTable, category string) int {
	if t == nil {
		t = DefaultDurationTable()
	}
	switch table {
	case models.TableMaterials:
		if days, ok := t.Materials.Categories[normalizeCategory(category)]; ok && days > 0 {
			return days
		}
		if t.Materials.Default > 0 {
			return t.Materials.Default
		}
		return DefaultMaterialDurationDays
	case models.TableSuppliers:
		if t.Suppliers > 0 {
			return t.Suppliers
		}
	case models.TableProducts:
		if t.Products > 0 {
			return t.Products
		}
	}
	return DefaultEntityDurationDays
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
