package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"qa-gate/internal/models"
)

func TestParseCapabilityMapping(t *testing.T) {
	got := parseCapabilityMapping("qa_manager:qa.approve|override.direct, reviewer : override.review ,broken,:x")
	want := map[string][]string{
		"qa_manager": {"qa.approve", "override.direct"},
		"reviewer":   {"override.review"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseCapabilityMapping = %v, want %v", got, want)
	}

	if len(parseCapabilityMapping("")) != 0 {
		t.Error("empty mapping should produce no entries")
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("OVERRIDE_MAX_FOLLOW_UP_DAYS", "21")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Override.MaxFollowUpDays != 21 {
		t.Errorf("expected follow-up window 21, got %d", cfg.Override.MaxFollowUpDays)
	}
	if cfg.Override.MinJustificationLength != 50 {
		t.Errorf("expected default justification length 50, got %d", cfg.Override.MinJustificationLength)
	}
	if cfg.Override.Durations == nil {
		t.Fatal("expected default duration table")
	}
}

func TestDurationTableDefaults(t *testing.T) {
	table := DefaultDurationTable()

	if got := table.DaysFor(models.TableMaterials, "unknown"); got != 14 {
		t.Errorf("materials default = %d, want 14", got)
	}
	if got := table.DaysFor(models.TableSuppliers, ""); got != 30 {
		t.Errorf("suppliers default = %d, want 30", got)
	}
	if got := table.DaysFor(models.TableProducts, "anything"); got != 30 {
		t.Errorf("products default = %d, want 30", got)
	}

	var nilTable *DurationTable
	if got := nilTable.DaysFor(models.TableMaterials, ""); got != 14 {
		t.Errorf("nil table should use defaults, got %d", got)
	}
}

func TestLoadDurationTableFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "durations.yaml")
	content := `
materials:
  categories:
    Dry_Goods: 21
    fresh_produce: 7
suppliers: 45
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	table, err := LoadDurationTable(path)
	if err != nil {
		t.Fatalf("LoadDurationTable failed: %v", err)
	}

	tests := []struct {
		table    models.EntityTable
		category string
		want     int
	}{
		{models.TableMaterials, "dry_goods", 21},
		{models.TableMaterials, " Fresh_Produce ", 7},
		{models.TableMaterials, "packaging", 14},
		{models.TableSuppliers, "", 45},
		{models.TableProducts, "", 30},
	}
	for _, tt := range tests {
		if got := table.DaysFor(tt.table, tt.category); got != tt.want {
			t.Errorf("DaysFor(%s, %q) = %d, want %d", tt.table, tt.category, got, tt.want)
		}
	}
}

func TestLoadDurationTableRejectsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "durations.yaml")
	if err := os.WriteFile(path, []byte("materials:\n  categories:\n    frozen: 0\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadDurationTable(path); err == nil {
		t.Error("expected error for non-positive duration")
	}

	if _, err := LoadDurationTable(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
