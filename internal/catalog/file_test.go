package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSource_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")

	document := `{
		"exhibitions": [{"title": "Silk Roads", "start_date": "2026-01-05", "end_date": "2026-04-20"}],
		"closed_dates": ["2026-12-25"],
		"variants": [{"id": 101, "title": "Adult", "price": 1850}],
		"variant_descriptions": ["101:Entry to all galleries"],
		"gift_aid": {"heading": "Gift Aid it"}
	}`
	if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	catalog, results, err := NewFileSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if failed := FailedPayloads(results); len(failed) != 0 {
		t.Errorf("FailedPayloads() = %v, want none", failed)
	}
	if len(catalog.Exhibitions) != 1 || len(catalog.Variants) != 1 {
		t.Errorf("catalog = %+v, want 1 exhibition and 1 variant", catalog)
	}
}

func TestFileSource_LoadMissingFile(t *testing.T) {
	catalog, results, err := NewFileSource("/nonexistent/catalog.json").Load(context.Background())

	if err == nil {
		t.Error("Load() error = nil, want read failure")
	}
	if failed := FailedPayloads(results); len(failed) != 5 {
		t.Errorf("FailedPayloads() = %v, want all five", failed)
	}
	// Degraded, not broken: the empty catalog still lets the widget start
	if len(catalog.Exhibitions) != 0 || len(catalog.Variants) != 0 {
		t.Errorf("catalog = %+v, want empty defaults", catalog)
	}
}

func TestFileSource_LoadMalformedDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	catalog, results, err := NewFileSource(path).Load(context.Background())

	if err == nil {
		t.Error("Load() error = nil, want decode failure")
	}
	if failed := FailedPayloads(results); len(failed) != 5 {
		t.Errorf("FailedPayloads() = %v, want all five", failed)
	}
	if len(catalog.Variants) != 0 {
		t.Errorf("catalog = %+v, want empty defaults", catalog)
	}
}
