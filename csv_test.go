package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestCSV(t *testing.T) *CSVStore {
	t.Helper()
	return NewCSVStore(filepath.Join(t.TempDir(), "trolleywatch-test.csv"))
}

func TestCSVAppendAndLoadRoundTrip(t *testing.T) {
	store := newTestCSV(t)

	records := []EntityRecord{
		sampleRecord("Cork University Hospital", "01/01/2026"),
		sampleRecord("Mercy University Hospital", "02/01/2026"),
	}
	result, err := store.Append(records, false)
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if result.Inserted != 2 {
		t.Fatalf("expected 2 inserted, got %d", result.Inserted)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(loaded))
	}
	if loaded[1] != records[1] {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded[1], records[1])
	}
}

func TestCSVAppendDedupAcrossRuns(t *testing.T) {
	store := newTestCSV(t)
	rec := sampleRecord("Cork University Hospital", "01/01/2026")

	if _, err := store.Append([]EntityRecord{rec}, true); err != nil {
		t.Fatalf("first Append failed: %v", err)
	}

	// A fresh store over the same file sees prior rows as duplicates.
	again := NewCSVStore(store.path)
	result, err := again.Append([]EntityRecord{rec}, true)
	if err != nil {
		t.Fatalf("second Append failed: %v", err)
	}
	if result.Inserted != 0 || result.Duplicates != 1 {
		t.Fatalf("expected pure duplicate, got %+v", result)
	}

	loaded, err := again.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 row, got %d", len(loaded))
	}
}

func TestCSVWritesHeaderOnce(t *testing.T) {
	store := newTestCSV(t)
	rec := sampleRecord("Cork University Hospital", "01/01/2026")

	if _, err := store.Append([]EntityRecord{rec}, false); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := store.Append([]EntityRecord{rec}, false); err != nil {
		t.Fatalf("second Append failed: %v", err)
	}

	data, err := os.ReadFile(store.path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if got := strings.Count(string(data), "report_date"); got != 1 {
		t.Fatalf("expected exactly one header, found %d", got)
	}
}

func TestCSVLoadExclusions(t *testing.T) {
	store := newTestCSV(t)

	records := []EntityRecord{
		sampleRecord("Cork University Hospital", "01/01/2026"),
		sampleRecord("National Total", "01/01/2026"),
	}
	if _, err := store.Append(records, false); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	loaded, err := store.Load("Total")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Hospital != "Cork University Hospital" {
		t.Fatalf("unexpected filtered result: %+v", loaded)
	}
}

func TestCSVRemoveDuplicates(t *testing.T) {
	store := newTestCSV(t)
	rec := sampleRecord("Cork University Hospital", "01/01/2026")

	if _, err := store.Append([]EntityRecord{rec, rec}, false); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	removed, err := store.RemoveDuplicates()
	if err != nil {
		t.Fatalf("RemoveDuplicates failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
}

func TestCSVMissingFileIsEmptyHistory(t *testing.T) {
	store := newTestCSV(t)

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load on missing file should succeed, got %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected no records, got %d", len(loaded))
	}

	removed, err := store.RemoveDuplicates()
	if err != nil {
		t.Fatalf("RemoveDuplicates on missing file should succeed, got %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected 0 removed, got %d", removed)
	}

	// A dedup append against the empty history must still work.
	result, err := store.Append([]EntityRecord{sampleRecord("Cork University Hospital", "01/01/2026")}, true)
	if err != nil {
		t.Fatalf("Append on fresh store failed: %v", err)
	}
	if result.Inserted != 1 {
		t.Fatalf("expected 1 inserted, got %+v", result)
	}
}
