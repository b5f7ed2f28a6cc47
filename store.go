package main

import "fmt"

// AppendResult reports what an append actually did.
type AppendResult struct {
	Inserted   int
	Duplicates int
}

// RecordStore is the persistence contract: append-only with optional
// duplicate elimination, full-history load with entity-name exclusion, and
// a dedup sweep over already-stored rows.
type RecordStore interface {
	// Append stores records, skipping exact duplicates (all fields equal)
	// when dedup is true.
	Append(records []EntityRecord, dedup bool) (AppendResult, error)
	// Load returns the full history, dropping records whose entity name
	// contains any of the exclude substrings.
	Load(exclude ...string) ([]EntityRecord, error)
	// RemoveDuplicates deletes rows that duplicate an earlier row across
	// every field, returning how many were removed.
	RemoveDuplicates() (int, error)
	Close() error
}

// OpenStore picks the backend by format: "sqlite" (row-store) or "csv"
// (tabular file).
func OpenStore(format, path string) (RecordStore, error) {
	switch format {
	case "sqlite":
		return OpenSQLiteStore(path)
	case "csv":
		return NewCSVStore(path), nil
	default:
		return nil, fmt.Errorf("unknown store format %q (want sqlite or csv)", format)
	}
}
