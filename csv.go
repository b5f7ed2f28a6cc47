package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

var csvHeader = []string{
	"report_date", "hospital", "region",
	"ed_trolleys", "ward_trolleys", "total_trolleys", "total_color",
	"surge", "surge_color", "delayed", "delayed_color",
	"waiting_over_24h", "over75_waiting_over_24h",
}

// CSVStore keeps the history in a single flat file. Appends rewrite the
// whole file; the dataset is a few rows per hospital per day, so this stays
// cheap and keeps the dedup logic trivial.
type CSVStore struct {
	path string
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) Append(records []EntityRecord, dedup bool) (AppendResult, error) {
	var result AppendResult
	if len(records) == 0 {
		return result, nil
	}

	existing, err := s.Load()
	if err != nil {
		return result, err
	}

	seen := make(map[string]bool, len(existing))
	for _, rec := range existing {
		seen[rec.dedupKey()] = true
	}

	combined := existing
	for _, rec := range records {
		if dedup && seen[rec.dedupKey()] {
			result.Duplicates++
			continue
		}
		seen[rec.dedupKey()] = true
		combined = append(combined, rec)
		result.Inserted++
	}

	return result, s.write(combined)
}

func (s *CSVStore) Load(exclude ...string) ([]EntityRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// No file yet means no history, same as a fresh database.
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var records []EntityRecord
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) != len(csvHeader) {
			return nil, fmt.Errorf("%s row %d: expected %d fields, got %d", s.path, i+1, len(csvHeader), len(row))
		}
		rec := EntityRecord{
			ReportDate:   row[0],
			Hospital:     row[1],
			Region:       row[2],
			EDTrolleys:   row[3],
			WardTrolleys: row[4],
			Total:        row[5],
			TotalColor:   ColorBand(row[6]),
			Surge:        row[7],
			SurgeColor:   ColorBand(row[8]),
			Delayed:      row[9],
			DelayedColor: ColorBand(row[10]),
			Over24h:      row[11],
			Over75_24h:   row[12],
		}
		if excluded(rec.Hospital, exclude) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *CSVStore) RemoveDuplicates() (int, error) {
	records, err := s.Load()
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(records))
	unique := records[:0]
	for _, rec := range records {
		if seen[rec.dedupKey()] {
			continue
		}
		seen[rec.dedupKey()] = true
		unique = append(unique, rec)
	}

	removed := len(records) - len(unique)
	if removed == 0 {
		return 0, nil
	}
	return removed, s.write(unique)
}

func (s *CSVStore) write(records []EntityRecord) error {
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.ReportDate, rec.Hospital, rec.Region,
			rec.EDTrolleys, rec.WardTrolleys, rec.Total, string(rec.TotalColor),
			rec.Surge, string(rec.SurgeColor), rec.Delayed, string(rec.DelayedColor),
			rec.Over24h, rec.Over75_24h,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}
