package main

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// recordColumns are the persisted EntityRecord fields, in storage order.
// created_at is bookkeeping and takes no part in duplicate comparison.
var recordColumns = []string{
	"report_date", "hospital", "region",
	"ed_trolleys", "ward_trolleys", "total_trolleys", "total_color",
	"surge", "surge_color", "delayed", "delayed_color",
	"waiting_over_24h", "over75_waiting_over_24h",
}

// SQLiteStore persists records in a single trolley_records table.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS trolley_records (
		id                      INTEGER PRIMARY KEY AUTOINCREMENT,
		report_date             TEXT NOT NULL,
		hospital                TEXT NOT NULL,
		region                  TEXT DEFAULT '',
		ed_trolleys             TEXT DEFAULT '',
		ward_trolleys           TEXT DEFAULT '',
		total_trolleys          TEXT DEFAULT '',
		total_color             TEXT DEFAULT 'none',
		surge                   TEXT DEFAULT '',
		surge_color             TEXT DEFAULT 'none',
		delayed                 TEXT DEFAULT '',
		delayed_color           TEXT DEFAULT 'none',
		waiting_over_24h        TEXT DEFAULT '',
		over75_waiting_over_24h TEXT DEFAULT '',
		created_at              DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trolley_records_date ON trolley_records(report_date);
	CREATE INDEX IF NOT EXISTS idx_trolley_records_hospital ON trolley_records(hospital);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Append(records []EntityRecord, dedup bool) (AppendResult, error) {
	var result AppendResult
	if len(records) == 0 {
		return result, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return result, err
	}
	defer tx.Rollback()

	cols := strings.Join(recordColumns, ", ")
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(recordColumns)), ", ")

	insert, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO trolley_records (%s) VALUES (%s)", cols, marks))
	if err != nil {
		return result, err
	}
	defer insert.Close()

	var exists *sql.Stmt
	if dedup {
		var conds []string
		for _, c := range recordColumns {
			conds = append(conds, c+" = ?")
		}
		exists, err = tx.Prepare(
			"SELECT COUNT(*) FROM trolley_records WHERE " + strings.Join(conds, " AND "))
		if err != nil {
			return result, err
		}
		defer exists.Close()
	}

	for _, rec := range records {
		vals := recordValues(rec)
		if dedup {
			var count int
			if err := exists.QueryRow(vals...).Scan(&count); err != nil {
				return result, err
			}
			if count > 0 {
				result.Duplicates++
				continue
			}
		}
		if _, err := insert.Exec(vals...); err != nil {
			return result, err
		}
		result.Inserted++
	}

	return result, tx.Commit()
}

func (s *SQLiteStore) Load(exclude ...string) ([]EntityRecord, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM trolley_records", strings.Join(recordColumns, ", "))
	var args []any
	for _, pattern := range exclude {
		query += func() string {
			if len(args) == 0 {
				return " WHERE instr(hospital, ?) = 0"
			}
			return " AND instr(hospital, ?) = 0"
		}()
		args = append(args, pattern)
	}
	query += " ORDER BY id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []EntityRecord
	for rows.Next() {
		var rec EntityRecord
		var totalColor, surgeColor, delayedColor string
		if err := rows.Scan(
			&rec.ReportDate, &rec.Hospital, &rec.Region,
			&rec.EDTrolleys, &rec.WardTrolleys, &rec.Total, &totalColor,
			&rec.Surge, &surgeColor, &rec.Delayed, &delayedColor,
			&rec.Over24h, &rec.Over75_24h,
		); err != nil {
			return nil, err
		}
		rec.TotalColor = ColorBand(totalColor)
		rec.SurgeColor = ColorBand(surgeColor)
		rec.DelayedColor = ColorBand(delayedColor)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RemoveDuplicates keeps the earliest of each group of rows that are equal
// across every data column.
func (s *SQLiteStore) RemoveDuplicates() (int, error) {
	var before int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM trolley_records").Scan(&before); err != nil {
		return 0, err
	}

	cols := strings.Join(recordColumns, ", ")
	if _, err := s.db.Exec(fmt.Sprintf(
		`DELETE FROM trolley_records
		 WHERE id NOT IN (SELECT MIN(id) FROM trolley_records GROUP BY %s)`, cols)); err != nil {
		return 0, err
	}

	var after int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM trolley_records").Scan(&after); err != nil {
		return 0, err
	}
	return before - after, nil
}

func recordValues(rec EntityRecord) []any {
	return []any{
		rec.ReportDate, rec.Hospital, rec.Region,
		rec.EDTrolleys, rec.WardTrolleys, rec.Total, string(rec.TotalColor),
		rec.Surge, string(rec.SurgeColor), rec.Delayed, string(rec.DelayedColor),
		rec.Over24h, rec.Over75_24h,
	}
}
