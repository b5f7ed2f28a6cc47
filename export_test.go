package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteThresholdCSVs(t *testing.T) {
	dir := t.TempDir()
	a := sampleAnalysis()

	thresholdsPath, boundariesPath, err := WriteThresholdCSVs(a, dir)
	if err != nil {
		t.Fatalf("WriteThresholdCSVs failed: %v", err)
	}

	rows := readCSVFile(t, thresholdsPath)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 hospitals, got %d rows", len(rows))
	}
	if rows[1][0] != "Cork University Hospital" {
		t.Errorf("unexpected first hospital %q", rows[1][0])
	}
	// Nil thresholds stay blank, never zero.
	amberCol := len(rows[0]) - 2
	if rows[2][amberCol] != "" {
		t.Errorf("nil amber threshold should be blank, got %q", rows[2][amberCol])
	}

	rows = readCSVFile(t, boundariesPath)
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 boundary, got %d rows", len(rows))
	}
	if rows[1][1] != "green→amber" {
		t.Errorf("unexpected boundary type %q", rows[1][1])
	}
}

func TestExportXLSXSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.xlsx")
	means := []RegionMean{{Region: "HSE South West", MeanTotal: 8, Hospitals: 2, Observations: 3}}

	if err := ExportXLSX(sampleAnalysis(), means, path); err != nil {
		t.Fatalf("ExportXLSX failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := map[string]bool{"Thresholds": true, "Exact Boundaries": true, "Distribution": true, "Region Means": true}
	for _, name := range sheets {
		delete(want, name)
	}
	if len(want) != 0 {
		t.Fatalf("missing sheets %v in %v", want, sheets)
	}

	cell, err := f.GetCellValue("Thresholds", "A2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if cell != "Cork University Hospital" {
		t.Errorf("unexpected A2 %q", cell)
	}

	cell, err = f.GetCellValue("Region Means", "A2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if cell != "HSE South West" {
		t.Errorf("unexpected region cell %q", cell)
	}
}

func TestWriteSheetRowSurfacesErrors(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheetRow(f, "Sheet1", 1, "ok"); err != nil {
		t.Fatalf("writeSheetRow to an existing sheet failed: %v", err)
	}
	if err := writeSheetRow(f, "No Such Sheet", 1, "x"); err == nil {
		t.Fatal("writing to a nonexistent sheet must return an error")
	}
}
