package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// WriteThresholdCSVs writes the inferred thresholds and exact boundaries as
// two CSV files under dir, returning their paths.
func WriteThresholdCSVs(a Analysis, dir string) (string, string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", err
	}

	thresholdsPath := filepath.Join(dir, "inferred_thresholds.csv")
	rows := [][]string{{
		"hospital",
		"green_min", "green_max", "green_count",
		"amber_min", "amber_max", "amber_count",
		"red_min", "red_max", "red_count",
		"amber_threshold", "red_threshold",
	}}
	for _, est := range a.Estimates {
		row := []string{est.Hospital}
		row = append(row, bandStatsCSV(est.Green)...)
		row = append(row, bandStatsCSV(est.Amber)...)
		row = append(row, bandStatsCSV(est.Red)...)
		row = append(row, thresholdCSV(est.AmberThreshold), thresholdCSV(est.RedThreshold))
		rows = append(rows, row)
	}
	if err := writeCSVFile(thresholdsPath, rows); err != nil {
		return "", "", err
	}

	boundariesPath := filepath.Join(dir, "exact_boundaries.csv")
	rows = [][]string{{"hospital", "boundary_type", "below_threshold", "at_threshold", "from_date", "to_date", "proven"}}
	for _, b := range a.Boundaries {
		rows = append(rows, []string{
			b.Hospital, b.Type(),
			strconv.Itoa(b.FromValue), strconv.Itoa(b.ToValue),
			b.FromDate, b.ToDate,
			strconv.FormatBool(b.Proven),
		})
	}
	if err := writeCSVFile(boundariesPath, rows); err != nil {
		return "", "", err
	}

	return thresholdsPath, boundariesPath, nil
}

// ExportXLSX writes the analysis plus region aggregates as a workbook with
// one sheet per output table.
func ExportXLSX(a Analysis, means []RegionMean, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const thresholdsSheet = "Thresholds"
	f.SetSheetName("Sheet1", thresholdsSheet)
	if err := writeSheetRow(f, thresholdsSheet, 1,
		"Hospital", "Green Min", "Green Max", "Green Count",
		"Amber Min", "Amber Max", "Amber Count",
		"Red Min", "Red Max", "Red Count",
		"Amber Threshold", "Red Threshold"); err != nil {
		return err
	}
	for i, est := range a.Estimates {
		if err := writeSheetRow(f, thresholdsSheet, i+2,
			est.Hospital,
			bandStatsCell(est.Green.Min, est.Green.Count), bandStatsCell(est.Green.Max, est.Green.Count), est.Green.Count,
			bandStatsCell(est.Amber.Min, est.Amber.Count), bandStatsCell(est.Amber.Max, est.Amber.Count), est.Amber.Count,
			bandStatsCell(est.Red.Min, est.Red.Count), bandStatsCell(est.Red.Max, est.Red.Count), est.Red.Count,
			thresholdCell(est.AmberThreshold), thresholdCell(est.RedThreshold)); err != nil {
			return err
		}
	}

	const boundariesSheet = "Exact Boundaries"
	if _, err := f.NewSheet(boundariesSheet); err != nil {
		return err
	}
	if err := writeSheetRow(f, boundariesSheet, 1,
		"Hospital", "Transition", "Below Threshold", "At Threshold", "From Date", "To Date", "Proven"); err != nil {
		return err
	}
	for i, b := range a.Boundaries {
		if err := writeSheetRow(f, boundariesSheet, i+2,
			b.Hospital, b.Type(), b.FromValue, b.ToValue, b.FromDate, b.ToDate, b.Proven); err != nil {
			return err
		}
	}

	const distributionSheet = "Distribution"
	if _, err := f.NewSheet(distributionSheet); err != nil {
		return err
	}
	if err := writeSheetRow(f, distributionSheet, 1, "Band", "Threshold", "Hospitals"); err != nil {
		return err
	}
	row := 2
	for _, entry := range []struct {
		band string
		dist map[int]int
	}{{"amber", a.AmberDistribution}, {"red", a.RedDistribution}} {
		thresholds := make([]int, 0, len(entry.dist))
		for t := range entry.dist {
			thresholds = append(thresholds, t)
		}
		sort.Ints(thresholds)
		for _, t := range thresholds {
			if err := writeSheetRow(f, distributionSheet, row, entry.band, t, entry.dist[t]); err != nil {
				return err
			}
			row++
		}
	}

	const regionsSheet = "Region Means"
	if _, err := f.NewSheet(regionsSheet); err != nil {
		return err
	}
	if err := writeSheetRow(f, regionsSheet, 1, "Region", "Mean Total", "Hospitals", "Observations", "Per 10k"); err != nil {
		return err
	}
	for i, m := range means {
		if err := writeSheetRow(f, regionsSheet, i+2, m.Region, m.MeanTotal, m.Hospitals, m.Observations, m.PerTenK); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func writeSheetRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeCSVFile(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

func bandStatsCSV(s BandStats) []string {
	if s.Count == 0 {
		return []string{"", "", "0"}
	}
	return []string{strconv.Itoa(s.Min), strconv.Itoa(s.Max), strconv.Itoa(s.Count)}
}

func thresholdCSV(t *int) string {
	if t == nil {
		return ""
	}
	return strconv.Itoa(*t)
}

func bandStatsCell(v, count int) any {
	if count == 0 {
		return ""
	}
	return v
}

func thresholdCell(t *int) any {
	if t == nil {
		return ""
	}
	return *t
}
