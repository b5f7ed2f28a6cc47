package main

import (
	"fmt"
	"sort"
)

// nationalTotal is the aggregate pseudo-entity; it has no thresholds of its
// own and is excluded from inference.
const nationalTotal = "National Total"

// Observation is one (count, color) sample for a hospital.
type Observation struct {
	Date  string
	Count int
	Color ColorBand
}

// BandStats summarizes the counts observed with one color. Count == 0 means
// the band was never observed and Min/Max are meaningless.
type BandStats struct {
	Min   int `json:"min"`
	Max   int `json:"max"`
	Count int `json:"count"`
}

func (s *BandStats) add(v int) {
	if s.Count == 0 || v < s.Min {
		s.Min = v
	}
	if s.Count == 0 || v > s.Max {
		s.Max = v
	}
	s.Count++
}

// ThresholdEstimate is the inferred band boundaries for one hospital. A nil
// threshold means the observations lack the color diversity to place it.
type ThresholdEstimate struct {
	Hospital       string    `json:"hospital"`
	Green          BandStats `json:"green"`
	Amber          BandStats `json:"amber"`
	Red            BandStats `json:"red"`
	AmberThreshold *int      `json:"amber_threshold"`
	RedThreshold   *int      `json:"red_threshold"`
}

// ExactBoundary is a proven threshold: two same-hospital observations one
// unit apart with different colors. Everything in ThresholdEstimate is
// inferred; these are the only certain facts.
type ExactBoundary struct {
	Hospital  string    `json:"hospital"`
	FromColor ColorBand `json:"from_color"`
	FromValue int       `json:"below_threshold"`
	ToColor   ColorBand `json:"to_color"`
	ToValue   int       `json:"at_threshold"`
	FromDate  string    `json:"from_date"`
	ToDate    string    `json:"to_date"`
	Proven    bool      `json:"proven"`
}

func (b ExactBoundary) Type() string {
	return fmt.Sprintf("%s→%s", b.FromColor, b.ToColor)
}

// Analysis is the full output of one inference run, recomputed from scratch
// every time.
type Analysis struct {
	Estimates         []ThresholdEstimate `json:"estimates"`
	Boundaries        []ExactBoundary     `json:"exact_boundaries"`
	AmberDistribution map[int]int         `json:"amber_distribution"`
	RedDistribution   map[int]int         `json:"red_distribution"`
}

// AnalyzeThresholds infers per-hospital band boundaries from the full
// record history. Hospitals with zero valid observations are excluded, not
// reported with fabricated numbers.
func AnalyzeThresholds(records []EntityRecord) Analysis {
	series := buildSeries(records)

	hospitals := make([]string, 0, len(series))
	for h := range series {
		hospitals = append(hospitals, h)
	}
	sort.Strings(hospitals)

	analysis := Analysis{
		AmberDistribution: make(map[int]int),
		RedDistribution:   make(map[int]int),
	}
	for _, hospital := range hospitals {
		obs := series[hospital]
		est := estimateThresholds(hospital, obs)
		analysis.Estimates = append(analysis.Estimates, est)
		analysis.Boundaries = append(analysis.Boundaries, scanExactBoundaries(hospital, obs)...)
		if est.AmberThreshold != nil {
			analysis.AmberDistribution[*est.AmberThreshold]++
		}
		if est.RedThreshold != nil {
			analysis.RedDistribution[*est.RedThreshold]++
		}
	}

	sortEstimates(analysis.Estimates)
	return analysis
}

// buildSeries groups numeric total-count observations by hospital,
// preserving record order within a hospital. Null counts, colorless cells,
// and the national aggregate are dropped here.
func buildSeries(records []EntityRecord) map[string][]Observation {
	series := make(map[string][]Observation)
	for _, rec := range records {
		if rec.Hospital == nationalTotal {
			continue
		}
		count, ok := rec.TotalCount()
		if !ok || rec.TotalColor == ColorNone {
			continue
		}
		series[rec.Hospital] = append(series[rec.Hospital], Observation{
			Date:  rec.ReportDate,
			Count: count,
			Color: rec.TotalColor,
		})
	}
	return series
}

// estimateThresholds applies the boundary rules to one hospital's
// observations.
//
// A threshold is only placed when the band below it anchors it: the amber
// threshold needs both green and amber observations, and the red threshold
// refines against amber's max only when the amber band itself is anchored.
// An amber band with no green beneath it gives no amber threshold, and the
// red threshold then falls back to the lowest observed red.
func estimateThresholds(hospital string, obs []Observation) ThresholdEstimate {
	est := ThresholdEstimate{Hospital: hospital}
	for _, o := range obs {
		switch o.Color {
		case ColorGreen:
			est.Green.add(o.Count)
		case ColorAmber:
			est.Amber.add(o.Count)
		case ColorRed:
			est.Red.add(o.Count)
		}
	}

	if est.Green.Count > 0 && est.Amber.Count > 0 {
		est.AmberThreshold = intPtr(min(est.Green.Max+1, est.Amber.Min))
	}

	if est.Red.Count > 0 {
		if est.AmberThreshold != nil {
			est.RedThreshold = intPtr(min(est.Amber.Max+1, est.Red.Min))
		} else {
			est.RedThreshold = intPtr(est.Red.Min)
		}
	}
	return est
}

// scanExactBoundaries sorts one hospital's observations by count and looks
// for adjacent pairs exactly one unit apart with different colors.
func scanExactBoundaries(hospital string, obs []Observation) []ExactBoundary {
	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count < sorted[j].Count })

	var boundaries []ExactBoundary
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.Count-prev.Count == 1 && cur.Color != prev.Color {
			boundaries = append(boundaries, ExactBoundary{
				Hospital:  hospital,
				FromColor: prev.Color,
				FromValue: prev.Count,
				ToColor:   cur.Color,
				ToValue:   cur.Count,
				FromDate:  prev.Date,
				ToDate:    cur.Date,
				Proven:    true,
			})
		}
	}
	return boundaries
}

// sortEstimates orders by ascending amber threshold, nils last, name as the
// tie-break.
func sortEstimates(estimates []ThresholdEstimate) {
	sort.SliceStable(estimates, func(i, j int) bool {
		a, b := estimates[i].AmberThreshold, estimates[j].AmberThreshold
		switch {
		case a == nil && b == nil:
			return estimates[i].Hospital < estimates[j].Hospital
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a < *b
		default:
			return estimates[i].Hospital < estimates[j].Hospital
		}
	})
}

func intPtr(v int) *int { return &v }
