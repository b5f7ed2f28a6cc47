package main

import (
	"strconv"
	"strings"
	"time"
)

// ColorBand is the severity band the source encodes via CSS classes.
type ColorBand string

const (
	ColorGreen ColorBand = "green"
	ColorAmber ColorBand = "amber"
	ColorRed   ColorBand = "red"
	ColorNone  ColorBand = "none"
)

// Cell is one table cell as decoded from markup. Produced per parse pass,
// never persisted.
type Cell struct {
	Text    string
	Span    int // colspan, defaults to 1
	Classes []string
	Width   string
}

// EntityRecord is one hospital (or aggregate-total) row for one report date.
// Metric values are kept as the raw cell text: the source uses non-numeric
// placeholders for missing data, and those must stay distinguishable from a
// real zero. An empty string means the slot was blank.
type EntityRecord struct {
	ReportDate   string    `json:"report_date"` // DD/MM/YYYY as published
	Hospital     string    `json:"hospital"`
	Region       string    `json:"region"` // section header the row appeared under
	EDTrolleys   string    `json:"ed_trolleys"`
	WardTrolleys string    `json:"ward_trolleys"`
	Total        string    `json:"total_trolleys"`
	TotalColor   ColorBand `json:"total_color"`
	Surge        string    `json:"surge_capacity_in_use"`
	SurgeColor   ColorBand `json:"surge_color"`
	Delayed      string    `json:"delayed_transfers_of_care"`
	DelayedColor ColorBand `json:"delayed_color"`
	Over24h      string    `json:"total_waiting_gt_24hrs"`
	Over75_24h   string    `json:"age_75plus_waiting_gt_24hrs"`
}

// TotalCount parses the total value; ok is false for blanks and
// non-numeric placeholders.
func (r EntityRecord) TotalCount() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(r.Total))
	if err != nil {
		return 0, false
	}
	return n, true
}

// dedupKey joins every persisted field; two records with equal keys are
// duplicates in the append/dedup sense.
func (r EntityRecord) dedupKey() string {
	return strings.Join([]string{
		r.ReportDate, r.Hospital, r.Region,
		r.EDTrolleys, r.WardTrolleys, r.Total, string(r.TotalColor),
		r.Surge, string(r.SurgeColor), r.Delayed, string(r.DelayedColor),
		r.Over24h, r.Over75_24h,
	}, "\x1f")
}

// reportDateLayout is the DD/MM/YYYY format the source publishes and expects
// in the EDDATE query parameter.
const reportDateLayout = "02/01/2006"

func FormatReportDate(t time.Time) string {
	return t.Format(reportDateLayout)
}

func ParseReportDate(s string) (time.Time, error) {
	return time.Parse(reportDateLayout, strings.TrimSpace(s))
}
