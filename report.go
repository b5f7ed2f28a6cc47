package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// RenderThresholdReport lays out the full analysis as plain text: proven
// boundaries first, inferred thresholds per hospital, then the threshold
// distributions that expose a shared policy across hospitals.
func RenderThresholdReport(a Analysis) string {
	var b strings.Builder
	rule := strings.Repeat("=", 80)

	b.WriteString(rule + "\n")
	b.WriteString("TROLLEYGAR COLOR THRESHOLD ANALYSIS\n")
	b.WriteString(rule + "\n")

	b.WriteString("\n1. EXACTLY PROVEN BOUNDARIES (1-unit transitions)\n\n")
	b.WriteString(strings.Repeat("-", 80) + "\n")
	if len(a.Boundaries) == 0 {
		b.WriteString("No exact 1-unit boundaries found. Need more data.\n")
	} else {
		for _, btype := range boundaryTypes(a.Boundaries) {
			b.WriteString(fmt.Sprintf("\n%s transitions:\n", strings.ToUpper(btype)))
			for _, boundary := range a.Boundaries {
				if boundary.Type() != btype {
					continue
				}
				b.WriteString(fmt.Sprintf("  %s: %d → %d\n",
					boundary.Hospital, boundary.FromValue, boundary.ToValue))
			}
		}
	}

	b.WriteString("\n" + rule + "\n")
	b.WriteString("2. INFERRED THRESHOLDS BY HOSPITAL\n")
	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("\n%-50s %8s %8s\n", "Hospital", "Amber @", "Red @"))
	b.WriteString(strings.Repeat("-", 70) + "\n")
	for _, est := range a.Estimates {
		b.WriteString(fmt.Sprintf("%-50s %8s %8s\n",
			est.Hospital, formatThreshold(est.AmberThreshold), formatThreshold(est.RedThreshold)))
	}

	b.WriteString("\n" + rule + "\n")
	b.WriteString("3. THRESHOLD PATTERNS\n")
	b.WriteString(rule + "\n")
	writeDistribution(&b, "Amber", a.AmberDistribution)
	writeDistribution(&b, "Red", a.RedDistribution)

	return b.String()
}

// WriteReportFile writes the rendered report under outputDir with a dated
// filename, creating the directory as needed.
func WriteReportFile(content, outputDir string, reportDate time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("thresholds_%s.txt", reportDate.Format("20060102"))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, []byte(content), 0644)
}

func boundaryTypes(boundaries []ExactBoundary) []string {
	seen := make(map[string]bool)
	var types []string
	for _, b := range boundaries {
		if !seen[b.Type()] {
			seen[b.Type()] = true
			types = append(types, b.Type())
		}
	}
	return types
}

func formatThreshold(t *int) string {
	if t == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *t)
}

func writeDistribution(b *strings.Builder, label string, dist map[int]int) {
	if len(dist) == 0 {
		return
	}
	thresholds := make([]int, 0, len(dist))
	for t := range dist {
		thresholds = append(thresholds, t)
	}
	sort.Ints(thresholds)

	b.WriteString(fmt.Sprintf("\n%s threshold distribution:\n", label))
	for _, t := range thresholds {
		b.WriteString(fmt.Sprintf("  Threshold %3d: %d hospitals\n", t, dist[t]))
	}
}
