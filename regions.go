package main

import (
	"math"
	"sort"
)

// RegionMean is the per-region aggregate the dashboard renders.
type RegionMean struct {
	Region       string  `json:"region"`
	MeanTotal    float64 `json:"mean_total"`
	Hospitals    int     `json:"hospitals"`
	Observations int     `json:"observations"`
	// PerTenK is true when a population was configured for the region and
	// MeanTotal is scaled per 10,000 population.
	PerTenK bool `json:"per_10k"`
}

// RegionMeans aggregates numeric total counts by the region each record was
// filed under. Records with no region attribution or no numeric total are
// skipped. When populations carries the region, the mean is scaled per 10k.
func RegionMeans(records []EntityRecord, populations map[string]float64) []RegionMean {
	type agg struct {
		sum       int
		count     int
		hospitals map[string]bool
	}
	byRegion := make(map[string]*agg)

	for _, rec := range records {
		if rec.Region == "" {
			continue
		}
		count, ok := rec.TotalCount()
		if !ok {
			continue
		}
		a := byRegion[rec.Region]
		if a == nil {
			a = &agg{hospitals: make(map[string]bool)}
			byRegion[rec.Region] = a
		}
		a.sum += count
		a.count++
		a.hospitals[rec.Hospital] = true
	}

	means := make([]RegionMean, 0, len(byRegion))
	for region, a := range byRegion {
		mean := float64(a.sum) / float64(a.count)
		perTenK := false
		if pop, ok := populations[region]; ok && pop > 0 {
			mean = mean / pop * 10000
			perTenK = true
		}
		means = append(means, RegionMean{
			Region:       region,
			MeanTotal:    round2(mean),
			Hospitals:    len(a.hospitals),
			Observations: a.count,
			PerTenK:      perTenK,
		})
	}

	sort.Slice(means, func(i, j int) bool { return means[i].Region < means[j].Region })
	return means
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
