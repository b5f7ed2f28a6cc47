package main

import "testing"

func regionRecord(region, hospital, total string) EntityRecord {
	return EntityRecord{
		ReportDate: "01/01/2026",
		Hospital:   hospital,
		Region:     region,
		Total:      total,
		TotalColor: ColorAmber,
	}
}

func TestRegionMeansAggregation(t *testing.T) {
	records := []EntityRecord{
		regionRecord("HSE South West", "Cork University Hospital", "10"),
		regionRecord("HSE South West", "Cork University Hospital", "20"),
		regionRecord("HSE South West", "Mercy University Hospital", "6"),
		regionRecord("HSE West and North West", "University Hospital Galway", "8"),
	}

	means := RegionMeans(records, nil)
	if len(means) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(means))
	}

	// Sorted by region name.
	sw := means[0]
	if sw.Region != "HSE South West" {
		t.Fatalf("unexpected sort order: %+v", means)
	}
	if sw.MeanTotal != 12 {
		t.Errorf("expected mean 12, got %v", sw.MeanTotal)
	}
	if sw.Hospitals != 2 || sw.Observations != 3 {
		t.Errorf("unexpected counts: %+v", sw)
	}
	if sw.PerTenK {
		t.Error("no population configured, mean must be raw")
	}
}

func TestRegionMeansPerTenKScaling(t *testing.T) {
	records := []EntityRecord{
		regionRecord("HSE South West", "Cork University Hospital", "30"),
	}
	populations := map[string]float64{"HSE South West": 600000}

	means := RegionMeans(records, populations)
	if len(means) != 1 {
		t.Fatalf("expected 1 region, got %d", len(means))
	}
	if !means[0].PerTenK {
		t.Fatal("expected per-10k scaling")
	}
	// 30 / 600000 * 10000 = 0.5
	if means[0].MeanTotal != 0.5 {
		t.Errorf("expected 0.5, got %v", means[0].MeanTotal)
	}
}

func TestRegionMeansSkipsUnattributedAndNonNumeric(t *testing.T) {
	records := []EntityRecord{
		regionRecord("", "Orphan Hospital", "10"),
		regionRecord("HSE South West", "Cork University Hospital", ""),
		regionRecord("HSE South West", "Cork University Hospital", "n/a"),
	}

	means := RegionMeans(records, nil)
	if len(means) != 0 {
		t.Fatalf("expected no aggregates, got %+v", means)
	}
}
