package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) (*DashboardServer, *SQLiteStore) {
	t.Helper()
	store := newTestStore(t)
	cfg := Config{
		ListenAddr:      ":0",
		ExcludePatterns: []string{"Total", regionPrefix},
	}
	return NewDashboardServer(cfg, store), store
}

func seedDashboard(t *testing.T, store *SQLiteStore) {
	t.Helper()
	records := []EntityRecord{
		regionRecord("HSE South West", "Cork University Hospital", "10"),
		regionRecord("HSE South West", "Mercy University Hospital", "6"),
		regionRecord("HSE West and North West", "University Hospital Galway", "8"),
		regionRecord("", "National Total", "120"),
	}
	if _, err := store.Append(records, false); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDashboardRegionsJSON(t *testing.T) {
	srv, store := newTestServer(t)
	seedDashboard(t, store)

	rec := get(t, srv.Handler(), "/api/regions")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var means []RegionMean
	if err := json.Unmarshal(rec.Body.Bytes(), &means); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(means) != 2 {
		t.Fatalf("expected 2 regions, got %+v", means)
	}
	if means[0].Region != "HSE South West" || means[0].MeanTotal != 8 {
		t.Fatalf("unexpected first region: %+v", means[0])
	}
}

func TestDashboardIndexHTML(t *testing.T) {
	srv, store := newTestServer(t)
	seedDashboard(t, store)

	rec := get(t, srv.Handler(), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "HSE South West") {
		t.Error("region table missing from index page")
	}
	if !strings.Contains(body, `iframe src="/chart"`) {
		t.Error("chart iframe missing from index page")
	}
}

func TestDashboardThresholdsJSON(t *testing.T) {
	srv, store := newTestServer(t)
	records := []EntityRecord{
		obsRecord("Cork University Hospital", "01/01/2026", "10", ColorGreen),
		obsRecord("Cork University Hospital", "02/01/2026", "11", ColorAmber),
	}
	if _, err := store.Append(records, false); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	rec := get(t, srv.Handler(), "/api/thresholds")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var estimates []ThresholdEstimate
	if err := json.Unmarshal(rec.Body.Bytes(), &estimates); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(estimates) != 1 || estimates[0].AmberThreshold == nil || *estimates[0].AmberThreshold != 11 {
		t.Fatalf("unexpected estimates: %+v", estimates)
	}

	rec = get(t, srv.Handler(), "/api/boundaries")
	var boundaries []ExactBoundary
	if err := json.Unmarshal(rec.Body.Bytes(), &boundaries); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(boundaries) != 1 {
		t.Fatalf("expected 1 proven boundary, got %+v", boundaries)
	}
}

func TestDashboardHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	if rec := get(t, h, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz status %d", rec.Code)
	}
	if rec := get(t, h, "/metrics"); rec.Code != http.StatusOK {
		t.Errorf("metrics status %d", rec.Code)
	}
}
