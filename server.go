package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DashboardServer serves the region aggregates and threshold analysis over
// HTTP: an HTML page with the region table and chart, JSON endpoints for
// each analysis output, and Prometheus metrics.
type DashboardServer struct {
	store       RecordStore
	addr        string
	populations map[string]float64
	exclude     []string
}

func NewDashboardServer(cfg Config, store RecordStore) *DashboardServer {
	return &DashboardServer{
		store:       store,
		addr:        cfg.ListenAddr,
		populations: cfg.RegionPopulations,
		exclude:     cfg.ExcludePatterns,
	}
}

func (s *DashboardServer) Handler() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/chart", s.handleChart).Methods("GET")
	r.HandleFunc("/api/regions", s.handleRegions).Methods("GET")
	r.HandleFunc("/api/thresholds", s.handleThresholds).Methods("GET")
	r.HandleFunc("/api/boundaries", s.handleBoundaries).Methods("GET")
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return r
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *DashboardServer) Start() error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("dashboard listening addr=%s", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	log.Println("dashboard shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Trolley Data by Region</title>
<style>
body { font-family: Inter, -apple-system, BlinkMacSystemFont, sans-serif; padding: 20px; }
.row { display: flex; flex-wrap: wrap; }
table { border-collapse: collapse; min-width: 300px; margin-right: 20px; }
th, td { text-align: left; padding: 10px; border-bottom: 1px solid #ddd; }
th { font-weight: bold; }
iframe { flex: 2; min-width: 400px; height: 70vh; border: none; }
</style>
</head>
<body>
<h1>Trolley Data by Region</h1>
<p>Mean trolley counts per health region</p>
<div class="row">
<table>
<tr><th>Region</th><th>Mean Trolleys</th></tr>
{{range .}}<tr><td>{{.Region}}</td><td>{{printf "%.2f" .MeanTotal}}</td></tr>
{{end}}</table>
<iframe src="/chart"></iframe>
</div>
</body>
</html>
`))

func (s *DashboardServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	means, err := s.regionMeans()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, means); err != nil {
		log.Printf("dashboard render error: %v", err)
	}
}

// handleChart renders the per-region bar chart as a standalone page,
// embedded by the index in an iframe.
func (s *DashboardServer) handleChart(w http.ResponseWriter, r *http.Request) {
	means, err := s.regionMeans()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Mean Trolleys by Region",
			Width:     "900px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{Title: "Mean Trolleys by Region"}),
	)

	names := make([]string, len(means))
	values := make([]opts.BarData, len(means))
	for i, m := range means {
		names[i] = m.Region
		values[i] = opts.BarData{Value: m.MeanTotal}
	}
	bar.SetXAxis(names).AddSeries("Mean Trolleys", values)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := bar.Render(w); err != nil {
		log.Printf("chart render error: %v", err)
	}
}

func (s *DashboardServer) handleRegions(w http.ResponseWriter, r *http.Request) {
	means, err := s.regionMeans()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, means)
}

func (s *DashboardServer) handleThresholds(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.analysis()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, analysis.Estimates)
}

func (s *DashboardServer) handleBoundaries(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.analysis()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, analysis.Boundaries)
}

func (s *DashboardServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *DashboardServer) regionMeans() ([]RegionMean, error) {
	records, err := s.store.Load(s.exclude...)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	return RegionMeans(records, s.populations), nil
}

func (s *DashboardServer) analysis() (Analysis, error) {
	records, err := s.store.Load()
	if err != nil {
		return Analysis{}, fmt.Errorf("loading records: %w", err)
	}
	return AnalyzeThresholds(records), nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("dashboard encode error: %v", err)
	}
}
