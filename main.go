package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := run(context.Background(), os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	storeFlags := []cli.Flag{
		&cli.BoolFlag{Name: "csv", Usage: "use a CSV file instead of SQLite"},
		&cli.StringFlag{Name: "output", Usage: "output database or CSV file (defaults from config)"},
	}

	app := &cli.Command{
		Name:  "trolleywatch",
		Usage: "Scrape the HSE TrolleyGAR report and infer severity thresholds",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to config.yaml"},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if path := c.String("config"); path != "" {
				os.Setenv("CONFIG_PATH", path)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "scrape",
				Usage: "Fetch daily snapshots (today, one date, or a range) and store them",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "date", Usage: "single date DD/MM/YYYY"},
					&cli.StringFlag{Name: "start", Usage: "range start DD/MM/YYYY"},
					&cli.StringFlag{Name: "end", Usage: "range end DD/MM/YYYY"},
					&cli.BoolFlag{Name: "clean-duplicates", Usage: "run deduplication after writing"},
				}, storeFlags...),
				Action: cmdScrape,
			},
			{
				Name:  "survey",
				Usage: "Sample colors across historical snapshots (every table row per date)",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "range start DD/MM/YYYY", Required: true},
					&cli.StringFlag{Name: "end", Usage: "range end DD/MM/YYYY", Required: true},
					&cli.BoolFlag{Name: "analyze", Usage: "run threshold analysis on the surveyed data"},
				}, storeFlags...),
				Action: cmdSurvey,
			},
			{
				Name:  "analyze",
				Usage: "Infer per-hospital thresholds from stored history",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "xlsx", Usage: "also export the analysis as an XLSX workbook"},
				}, storeFlags...),
				Action: cmdAnalyze,
			},
			{
				Name:   "serve",
				Usage:  "Serve the region dashboard and JSON API",
				Flags:  storeFlags,
				Action: cmdServe,
			},
			{
				Name:   "watch",
				Usage:  "Run the daily update on the configured cron schedule",
				Flags:  storeFlags,
				Action: cmdWatch,
			},
		},
	}

	return app.Run(ctx, args)
}

func cmdScrape(ctx context.Context, c *cli.Command) error {
	cfg := LoadConfig()
	fetcher, store, err := buildPipeline(cfg, c)
	if err != nil {
		return err
	}
	defer store.Close()

	var records []EntityRecord
	switch {
	case c.String("start") != "" || c.String("end") != "":
		start, end, err := parseRange(c.String("start"), c.String("end"))
		if err != nil {
			return err
		}
		records = fetcher.FetchRange(start, end)
	case c.String("date") != "":
		date, err := ParseReportDate(c.String("date"))
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		records, err = fetcher.FetchDay(date)
		if err != nil {
			return err
		}
	default:
		today := time.Now().In(cfg.Location)
		var err error
		records, err = fetcher.FetchDay(today)
		if err != nil {
			return err
		}
	}

	result, err := store.Append(records, false)
	if err != nil {
		return err
	}
	log.Printf("scrape stored records=%d", result.Inserted)

	if c.Bool("clean-duplicates") {
		removed, err := store.RemoveDuplicates()
		if err != nil {
			return err
		}
		log.Printf("scrape removed duplicates=%d", removed)
	}
	return nil
}

func cmdSurvey(ctx context.Context, c *cli.Command) error {
	cfg := LoadConfig()
	fetcher, store, err := buildPipeline(cfg, c)
	if err != nil {
		return err
	}
	defer store.Close()

	start, end, err := parseRange(c.String("start"), c.String("end"))
	if err != nil {
		return err
	}

	records := fetcher.SurveyRange(start, end)
	result, err := store.Append(records, true)
	if err != nil {
		return err
	}
	log.Printf("survey stored records=%d duplicates=%d", result.Inserted, result.Duplicates)

	if c.Bool("analyze") {
		analysis := AnalyzeThresholds(records)
		fmt.Print(RenderThresholdReport(analysis))
		thresholdsPath, boundariesPath, err := WriteThresholdCSVs(analysis, cfg.ReportOutputDir)
		if err != nil {
			return err
		}
		log.Printf("survey analysis written thresholds=%s boundaries=%s", thresholdsPath, boundariesPath)
	}
	return nil
}

func cmdAnalyze(ctx context.Context, c *cli.Command) error {
	cfg := LoadConfig()
	store, err := openStore(cfg, c)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Load()
	if err != nil {
		return err
	}
	analysis := AnalyzeThresholds(records)
	fmt.Print(RenderThresholdReport(analysis))

	path, err := WriteReportFile(RenderThresholdReport(analysis), cfg.ReportOutputDir, time.Now().In(cfg.Location))
	if err != nil {
		return err
	}
	log.Printf("analyze report written path=%s", path)

	if _, _, err := WriteThresholdCSVs(analysis, cfg.ReportOutputDir); err != nil {
		return err
	}

	if xlsxPath := c.String("xlsx"); xlsxPath != "" {
		means := RegionMeans(filterRecords(records, cfg.ExcludePatterns), cfg.RegionPopulations)
		if err := ExportXLSX(analysis, means, xlsxPath); err != nil {
			return err
		}
		log.Printf("analyze workbook written path=%s", xlsxPath)
	}
	return nil
}

func cmdServe(ctx context.Context, c *cli.Command) error {
	cfg := LoadConfig()
	store, err := openStore(cfg, c)
	if err != nil {
		return err
	}
	defer store.Close()

	NewMetrics()
	return NewDashboardServer(cfg, store).Start()
}

func cmdWatch(ctx context.Context, c *cli.Command) error {
	cfg := LoadConfig()
	fetcher, store, err := buildPipeline(cfg, c)
	if err != nil {
		return err
	}
	defer store.Close()

	watcher, err := NewWatcher(cfg, fetcher, store, NewNotifier(cfg), clockwork.NewRealClock())
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}

func buildPipeline(cfg Config, c *cli.Command) (*Fetcher, RecordStore, error) {
	store, err := openStore(cfg, c)
	if err != nil {
		return nil, nil, err
	}
	parser := NewTableParser(NewColorClassifier(cfg.ColorClasses))
	fetcher := NewFetcher(cfg, parser, clockwork.NewRealClock(), NewMetrics())
	return fetcher, store, nil
}

func openStore(cfg Config, c *cli.Command) (RecordStore, error) {
	format, path := "sqlite", cfg.DBPath
	if c.Bool("csv") {
		format, path = "csv", cfg.CSVPath
	}
	if out := c.String("output"); out != "" {
		path = out
	}
	return OpenStore(format, path)
}

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := ParseReportDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
	}
	end, err := ParseReportDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--end %s is before --start %s", endStr, startStr)
	}
	return start, end, nil
}

func filterRecords(records []EntityRecord, exclude []string) []EntityRecord {
	var out []EntityRecord
	for _, rec := range records {
		if !excluded(rec.Hospital, exclude) {
			out = append(out, rec)
		}
	}
	return out
}
