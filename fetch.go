package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"
)

// Fetcher pulls TrolleyGAR pages one date at a time. Requests are
// sequential with a mandatory delay between them; transient failures are
// retried in place with exponential backoff, and in range mode a date that
// still fails is logged and skipped so earlier results survive.
type Fetcher struct {
	client     *http.Client
	parser     *TableParser
	baseURL    string
	userAgent  string
	delay      time.Duration
	maxRetries int
	clock      clockwork.Clock
	metrics    *Metrics
}

func NewFetcher(cfg Config, parser *TableParser, clock clockwork.Clock, metrics *Metrics) *Fetcher {
	return &Fetcher{
		client:     &http.Client{Timeout: cfg.RequestTimeout()},
		parser:     parser,
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		delay:      cfg.RequestDelay(),
		maxRetries: cfg.MaxRetries,
		clock:      clock,
		metrics:    metrics,
	}
}

// FetchDay fetches one report date and decodes the master row.
func (f *Fetcher) FetchDay(date time.Time) ([]EntityRecord, error) {
	return f.fetch(date, (*TableParser).ParseDaily)
}

// SurveyDay fetches one report date and decodes every row, for color
// sampling across historical snapshots.
func (f *Fetcher) SurveyDay(date time.Time) ([]EntityRecord, error) {
	return f.fetch(date, (*TableParser).ParseSurvey)
}

// FetchRange walks the date range inclusive, master-row mode. Per-date
// failures are logged and skipped.
func (f *Fetcher) FetchRange(start, end time.Time) []EntityRecord {
	return f.fetchRange(start, end, f.FetchDay)
}

// SurveyRange walks the date range inclusive, survey mode.
func (f *Fetcher) SurveyRange(start, end time.Time) []EntityRecord {
	return f.fetchRange(start, end, f.SurveyDay)
}

func (f *Fetcher) fetch(date time.Time, parse func(*TableParser, io.Reader, string) ([]EntityRecord, error)) ([]EntityRecord, error) {
	dateStr := FormatReportDate(date)
	body, err := f.get(dateStr)
	if err != nil {
		f.metrics.FetchFailures.Inc()
		return nil, fmt.Errorf("fetching report for %s: %w", dateStr, err)
	}
	f.metrics.FetchesTotal.Inc()
	f.metrics.LastFetchUnix.Set(float64(f.clock.Now().Unix()))

	records, err := parse(f.parser, bytes.NewReader(body), dateStr)
	if err != nil {
		f.metrics.ParseFailures.Inc()
		return nil, fmt.Errorf("parsing report for %s: %w", dateStr, err)
	}
	log.Printf("fetch date=%s records=%d", dateStr, len(records))
	return records, nil
}

func (f *Fetcher) fetchRange(start, end time.Time, fetchDay func(time.Time) ([]EntityRecord, error)) []EntityRecord {
	var all []EntityRecord
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		records, err := fetchDay(date)
		if err != nil {
			// Failure-isolated: keep what earlier dates produced.
			log.Printf("fetch skipping date=%s: %v", FormatReportDate(date), err)
		} else {
			all = append(all, records...)
		}
		if date.AddDate(0, 0, 1).After(end) {
			break
		}
		f.clock.Sleep(f.delay)
	}
	return all
}

// get performs the GET with retry-and-backoff. HTTP 4xx responses are not
// retried; network errors and 5xx are.
func (f *Fetcher) get(dateStr string) ([]byte, error) {
	reportURL := fmt.Sprintf("%s?EDDATE=%s", f.baseURL, url.QueryEscape(dateStr))

	var body []byte
	op := func() error {
		req, err := http.NewRequest(http.MethodGet, reportURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", f.userAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("server returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("server returned %d", resp.StatusCode))
		}
		body = data
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(f.maxRetries))
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return body, nil
}
