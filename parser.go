package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrNoTable means the markup contains no table element at all.
	ErrNoTable = errors.New("no table found in document")
	// ErrNoMasterRow means no row qualifies as the wide master row that
	// concatenates the full hospital roster.
	ErrNoMasterRow = errors.New("no master data row found")
)

const (
	// entityBoundarySpan marks cells that open an entity block: hospital
	// names and regional section headers carry a large colspan, data and
	// spacer cells do not.
	entityBoundarySpan = 8
	// masterRowMinEntities is the boundary-cell count that identifies the
	// master row; the roster has 50+ hospitals plus regional headers.
	masterRowMinEntities = 50
	// regionPrefix opens every regional section header. Real entities can
	// start with it too ("HSE National Total"), so the suffix check below
	// decides.
	regionPrefix = "HSE "

	// Stat slots after an entity boundary. Odd slots (and 3, 5, 7, 9) are
	// spacers the source interleaves between values.
	slotED      = 0
	slotWard    = 1
	slotTotal   = 2
	slotSurge   = 4
	slotDelayed = 6
	slotOver24h = 8
	slotOver75  = 10

	// cellsPerEntityDaily is the stat-block width in master-row mode;
	// survey mode carries one extra trailing spacer.
	cellsPerEntityDaily  = 11
	cellsPerEntitySurvey = 12
)

// TableParser turns the raw TrolleyGAR markup into EntityRecords. It holds
// no per-parse state; one parser serves any number of documents.
type TableParser struct {
	classifier *ColorClassifier
}

func NewTableParser(classifier *ColorClassifier) *TableParser {
	return &TableParser{classifier: classifier}
}

// ParseDaily locates the single wide master row (daily-snapshot mode) and
// decodes it. Returns ErrNoTable or ErrNoMasterRow on structural failure;
// those mean "no data for this date", not a fatal condition for a
// multi-date run.
func (p *TableParser) ParseDaily(markup io.Reader, reportDate string) ([]EntityRecord, error) {
	table, err := findTable(markup)
	if err != nil {
		return nil, err
	}

	var master []Cell
	// Header rows never reach the roster-wide boundary count, so the first
	// row that does is the master row.
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := collectCells(row)
		boundaries := 0
		for _, c := range cells {
			if c.Span >= entityBoundarySpan {
				boundaries++
			}
		}
		if boundaries >= masterRowMinEntities {
			master = cells
			return false
		}
		return true
	})
	if master == nil {
		return nil, ErrNoMasterRow
	}

	return p.decodeCells(master, cellsPerEntityDaily, reportDate), nil
}

// ParseSurvey decodes every row of the table independently. Used when
// sampling colors across historical snapshots; rows that decode to nothing
// contribute nothing.
func (p *TableParser) ParseSurvey(markup io.Reader, reportDate string) ([]EntityRecord, error) {
	table, err := findTable(markup)
	if err != nil {
		return nil, err
	}

	var records []EntityRecord
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		records = append(records, p.decodeCells(collectCells(row), cellsPerEntitySurvey, reportDate)...)
	})
	return records, nil
}

// decodeCells walks a flat cell sequence with a cursor and partitions it
// into entity records. A boundary cell (span >= 8, non-empty text) opens an
// entity; regional headers are skipped but remembered so records carry
// their region; everything not consumed as a stat block is spacer/filler.
func (p *TableParser) decodeCells(cells []Cell, cellsPerEntity int, reportDate string) []EntityRecord {
	var records []EntityRecord
	region := ""

	i := 0
	for i < len(cells) {
		cell := cells[i]
		if cell.Span < entityBoundarySpan || cell.Text == "" {
			i++
			continue
		}

		name := cell.Text
		i++
		if isRegionalHeader(name) {
			region = name
			continue
		}

		// At most one empty spacer directly after the name cell.
		if i < len(cells) && cells[i].Text == "" {
			i++
		}

		stats := make([]Cell, 0, cellsPerEntity)
		for len(stats) < cellsPerEntity && i < len(cells) {
			stats = append(stats, cells[i])
			i++
		}

		rec, ok := buildRecord(name, region, reportDate, stats, p.classifier)
		if !ok {
			log.Printf("parser dropped malformed entity name=%q stats=%d", name, len(stats))
			continue
		}
		records = append(records, rec)
	}
	return records
}

// buildRecord maps the positional stat slots onto a record. An entity with
// a short stat block or fewer than 3 non-empty values yields no record.
func buildRecord(name, region, reportDate string, stats []Cell, classifier *ColorClassifier) (EntityRecord, bool) {
	if len(stats) <= slotOver75 {
		return EntityRecord{}, false
	}
	nonEmpty := 0
	for _, s := range stats {
		if s.Text != "" {
			nonEmpty++
		}
	}
	if nonEmpty < 3 {
		return EntityRecord{}, false
	}

	return EntityRecord{
		ReportDate:   reportDate,
		Hospital:     name,
		Region:       region,
		EDTrolleys:   stats[slotED].Text,
		WardTrolleys: stats[slotWard].Text,
		Total:        stats[slotTotal].Text,
		TotalColor:   classifier.Classify(stats[slotTotal].Classes),
		Surge:        stats[slotSurge].Text,
		SurgeColor:   classifier.Classify(stats[slotSurge].Classes),
		Delayed:      stats[slotDelayed].Text,
		DelayedColor: classifier.Classify(stats[slotDelayed].Classes),
		Over24h:      stats[slotOver24h].Text,
		Over75_24h:   stats[slotOver75].Text,
	}, true
}

// isRegionalHeader distinguishes section dividers from data rows. Both can
// start with the region prefix; only data rows end with an entity suffix.
func isRegionalHeader(name string) bool {
	return strings.HasPrefix(name, regionPrefix) &&
		!strings.HasSuffix(name, "Total") &&
		!strings.HasSuffix(name, "Hospital")
}

func findTable(markup io.Reader) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(markup)
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}
	return table, nil
}

func collectCells(row *goquery.Selection) []Cell {
	var cells []Cell
	row.Find("td, th").Each(func(_ int, sel *goquery.Selection) {
		span := 1
		if v, ok := sel.Attr("colspan"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
				span = n
			}
		}
		width, _ := sel.Attr("width")
		cells = append(cells, Cell{
			Text:    strings.TrimSpace(sel.Text()),
			Span:    span,
			Classes: splitClasses(sel),
			Width:   width,
		})
	})
	return cells
}

func splitClasses(sel *goquery.Selection) []string {
	attr, ok := sel.Attr("class")
	if !ok {
		return nil
	}
	return strings.Fields(attr)
}
