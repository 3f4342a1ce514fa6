// Package dataset owns the persistent wide table of FWCI values: one row per
// publication URL, one column per collection date. Rows and date columns only
// ever accumulate; a run never deletes either.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

const (
	nameHeader = "Publication Name"
	urlHeader  = "URL"

	dateLayout = "02/01/06"
)

// MetricColumn returns the header for the given collection date, e.g.
// "FWCI (01/06/24)".
func MetricColumn(t time.Time) string {
	return fmt.Sprintf("FWCI (%s)", t.Format(dateLayout))
}

// HeaderDate extracts the raw bracketed date text from a metric column
// header. The substring between the first '(' and the following ')' is the
// contract shared with every consumer of the table file.
func HeaderDate(header string) (string, bool) {
	open := strings.Index(header, "(")
	if open < 0 {
		return "", false
	}
	end := strings.Index(header[open:], ")")
	if end < 0 {
		return "", false
	}
	return header[open+1 : open+end], true
}

// ColumnDate parses the date embedded in a metric column header as DD/MM/YY.
func ColumnDate(header string) (time.Time, bool) {
	text, ok := HeaderDate(header)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, text)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Row is one publication record. The URL is the immutable identity; Name is
// the last-seen display title.
type Row struct {
	Name  string
	URL   string
	cells map[string]string
}

// Value returns the cell for a metric column. ok is false when the cell was
// never populated, which is distinct from the stored "Not found" sentinel.
func (r *Row) Value(column string) (string, bool) {
	v, ok := r.cells[column]
	return v, ok
}

// Table is the full persistent table. Metric columns keep first-appearance
// order at write time; chronological sorting is a read-time concern.
type Table struct {
	metricCols []string
	rows       []*Row
	byURL      map[string]*Row
}

// New returns an empty table with just the identity columns.
func New() *Table {
	return &Table{byURL: make(map[string]*Row)}
}

// Load reads the table from path. A missing file yields an empty table.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return New(), nil
	}

	header := records[0]
	if len(header) < 2 || header[0] != nameHeader || header[1] != urlHeader {
		return nil, fmt.Errorf("unexpected header in %s: %v", path, header)
	}

	t := New()
	t.metricCols = append(t.metricCols, header[2:]...)
	for _, rec := range records[1:] {
		if len(rec) < 2 {
			continue
		}
		row := &Row{Name: rec[0], URL: rec[1], cells: make(map[string]string)}
		// An empty cell means "never collected" and stays absent.
		for i, col := range t.metricCols {
			if 2+i < len(rec) && rec[2+i] != "" {
				row.cells[col] = rec[2+i]
			}
		}
		t.rows = append(t.rows, row)
		t.byURL[row.URL] = row
	}
	return t, nil
}

// Upsert sets the value of one date column for the given URL, appending a new
// row when the URL has never been seen. Re-running on the same date
// overwrites the same cell instead of duplicating anything.
func (t *Table) Upsert(url, name, column, value string) {
	t.ensureColumn(column)

	if row, ok := t.byURL[url]; ok {
		row.Name = name
		row.cells[column] = value
		return
	}

	row := &Row{Name: name, URL: url, cells: map[string]string{column: value}}
	t.rows = append(t.rows, row)
	t.byURL[url] = row
}

func (t *Table) ensureColumn(column string) {
	for _, c := range t.metricCols {
		if c == column {
			return
		}
	}
	t.metricCols = append(t.metricCols, column)
}

// Save rewrites the whole table to path in one pass. Cells that were never
// populated are written empty, keeping them distinguishable from the
// "Not found" sentinel.
func (t *Table) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	header := append([]string{nameHeader, urlHeader}, t.metricCols...)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	for _, row := range t.rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, row.Name, row.URL)
		for _, col := range t.metricCols {
			rec = append(rec, row.cells[col])
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the rows in table order.
func (t *Table) Rows() []*Row {
	return t.rows
}

// Lookup returns the row for a URL, if present.
func (t *Table) Lookup(url string) (*Row, bool) {
	row, ok := t.byURL[url]
	return row, ok
}

// MetricColumns returns the metric headers in write (first-appearance) order.
func (t *Table) MetricColumns() []string {
	cols := make([]string, len(t.metricCols))
	copy(cols, t.metricCols)
	return cols
}

// SortedMetricColumns returns the metric headers in chronological order of
// their embedded dates. Headers without a parseable date sort first, keeping
// their original relative order.
func (t *Table) SortedMetricColumns() []string {
	cols := t.MetricColumns()
	sort.SliceStable(cols, func(i, j int) bool {
		di, oki := ColumnDate(cols[i])
		dj, okj := ColumnDate(cols[j])
		if !oki || !okj {
			return !oki && okj
		}
		return di.Before(dj)
	})
	return cols
}
