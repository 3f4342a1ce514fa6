// Package report renders the collected FWCI history as a standalone HTML page
// with a trend classification per publication. It is a pure read-side
// transform of the persistent table.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"strconv"
	"time"

	"github.com/lcorbella/fwciwatch/internal/dataset"
)

// Entry is one publication prepared for the template.
type Entry struct {
	Name       string
	URL        string
	LatestFWCI string
	Change     string // up, down, same, new or changed
	History    []HistoryPoint
}

// HistoryPoint is one (date, value) pair for the hover tooltip, most recent
// first.
type HistoryPoint struct {
	Date  string
	Value string
}

// Build computes the report entries from the table. Values compare
// numerically when both sides parse; otherwise equality is by string, so two
// "Not found" cells read as unchanged.
func Build(t *dataset.Table) []Entry {
	cols := t.SortedMetricColumns()

	var latestCol, previousCol string
	if len(cols) > 0 {
		latestCol = cols[len(cols)-1]
	}
	if len(cols) > 1 {
		previousCol = cols[len(cols)-2]
	}

	entries := make([]Entry, 0, t.Len())
	for _, row := range t.Rows() {
		entry := Entry{
			Name:       row.Name,
			URL:        row.URL,
			LatestFWCI: displayValue(row, latestCol),
			Change:     classify(row, latestCol, previousCol),
		}
		for i := len(cols) - 1; i >= 0; i-- {
			date, ok := dataset.HeaderDate(cols[i])
			if !ok {
				date = cols[i]
			}
			entry.History = append(entry.History, HistoryPoint{
				Date:  date,
				Value: displayValue(row, cols[i]),
			})
		}
		entries = append(entries, entry)
	}
	return entries
}

// displayValue formats a cell for display: numeric values as %.2f, anything
// else (sentinel or never collected) as "Not found".
func displayValue(row *dataset.Row, column string) string {
	if column == "" {
		return "N/A"
	}
	v, ok := row.Value(column)
	if !ok {
		return "Not found"
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return fmt.Sprintf("%.2f", f)
	}
	return "Not found"
}

func classify(row *dataset.Row, latestCol, previousCol string) string {
	if previousCol == "" {
		return "new"
	}
	previous, ok := row.Value(previousCol)
	if !ok {
		// First appearance of this publication.
		return "new"
	}
	latest, ok := row.Value(latestCol)
	if !ok {
		// Not seen in the latest run; nothing new to compare.
		return "same"
	}

	lf, lerr := strconv.ParseFloat(latest, 64)
	pf, perr := strconv.ParseFloat(previous, 64)
	if lerr == nil && perr == nil {
		switch {
		case lf > pf:
			return "up"
		case lf < pf:
			return "down"
		default:
			return "same"
		}
	}

	if latest == previous {
		return "same"
	}
	return "changed"
}

// Report is the full template payload.
type Report struct {
	GeneratedAt string
	LatestDate  string
	Entries     []Entry
}

// Renderer renders the report HTML.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the report template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the report for the table to path.
func (r *Renderer) Render(t *dataset.Table, path string) error {
	var latest string
	if cols := t.SortedMetricColumns(); len(cols) > 0 {
		if date, ok := dataset.HeaderDate(cols[len(cols)-1]); ok {
			latest = date
		}
	}

	data := Report{
		GeneratedAt: time.Now().Format("Monday, January 2 2006"),
		LatestDate:  latest,
		Entries:     Build(t),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>FWCI Report</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 900px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        .container { background: white; border-radius: 8px; padding: 20px; }
        h1 { color: #e9711c; margin-bottom: 5px; }
        .date { color: #666; margin-bottom: 20px; }
        table.pubs { width: 100%; border-collapse: collapse; }
        table.pubs th { text-align: left; border-bottom: 2px solid #eee; padding: 8px; color: #333; }
        table.pubs td { border-bottom: 1px solid #eee; padding: 8px; vertical-align: top; }
        a.pub { color: #e9711c; text-decoration: none; }
        .badge { display: inline-block; padding: 2px 8px; border-radius: 12px; font-size: 12px; font-weight: bold; }
        .badge.up { background: #e6f7ea; color: #1a7f37; }
        .badge.down { background: #fdecea; color: #b42318; }
        .badge.same { background: #f0f0f0; color: #666; }
        .badge.new { background: #e8f0fe; color: #1a56db; }
        .badge.changed { background: #fff4e5; color: #b54708; }
        .fwci { position: relative; cursor: default; }
        .fwci .history { display: none; position: absolute; left: 0; top: 100%; z-index: 1; background: white; border: 1px solid #ddd; border-radius: 6px; padding: 8px; box-shadow: 0 2px 8px rgba(0,0,0,0.15); white-space: nowrap; }
        .fwci:hover .history { display: block; }
        .history td { border: none; padding: 2px 8px; font-size: 12px; color: #444; }
        .footer { margin-top: 20px; padding-top: 15px; border-top: 1px solid #eee; color: #999; font-size: 12px; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <h1>FWCI Report</h1>
        <div class="date">{{.GeneratedAt}}{{if .LatestDate}} · latest collection {{.LatestDate}}{{end}}</div>

        <table class="pubs">
            <tr><th>Publication</th><th>Latest FWCI</th><th>Trend</th></tr>
            {{range .Entries}}
            <tr>
                <td><a class="pub" href="{{.URL}}">{{.Name}}</a></td>
                <td class="fwci">{{.LatestFWCI}}
                    <div class="history"><table>
                        {{range .History}}<tr><td>{{.Date}}</td><td>{{.Value}}</td></tr>{{end}}
                    </table></div>
                </td>
                <td><span class="badge {{.Change}}">{{.Change}}</span></td>
            </tr>
            {{end}}
        </table>

        <div class="footer">{{len .Entries}} publications · generated by fwciwatch</div>
    </div>
</body>
</html>`
