// Package csvrows reads ad-platform CSV exports into rows and writes
// suggestion tables back out as CSV.
//
// The reader is deliberately naive: cells are split on every comma and
// quoted fields are not recognised, so a cell holding a literal comma
// shifts the rest of its line.
package csvrows

import (
	"strings"

	"termtidy-web/internal/model"
)

// ExportFilename is the download name offered for exported suggestions.
const ExportFilename = "termtidy_negative_keywords.csv"

// Parse splits text into rows keyed by the header line. Blank lines are
// ignored; a file with no data lines yields an empty slice.
func Parse(text string) []model.Row {
	lines := nonBlankLines(text)
	if len(lines) < 2 {
		return []model.Row{}
	}

	headers := strings.Split(lines[0], ",")
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	rows := make([]model.Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cols := strings.Split(line, ",")
		row := model.NewRow(len(headers))
		for i, h := range headers {
			cell := ""
			if i < len(cols) {
				cell = strings.TrimSpace(cols[i])
			}
			row.Set(h, cell)
		}
		rows = append(rows, row)
	}
	return rows
}

func nonBlankLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// Export renders suggestions as CSV using the first row's keys as the
// column order. It returns "" when there is nothing to export.
func Export(rows []model.Suggestion) string {
	if len(rows) == 0 {
		return ""
	}

	headers := rows[0].Keys()
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(headers, ","))

	cells := make([]string, len(headers))
	for _, r := range rows {
		for i, h := range headers {
			cells[i] = escapeCell(r.Text(h))
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

func escapeCell(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
