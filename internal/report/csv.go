package report

import (
	"bytes"
	"encoding/csv"
	"strings"
)

// ToCSV renders the report as CSV text: the header line, then one line per
// record, joined by "\n" with no trailing newline.
//
// Fields are written verbatim. A value containing a comma, quote or newline
// shifts the columns of its row; use ToEscapedCSV when that matters.
func ToCSV(r Report) string {
	records := r.records()
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(r.header(), ","))
	for _, rec := range records {
		lines = append(lines, strings.Join(rec, ","))
	}
	return strings.Join(lines, "\n")
}

// ToEscapedCSV renders the same rows as ToCSV with RFC 4180 quoting.
func ToEscapedCSV(r Report) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(r.header()); err != nil {
		return "", err
	}
	if err := w.WriteAll(r.records()); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
