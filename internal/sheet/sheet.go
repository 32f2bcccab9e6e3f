// Package sheet turns exported spreadsheet text into header-keyed rows.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Row is one spreadsheet row keyed by its header cell.
type Row = map[string]string

// Table is a parsed tab.
type Table struct {
	Headers []string
	Rows    []Row
}

// DetectDelimiter picks ';' when the header line contains one, ',' otherwise.
func DetectDelimiter(headerLine string) rune {
	if strings.Contains(headerLine, ";") {
		return ';'
	}
	return ','
}

// Parse reads delimited text. Double-quoted fields may contain the delimiter. Blank
// lines are skipped, short rows are padded with empty cells and extra cells dropped.
func Parse(data []byte) (Table, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if len(bytes.TrimSpace(data)) == 0 {
		return Table{}, nil
	}
	headerLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		headerLine = data[:i]
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = DetectDelimiter(string(headerLine))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	headers, err := r.Read()
	if err != nil {
		return Table{}, fmt.Errorf("read header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	var rows []Row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read row: %w", err)
		}
		if blank(rec) {
			continue
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return Table{Headers: headers, Rows: rows}, nil
}

// ParseRows is Parse without the header list.
func ParseRows(data []byte) ([]Row, error) {
	t, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return t.Rows, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
