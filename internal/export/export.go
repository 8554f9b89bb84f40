// Package export writes the rows currently on screen as CSV or JSON
// downloads.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

var ErrUnknownFormat = errors.New("export format must be csv or json")

// ParseFormat accepts "csv" and "json" in any case; blank means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", CSV:
		return CSV, nil
	case JSON:
		return JSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	if f == JSON {
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}

// Filename is base-YYYY-MM-DD.ext.
func (f Format) Filename(base string, day time.Time) string {
	return fmt.Sprintf("%s-%s.%s", base, day.Format("2006-01-02"), f)
}

// Table is a set of rows flattened for CSV.
type Table interface {
	Header() []string
	Rows() [][]string
}

// Text makes a free-text CSV cell safe to open in a spreadsheet: a leading
// =, +, -, @, tab or carriage return would otherwise start a formula.
func Text(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

// Write renders t as CSV, or data as indented JSON.
func Write(w io.Writer, f Format, t Table, data any) error {
	switch f {
	case CSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Header()); err != nil {
			return fmt.Errorf("export.Write: %w", err)
		}
		if err := cw.WriteAll(t.Rows()); err != nil {
			return fmt.Errorf("export.Write: %w", err)
		}
		return nil
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("export.Write: %w", err)
		}
		return nil
	}
	return ErrUnknownFormat
}
