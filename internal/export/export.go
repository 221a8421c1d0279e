package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/xuri/excelize/v2"
)

// Marker is the first line of every export. Dashware picks its OpenTX import
// profile from it.
const Marker = "OpenTX Import"

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"

	filePrefix = "dashware-tele_"
	sheetName  = "Sheet1"
)

type Format string

// ParseFormat validates a format name. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format '%s'", s)
	}
}

// Table is tabular data with a header row
type Table interface {
	Header() []string
	Rows() [][]string
}

// WriteCSV writes the marker line, the header row and all data rows.
func WriteCSV(w io.Writer, t Table) error {
	if _, err := io.WriteString(w, Marker+"\n"); err != nil {
		return fmt.Errorf("writing marker: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := cw.WriteAll(t.Rows()); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	return nil
}

// WriteXLSX writes the same layout as WriteCSV into a single worksheet.
// Values that parse as numbers are stored as numeric cells.
func WriteXLSX(w io.Writer, t Table) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing workbook: %w", cErr)
		}
	}()

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	row := 1
	setRow := func(values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return sw.SetRow(cell, values)
	}

	if err = setRow([]interface{}{Marker}); err != nil {
		return fmt.Errorf("writing marker: %w", err)
	}
	if err = setRow(toCells(t.Header(), false)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range t.Rows() {
		if err = setRow(toCells(r, true)); err != nil {
			return fmt.Errorf("writing row %d: %w", row-2, err)
		}
	}

	if err = sw.Flush(); err != nil {
		return fmt.Errorf("flushing worksheet: %w", err)
	}
	if err = f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func toCells(values []string, numeric bool) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		if numeric {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				cells[i] = n
				continue
			}
		}
		cells[i] = v
	}
	return cells
}

// Save renders t in the given format and writes it to path atomically: the
// file either appears complete or not at all.
func Save(path string, format Format, t Table) error {
	var buf bytes.Buffer

	var err error
	switch format {
	case FormatCSV:
		err = WriteCSV(&buf, t)
	case FormatXLSX:
		err = WriteXLSX(&buf, t)
	default:
		err = fmt.Errorf("unsupported output format '%s'", format)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", format, err)
	}

	if err = atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("writing '%s': %w", path, err)
	}
	return nil
}

// FileName returns the output path for an export created at t.
func FileName(dir string, format Format, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s%d.%s", filePrefix, t.UnixMilli(), format))
}
