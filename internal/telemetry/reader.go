package telemetry

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/agnivade/levenshtein"
)

// ErrNoHeader is returned when the telemetry log is empty
var ErrNoHeader = errors.New("telemetry log has no header row")

// Reader yields telemetry samples one row at a time. It is restartable only
// by creating a new Reader over the source.
type Reader struct {
	csv     *csv.Reader
	header  *Header
	current Sample
	rows    int
	err     error
}

// NewReader reads the header row from r and returns a Reader positioned
// before the first sample.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // rows may be short or carry extra columns
	cr.ReuseRecord = true

	names, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	return &Reader{csv: cr, header: NewHeader(names)}, nil
}

// Header returns the column names of the log.
func (r *Reader) Header() *Header {
	return r.header
}

// Next advances to the next sample and returns false at the end of the log,
// on error, or when ctx is done.
func (r *Reader) Next(ctx context.Context) bool {
	if r.err != nil {
		return false
	}

	select {
	case <-ctx.Done():
		r.err = ctx.Err()
		return false
	default:
	}

	record, err := r.csv.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			r.err = fmt.Errorf("reading row %d: %w", r.rows+1, err)
		}
		return false
	}

	r.current = NewSample(r.header, record)
	r.rows++
	return true
}

// Current returns the sample read by the last successful Next.
func (r *Reader) Current() Sample {
	return r.current
}

// Error returns the error that stopped iteration, if any.
func (r *Reader) Error() error {
	return r.err
}

// Table is a fully materialized telemetry log, in source row order
type Table struct {
	Header  *Header
	Samples []Sample
}

// ReadAll drains r into a Table. The whole log must be in memory before
// alignment because the index mapping needs its total length.
func ReadAll(ctx context.Context, r io.Reader) (*Table, error) {
	reader, err := NewReader(r)
	if err != nil {
		return nil, err
	}

	t := &Table{Header: reader.Header()}
	for reader.Next(ctx) {
		t.Samples = append(t.Samples, reader.Current())
	}
	if err = reader.Error(); err != nil {
		return nil, err
	}

	return t, nil
}

// Len returns the number of samples.
func (t *Table) Len() int {
	return len(t.Samples)
}

// Suggest returns the header column closest to name by edit distance, or an
// empty string when nothing is reasonably close.
func (t *Table) Suggest(name string) string {
	best, bestDist := "", len(name)/2+1
	for _, candidate := range t.Header.Names() {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}
