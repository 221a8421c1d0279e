package storage

import (
	"context"
	"time"

	"github.com/roman-kulish/flightlog-fusion/internal/merge"
)

// Source identifies an input log by its path and content digest
type Source struct {
	Path   string
	Digest string // xxh3 64-bit digest, hex encoded; empty if unknown
}

// Session describes one fused flight stored in the database
type Session struct {
	ID        int64
	CreatedAt time.Time
	Telemetry Source
	Overlay   Source
	Columns   []string // Passthrough output column names, in order
	Config    *string  // Run configuration as JSON, if any
	Records   int
}

// Schema rebuilds the output layout the session was recorded with. Source
// column names are not kept, so each passthrough maps onto itself.
func (s *Session) Schema() merge.Schema {
	pt := make([]merge.Passthrough, len(s.Columns))
	for i, name := range s.Columns {
		pt[i] = merge.Passthrough{Name: name, Source: name}
	}
	return merge.Schema{Passthrough: pt}
}

// Store persists fused flights so they can be exported or rendered again
// without the source logs.
type Store interface {
	// CreateSession registers a new fused flight and returns its identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - telemetry, overlay: The source logs the flight was fused from
	//   - schema: Output layout of the records that will be stored
	//   - config: Optional run configuration. Can be string, []byte, or JSON-serializable object
	CreateSession(ctx context.Context, telemetry, overlay Source, schema merge.Schema, config any) (sessionID int64, err error)

	// Session retrieves a single session by its ID.
	Session(ctx context.Context, id int64) (session *Session, err error)

	// Sessions returns all stored sessions ordered by ID.
	Sessions(ctx context.Context) (sessions []*Session, err error)

	// StoreRecords saves fused records for a session in a single transaction.
	// Row indexes follow slice order.
	StoreRecords(ctx context.Context, sessionID int64, records []merge.Record) error

	// ReadRecords returns an iterator over the records of a session in row
	// order. The reader must be closed after use.
	ReadRecords(ctx context.Context, sessionID int64, opts ...ReaderOption) (RecordReader, error)

	// Close releases all database connections. It is safe to call Close
	// multiple times.
	Close() error
}

// RecordReader iterates over stored records
type RecordReader interface {
	// Session returns the session the records belong to.
	Session() *Session

	// Next advances the iterator and returns true if there is another record
	// to read, false when the iteration is complete or if an error occurred.
	Next(context.Context) bool

	// Current returns the current record. If called after Next() returns
	// false, the behavior is undefined.
	Current() *merge.Record

	// Error returns any error that occurred during iteration.
	Error() error

	// Close releases resources associated with the reader.
	Close() error
}
