package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roman-kulish/flightlog-fusion/internal/merge"
)

// ReaderOption configures a record reader
type ReaderOption func(*SqliteRecordReader)

// WithStartRow skips records before the given row index.
func WithStartRow(row int) ReaderOption {
	return func(r *SqliteRecordReader) {
		r.startRow = max(row, 0)
	}
}

func newSqliteRecordReader(ctx context.Context, db *sql.DB, sessionID int64, opts ...ReaderOption) (*SqliteRecordReader, error) {
	rr := &SqliteRecordReader{
		db:        db,
		sessionID: sessionID,
	}
	for _, opt := range opts {
		opt(rr)
	}
	if err := rr.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return rr, nil
}

// SqliteRecordReader implements RecordReader for the Sqlite backend
type SqliteRecordReader struct {
	db *sql.DB

	sessionID int64
	session   *Session
	startRow  int

	current *merge.Record
	rows    *sql.Rows
	err     error
}

func (rr *SqliteRecordReader) init(ctx context.Context) error {
	if rr.db == nil {
		return errors.New("database connection required")
	}
	if rr.sessionID <= 0 {
		return errors.New("session ID required")
	}

	steps := []struct {
		msg string
		fn  func(context.Context) error
	}{
		{msg: "loading session", fn: rr.loadSession},
		{msg: "initializing query", fn: rr.initQuery},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.msg, err)
		}
	}
	return nil
}

func (rr *SqliteRecordReader) loadSession(ctx context.Context) (err error) {
	rr.session, err = loadSession(ctx, rr.db, rr.sessionID)
	return
}

func (rr *SqliteRecordReader) initQuery(ctx context.Context) (err error) {
	stmt, err := rr.db.PrepareContext(ctx, selectRecordsSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	rr.rows, err = stmt.QueryContext(ctx, rr.sessionID, rr.startRow)
	return
}

func (rr *SqliteRecordReader) Session() *Session {
	return rr.session
}

func (rr *SqliteRecordReader) Next(ctx context.Context) bool {
	if rr.err != nil || rr.rows == nil {
		return false
	}

	select {
	case <-ctx.Done():
		rr.err = ctx.Err()
		return false
	default:
	}

	if !rr.rows.Next() {
		return false
	}

	var data recordData
	err := rr.rows.Scan(
		&data.RowIndex,
		&data.Time,
		&data.Latitude,
		&data.Longitude,
		&data.Distance,
		&data.Elevation,
		&data.Channels,
		&data.Bitrate,
		&data.Delay,
	)
	if err != nil {
		rr.err = fmt.Errorf("scanning record: %w", err)
		return false
	}

	if rr.current, rr.err = data.toRecord(); rr.err != nil {
		return false
	}
	return true
}

func (rr *SqliteRecordReader) Current() *merge.Record {
	return rr.current
}

func (rr *SqliteRecordReader) Error() error {
	if rr.err != nil {
		return rr.err
	}
	if rr.rows != nil {
		return rr.rows.Err()
	}
	return nil
}

func (rr *SqliteRecordReader) Close() error {
	if rr.rows != nil {
		err := rr.rows.Close()
		rr.current = nil
		rr.rows = nil
		return err
	}
	return nil
}
