package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/zeebo/xxh3"

	"github.com/roman-kulish/flightlog-fusion/internal/merge"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toConfigData(config any) (data sql.NullString, err error) {
	switch v := config.(type) {
	case nil:
	case string:
		data = sql.NullString{String: v, Valid: true}
	case []byte:
		data = sql.NullString{String: string(v), Valid: true}
	default:
		var p []byte
		if p, err = json.Marshal(v); err != nil {
			return data, fmt.Errorf("marshaling config: %w", err)
		}
		data = sql.NullString{String: string(p), Valid: true}
	}
	return
}

func toRecordData(sessionID int64, index int, r *merge.Record) (*recordData, error) {
	channels, err := json.Marshal(r.Channels)
	if err != nil {
		return nil, fmt.Errorf("marshaling channels: %w", err)
	}

	return &recordData{
		SessionID: sessionID,
		RowIndex:  int64(index),
		Time:      r.Time,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Distance:  r.Distance,
		Elevation: r.Elevation,
		Channels:  string(channels),
		Bitrate:   r.Link.Bitrate,
		Delay:     r.Link.Delay,
	}, nil
}

func (d *recordData) toRecord() (*merge.Record, error) {
	var channels []string
	if err := json.UnmarshalFromString(d.Channels, &channels); err != nil {
		return nil, fmt.Errorf("unmarshaling channels of row %d: %w", d.RowIndex, err)
	}

	r := merge.Record{
		Time:      d.Time,
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		Distance:  d.Distance,
		Elevation: d.Elevation,
		Channels:  channels,
	}
	r.Link.Bitrate = d.Bitrate
	r.Link.Delay = d.Delay
	return &r, nil
}

func scanSession(row interface{ Scan(...any) error }) (*Session, error) {
	var data sessionData
	err := row.Scan(
		&data.ID,
		&data.CreatedAt,
		&data.TelemetryPath,
		&data.TelemetryDigest,
		&data.OverlayPath,
		&data.OverlayDigest,
		&data.Columns,
		&data.Config,
		&data.Records,
	)
	if err != nil {
		return nil, err
	}

	sess := Session{
		ID:        data.ID,
		CreatedAt: data.CreatedAt,
		Telemetry: Source{Path: data.TelemetryPath, Digest: data.TelemetryDigest.String},
		Overlay:   Source{Path: data.OverlayPath, Digest: data.OverlayDigest.String},
		Records:   int(data.Records),
	}
	if err = json.UnmarshalFromString(data.Columns, &sess.Columns); err != nil {
		return nil, fmt.Errorf("unmarshaling columns: %w", err)
	}
	if data.Config.Valid {
		sess.Config = &data.Config.String
	}
	return &sess, nil
}

// DigestReader hashes everything read through it
type DigestReader struct {
	r io.Reader
	h *xxh3.Hasher
}

// NewDigestReader wraps r so the source digest can be taken while it is
// being parsed.
func NewDigestReader(r io.Reader) *DigestReader {
	h := xxh3.New()
	return &DigestReader{r: io.TeeReader(r, h), h: h}
}

func (d *DigestReader) Read(p []byte) (int, error) {
	return d.r.Read(p)
}

// Digest returns the hex encoded digest of the bytes read so far.
func (d *DigestReader) Digest() string {
	return fmt.Sprintf("%016x", d.h.Sum64())
}
