package storage

import (
	"database/sql"
	"time"
)

type sessionData struct {
	ID              int64
	CreatedAt       time.Time
	TelemetryPath   string
	TelemetryDigest sql.NullString
	OverlayPath     string
	OverlayDigest   sql.NullString
	Columns         string
	Config          sql.NullString
	Records         int64
}

type recordData struct {
	SessionID int64
	RowIndex  int64
	Time      string
	Latitude  float64
	Longitude float64
	Distance  int64
	Elevation string
	Channels  string
	Bitrate   float64
	Delay     float64
}
