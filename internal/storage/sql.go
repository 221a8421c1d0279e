package storage

const (
	initSchemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at       DATETIME NOT NULL,
    telemetry_path   TEXT     NOT NULL,
    telemetry_digest TEXT,
    overlay_path     TEXT     NOT NULL,
    overlay_digest   TEXT,
    columns          TEXT     NOT NULL,
    config           TEXT
);

CREATE TABLE IF NOT EXISTS records (
    session_id INTEGER NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
    row_index  INTEGER NOT NULL,
    time       TEXT    NOT NULL,
    latitude   REAL    NOT NULL,
    longitude  REAL    NOT NULL,
    distance   INTEGER NOT NULL,
    elevation  TEXT    NOT NULL,
    channels   TEXT    NOT NULL,
    bitrate    REAL    NOT NULL,
    delay      REAL    NOT NULL,
    PRIMARY KEY (session_id, row_index)
);`

	insertSessionSQL = `
INSERT INTO sessions (
                      created_at,
                      telemetry_path,
                      telemetry_digest,
                      overlay_path,
                      overlay_digest,
                      columns,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?, ?, ?, ?)`

	selectSessionSQL = `
SELECT
    s.id,
    s.created_at,
    s.telemetry_path,
    s.telemetry_digest,
    s.overlay_path,
    s.overlay_digest,
    s.columns,
    s.config,
    (SELECT COUNT(*) FROM records r WHERE r.session_id = s.id)
FROM sessions s
WHERE
    s.id = ?`

	selectSessionsSQL = `
SELECT
    s.id,
    s.created_at,
    s.telemetry_path,
    s.telemetry_digest,
    s.overlay_path,
    s.overlay_digest,
    s.columns,
    s.config,
    (SELECT COUNT(*) FROM records r WHERE r.session_id = s.id)
FROM sessions s
ORDER BY s.id`

	insertRecordSQL = `
INSERT INTO records (
                     session_id,
                     row_index,
                     time,
                     latitude,
                     longitude,
                     distance,
                     elevation,
                     channels,
                     bitrate,
                     delay)
VALUES `

	selectRecordsSQL = `
SELECT
    row_index,
    time,
    latitude,
    longitude,
    distance,
    elevation,
    channels,
    bitrate,
    delay
FROM records
WHERE
    session_id = ?
    AND row_index >= ?
ORDER BY row_index`
)

const (
	recordPlaceholder = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	recordColumns     = 10

	// Keeps a single INSERT well under SQLITE_MAX_VARIABLE_NUMBER.
	recordBatchSize = 500
)
