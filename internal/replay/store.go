// Package replay records synthesized message streams to SQLite and
// plays them back through the decoder with their original timing.
package replay

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Session is one recorded capture.
type Session struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CenterLat float64   `json:"centerLat"`
	CenterLng float64   `json:"centerLng"`
	StartedAt time.Time `json:"startedAt"`
	Messages  int       `json:"messages"`
}

// Recorded is one stored frame with its offset from session start.
type Recorded struct {
	Offset time.Duration `json:"offsetMs"`
	ICAO   string        `json:"icao"`
	Kind   string        `json:"kind"`
	Hex    string        `json:"hex"`
}

// Store wraps a SQLite database holding recorded sessions.
type Store struct {
	db *sql.DB
}

// Open opens or creates a recording database at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL keeps the recorder from blocking concurrent readers.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		center_lat REAL NOT NULL,
		center_lng REAL NOT NULL,
		started_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES sessions(id),
		offset_ms INTEGER NOT NULL,
		icao TEXT NOT NULL,
		kind TEXT NOT NULL,
		hex TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, offset_ms);
	CREATE INDEX IF NOT EXISTS idx_messages_icao ON messages(icao);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateSession inserts a session row and returns its id.
func (s *Store) CreateSession(name string, centerLat, centerLng float64, startedAt time.Time) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO sessions (name, center_lat, center_lng, started_at)
		VALUES (?, ?, ?, ?)
	`, name, centerLat, centerLng, startedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	return res.LastInsertId()
}

// Append stores one frame under a session.
func (s *Store) Append(sessionID int64, offset time.Duration, icao, kind, hexMsg string) error {
	_, err := s.db.Exec(`
		INSERT INTO messages (session_id, offset_ms, icao, kind, hex)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, offset.Milliseconds(), icao, kind, hexMsg)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Sessions lists all recorded sessions, newest first.
func (s *Store) Sessions() ([]Session, error) {
	rows, err := s.db.Query(`
		SELECT s.id, s.name, s.center_lat, s.center_lng, s.started_at, COUNT(m.id)
		FROM sessions s
		LEFT JOIN messages m ON m.session_id = s.id
		GROUP BY s.id
		ORDER BY s.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var started string
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.CenterLat, &sess.CenterLng, &started, &sess.Messages); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Session fetches one session by id. Returns nil when it does not exist.
func (s *Store) Session(id int64) (*Session, error) {
	row := s.db.QueryRow(`
		SELECT s.id, s.name, s.center_lat, s.center_lng, s.started_at, COUNT(m.id)
		FROM sessions s
		LEFT JOIN messages m ON m.session_id = s.id
		WHERE s.id = ?
		GROUP BY s.id
	`, id)

	var sess Session
	var started string
	if err := row.Scan(&sess.ID, &sess.Name, &sess.CenterLat, &sess.CenterLng, &started, &sess.Messages); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	sess.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	return &sess, nil
}

// LatestSession returns the most recent session, or nil when the store
// is empty.
func (s *Store) LatestSession() (*Session, error) {
	row := s.db.QueryRow(`SELECT id FROM sessions ORDER BY id DESC LIMIT 1`)
	var id int64
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s.Session(id)
}

// Messages returns a session's frames ordered by offset.
func (s *Store) Messages(sessionID int64) ([]Recorded, error) {
	rows, err := s.db.Query(`
		SELECT offset_ms, icao, kind, hex
		FROM messages
		WHERE session_id = ?
		ORDER BY offset_ms, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []Recorded
	for rows.Next() {
		var m Recorded
		var offsetMS int64
		if err := rows.Scan(&offsetMS, &m.ICAO, &m.Kind, &m.Hex); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Offset = time.Duration(offsetMS) * time.Millisecond
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
