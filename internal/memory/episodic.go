// Package memory provides the assistant's memory stores: a SQLite-backed
// episodic log of processed events and a TTL-bounded working memory for
// transient pipeline state.
package memory

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Episode is one recorded event: a processed document, an approval, a
// detected conflict.
type Episode struct {
	ID           int64
	EventType    string
	Timestamp    time.Time
	SourceFile   string
	Content      string
	Participants []string
	Metadata     map[string]any
}

// EpisodicStore records episodes in a SQLite database.
type EpisodicStore struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// OpenEpisodic opens the episodic database at path, creating parent
// directories and the schema as needed. WAL mode is enabled for
// concurrent reads.
func OpenEpisodic(path string) (*EpisodicStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec(schemaEpisodes); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create episodes table: %w", err)
	}

	return &EpisodicStore{conn: conn, path: path}, nil
}

const schemaEpisodes = `
CREATE TABLE IF NOT EXISTS episodes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	event_type TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	source_file TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL DEFAULT '',
	participants TEXT NOT NULL DEFAULT '[]',
	metadata TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_episodes_timestamp ON episodes(timestamp);
CREATE INDEX IF NOT EXISTS idx_episodes_event_type ON episodes(event_type);
`

// Close closes the database connection.
func (s *EpisodicStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *EpisodicStore) Path() string {
	return s.path
}

// Add records an episode. A zero Timestamp is filled with the current time.
func (s *EpisodicStore) Add(ep Episode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ep.Timestamp.IsZero() {
		ep.Timestamp = time.Now()
	}
	participants, err := json.Marshal(nonNilSlice(ep.Participants))
	if err != nil {
		return fmt.Errorf("encode participants: %w", err)
	}
	metadata, err := json.Marshal(nonNilMap(ep.Metadata))
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = s.conn.Exec(
		"INSERT INTO episodes (event_type, timestamp, source_file, content, participants, metadata) VALUES (?, ?, ?, ?, ?, ?)",
		ep.EventType, formatTime(ep.Timestamp), ep.SourceFile, ep.Content, string(participants), string(metadata),
	)
	if err != nil {
		return fmt.Errorf("insert episode: %w", err)
	}
	return nil
}

// Recent returns episodes newer than the given age, newest first.
// eventType filters by type when non-empty.
func (s *EpisodicStore) Recent(age time.Duration, eventType string) ([]Episode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := formatTime(time.Now().Add(-age))
	query := "SELECT id, event_type, timestamp, source_file, content, participants, metadata FROM episodes WHERE timestamp > ?"
	args := []any{cutoff}
	if eventType != "" {
		query += " AND event_type = ?"
		args = append(args, eventType)
	}
	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, ep)
	}
	return episodes, rows.Err()
}

// Count returns the total number of recorded episodes.
func (s *EpisodicStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.conn.QueryRow("SELECT COUNT(*) FROM episodes").Scan(&n); err != nil {
		return 0, fmt.Errorf("count episodes: %w", err)
	}
	return n, nil
}

func scanEpisode(rows *sql.Rows) (Episode, error) {
	var ep Episode
	var ts, participants, metadata string
	if err := rows.Scan(&ep.ID, &ep.EventType, &ts, &ep.SourceFile, &ep.Content, &participants, &metadata); err != nil {
		return Episode{}, fmt.Errorf("scan episode: %w", err)
	}

	parsed, err := parseTime(ts)
	if err != nil {
		return Episode{}, fmt.Errorf("parse episode timestamp: %w", err)
	}
	ep.Timestamp = parsed

	if err := json.Unmarshal([]byte(participants), &ep.Participants); err != nil {
		return Episode{}, fmt.Errorf("decode participants: %w", err)
	}
	if err := json.Unmarshal([]byte(metadata), &ep.Metadata); err != nil {
		return Episode{}, fmt.Errorf("decode metadata: %w", err)
	}
	return ep, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nonNilSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
