package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/dagaz/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS days (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL DEFAULT '[]'
);
`

// SQLite implements Provider backed by a single key-value table.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Load returns the stored tasks for a date, or (nil, nil) when absent
// or undecodable.
func (s *SQLite) Load(date string) ([]models.Task, error) {
	var value string
	err := s.conn.QueryRow(`SELECT value FROM days WHERE key = ?`, KeyPrefix+date).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: load %s: %w", date, err)
	}
	var tasks []models.Task
	if err := json.Unmarshal([]byte(value), &tasks); err != nil {
		// Corrupt payload reads as absent.
		return nil, nil
	}
	return tasks, nil
}

// Save upserts the full task list for a date.
func (s *SQLite) Save(date string, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	value, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", date, err)
	}
	_, err = s.conn.Exec(`
		INSERT INTO days (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, KeyPrefix+date, string(value))
	if err != nil {
		return fmt.Errorf("storage: save %s: %w", date, err)
	}
	return nil
}

// Dates returns every date key with a stored value.
func (s *SQLite) Dates() ([]string, error) {
	rows, err := s.conn.Query(`SELECT key FROM days`)
	if err != nil {
		return nil, fmt.Errorf("storage: dates: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, strings.TrimPrefix(k, KeyPrefix))
	}
	return out, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}
