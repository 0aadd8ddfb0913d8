package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS valuations (
	token      TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	payload    TEXT NOT NULL DEFAULT '{}',
	valuation  TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_valuations_created_at ON valuations (created_at DESC);
`

// SQLiteStore persists valuation records to SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(rec Record) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	val, err := json.Marshal(rec.Valuation)
	if err != nil {
		return fmt.Errorf("marshal valuation: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO valuations (token, created_at, payload, valuation) VALUES (?, ?, ?, ?)`,
		rec.Token, rec.CreatedAt.UTC().Format(time.RFC3339Nano), string(payload), string(val),
	)
	if err != nil {
		return fmt.Errorf("insert valuation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(token string) (Record, bool, error) {
	row := s.db.QueryRow(`SELECT token, created_at, payload, valuation FROM valuations WHERE token = ?`, token)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (s *SQLiteStore) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT token, created_at, payload, valuation FROM valuations ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var createdAt, payload, val string
	if err := row.Scan(&rec.Token, &createdAt, &payload, &val); err != nil {
		return Record{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = ts
	if err := json.Unmarshal([]byte(payload), &rec.Payload); err != nil {
		return Record{}, fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := json.Unmarshal([]byte(val), &rec.Valuation); err != nil {
		return Record{}, fmt.Errorf("unmarshal valuation: %w", err)
	}
	return rec, nil
}
