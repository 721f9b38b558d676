package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/rahul/abacus/internal/governance"
)

// AuditStore persists permission denials in SQLite.
type AuditStore struct {
	DB *sql.DB
}

func NewAuditStore(dbPath string) (*AuditStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	query := `CREATE TABLE IF NOT EXISTS denials (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		operation TEXT,
		reason TEXT,
		timestamp DATETIME
	);`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, err
	}

	return &AuditStore{DB: db}, nil
}

func (s *AuditStore) RecordDenial(ctx context.Context, d governance.Denial) error {
	query := `INSERT INTO denials (run_id, operation, reason, timestamp) VALUES (?, ?, ?, ?)`
	_, err := s.DB.ExecContext(ctx, query, d.RunID, d.Operation, d.Reason, d.At.UTC().Format(time.RFC3339Nano))
	return err
}

// RecentDenials returns up to limit denials, newest first.
func (s *AuditStore) RecentDenials(ctx context.Context, limit int) ([]governance.Denial, error) {
	query := `SELECT run_id, operation, reason, timestamp FROM denials ORDER BY id DESC LIMIT ?`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []governance.Denial
	for rows.Next() {
		var d governance.Denial
		var ts string
		if err := rows.Scan(&d.RunID, &d.Operation, &d.Reason, &ts); err != nil {
			return nil, err
		}
		d.At, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *AuditStore) Close() error {
	return s.DB.Close()
}
