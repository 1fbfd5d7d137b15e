// Package history persists assembled transactions in a local sqlite file.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	clierr "github.com/ggonzalez94/near-cli/internal/errors"
)

const lockTimeout = 5 * time.Second

type Store struct {
	db   *sql.DB
	lock *flock.Flock
}

func Open(path, lockPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, clierr.Wrap(clierr.CodeIO, "create history directory", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, clierr.Wrap(clierr.CodeIO, "create history lock directory", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeIO, "open history sqlite", err)
	}

	queries := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		`CREATE TABLE IF NOT EXISTS transactions (
			record_id TEXT PRIMARY KEY,
			command TEXT NOT NULL,
			status TEXT NOT NULL,
			network TEXT NOT NULL,
			signer_id TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			payload BLOB NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_transactions_status_updated ON transactions(status, updated_at DESC);",
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			_ = db.Close()
			return nil, clierr.Wrap(clierr.CodeIO, "init history schema", err)
		}
	}
	return &Store{db: db, lock: flock.New(lockPath)}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, record Record) error {
	if strings.TrimSpace(record.ID) == "" {
		return clierr.New(clierr.CodeInternal, "save history record: missing id")
	}
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	locked, err := s.lock.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil {
		return clierr.Wrap(clierr.CodeIO, "lock history store", err)
	}
	if !locked {
		return clierr.New(clierr.CodeIO, "lock history store: timeout acquiring lock")
	}
	defer func() { _ = s.lock.Unlock() }()

	payload, err := json.Marshal(record)
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "marshal history record", err)
	}
	createdUnix := parseRFC3339Unix(record.CreatedAt)
	updatedUnix := parseRFC3339Unix(record.UpdatedAt)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transactions (record_id, command, status, network, signer_id, created_at, updated_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(record_id) DO UPDATE SET
			status=excluded.status,
			network=excluded.network,
			updated_at=excluded.updated_at,
			payload=excluded.payload
	`, record.ID, record.Command, string(record.Status), record.Network, record.SignerID, createdUnix, updatedUnix, payload)
	if err != nil {
		return clierr.Wrap(clierr.CodeIO, "save history record", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM transactions WHERE record_id = ?", id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("history record not found: %s", id))
		}
		return Record{}, clierr.Wrap(clierr.CodeIO, "read history record", err)
	}
	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return Record{}, clierr.Wrap(clierr.CodeIO, "decode history record", err)
	}
	return record, nil
}

func (s *Store) List(ctx context.Context, status string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	var (
		rows *sql.Rows
		err  error
	)
	if strings.TrimSpace(status) == "" {
		rows, err = s.db.QueryContext(ctx, "SELECT payload FROM transactions ORDER BY updated_at DESC, rowid DESC LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, "SELECT payload FROM transactions WHERE status = ? ORDER BY updated_at DESC, rowid DESC LIMIT ?", status, limit)
	}
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeIO, "list history records", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, clierr.Wrap(clierr.CodeIO, "scan history row", err)
		}
		var record Record
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, clierr.Wrap(clierr.CodeIO, "decode history row", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, clierr.Wrap(clierr.CodeIO, "iterate history rows", err)
	}
	return records, nil
}

func parseRFC3339Unix(v string) int64 {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Now().UTC().Unix()
	}
	return t.UTC().Unix()
}
