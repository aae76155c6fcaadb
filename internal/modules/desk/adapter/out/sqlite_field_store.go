package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	deskout "studydesk/internal/modules/desk/port/out"
)

type SQLiteFieldStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteFieldStore(dbPath string) (deskout.FieldStore, error) {
	db, err := openSQLite(context.Background(), dbPath)
	if err != nil {
		return nil, err
	}
	store := &SQLiteFieldStore{db: db, now: time.Now}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteFieldStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS fields (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create fields table: %w", err)
	}
	return nil
}

const upsertField = `
INSERT INTO fields (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at;
`

func (s *SQLiteFieldStore) Get(ctx context.Context, key, def string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM fields WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("get field %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteFieldStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, upsertField, key, value, formatTime(s.now())); err != nil {
		return fmt.Errorf("set field %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteFieldStore) SetAll(ctx context.Context, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin fields tx: %w", err)
	}
	at := formatTime(s.now())
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, upsertField, k, values[k], at); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("set field %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fields: %w", err)
	}
	return nil
}

func (s *SQLiteFieldStore) Close() error {
	return s.db.Close()
}
