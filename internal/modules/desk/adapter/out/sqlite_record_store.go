package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	deskout "studydesk/internal/modules/desk/port/out"
	apperrors "studydesk/internal/platform/errors"
	"studydesk/internal/platform/future"
)

var collectionName = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)

// SQLiteRecordStore keeps each collection in its own table with an
// autoincrement key. The database is opened on the first Open call; a failed
// open leaves the store uninitialized so the next Open tries again.
type SQLiteRecordStore struct {
	path    string
	now     func() time.Time
	control *future.Queue

	mu          sync.Mutex
	db          *sql.DB
	collections map[string]*sqliteCollection
	closed      bool
}

func NewSQLiteRecordStore(dbPath string) *SQLiteRecordStore {
	return &SQLiteRecordStore{
		path:        dbPath,
		now:         time.Now,
		control:     future.NewQueue(8),
		collections: map[string]*sqliteCollection{},
	}
}

func (s *SQLiteRecordStore) Open(ctx context.Context, name string) *future.Future[deskout.Collection] {
	if !collectionName.MatchString(name) {
		return future.Failed[deskout.Collection](fmt.Errorf("%w: collection name %q", apperrors.ErrInvalidInput, name))
	}
	return future.Submit(s.control, ctx, func(ctx context.Context) (deskout.Collection, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return nil, fmt.Errorf("%w: record store closed", apperrors.ErrStoreUnavailable)
		}
		if coll, ok := s.collections[name]; ok {
			return coll, nil
		}
		if s.db == nil {
			db, err := openSQLite(ctx, s.path)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
			}
			s.db = db
		}
		coll := &sqliteCollection{
			name:  name,
			table: "records_" + name,
			db:    s.db,
			now:   s.now,
			queue: future.NewQueue(32),
		}
		if err := coll.ensureSchema(ctx); err != nil {
			coll.queue.Close()
			return nil, err
		}
		s.collections[name] = coll
		return coll, nil
	})
}

// Close drains every collection queue before closing the database.
func (s *SQLiteRecordStore) Close() error {
	s.control.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, coll := range s.collections {
		coll.queue.Close()
	}
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type sqliteCollection struct {
	name  string
	table string
	db    *sql.DB
	now   func() time.Time
	queue *future.Queue
}

func (c *sqliteCollection) Name() string { return c.name }

func (c *sqliteCollection) ensureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  payload TEXT NOT NULL,
  created_at TEXT NOT NULL
);
`, c.table)
	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s table: %w", c.table, err)
	}
	return nil
}

func (c *sqliteCollection) Append(ctx context.Context, payload []byte) *future.Future[int64] {
	return future.Submit(c.queue, ctx, func(ctx context.Context) (int64, error) {
		res, err := c.db.ExecContext(ctx, `INSERT INTO `+c.table+` (payload, created_at) VALUES (?, ?)`, string(payload), formatTime(c.now()))
		if err != nil {
			return 0, fmt.Errorf("append %s: %w", c.name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("append %s: %w", c.name, err)
		}
		return id, nil
	})
}

func (c *sqliteCollection) ListAll(ctx context.Context) *future.Future[[]deskout.Record] {
	return future.Submit(c.queue, ctx, func(ctx context.Context) ([]deskout.Record, error) {
		rows, err := c.db.QueryContext(ctx, `SELECT id, payload, created_at FROM `+c.table+` ORDER BY id`)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", c.name, err)
		}
		defer rows.Close()
		out := []deskout.Record{}
		for rows.Next() {
			var (
				id      int64
				payload string
				created string
			)
			if err := rows.Scan(&id, &payload, &created); err != nil {
				return nil, fmt.Errorf("scan %s: %w", c.name, err)
			}
			out = append(out, deskout.Record{ID: id, Payload: []byte(payload), CreatedAt: parseTime(created)})
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("list %s: %w", c.name, err)
		}
		return out, nil
	})
}

func (c *sqliteCollection) Remove(ctx context.Context, id int64) *future.Future[struct{}] {
	return future.Submit(c.queue, ctx, func(ctx context.Context) (struct{}, error) {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM `+c.table+` WHERE id = ?`, id); err != nil {
			return struct{}{}, fmt.Errorf("remove %s/%d: %w", c.name, id, err)
		}
		return struct{}{}, nil
	})
}

func (c *sqliteCollection) ReplaceAll(ctx context.Context, payloads [][]byte) *future.Future[[]int64] {
	return future.Submit(c.queue, ctx, func(ctx context.Context) (ids []int64, err error) {
		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin %s tx: %w", c.name, err)
		}
		defer func() {
			if err != nil {
				err = errors.Join(err, tx.Rollback())
			}
		}()
		if _, err = tx.ExecContext(ctx, `DELETE FROM `+c.table); err != nil {
			return nil, fmt.Errorf("clear %s: %w", c.name, err)
		}
		at := formatTime(c.now())
		ids = make([]int64, 0, len(payloads))
		for _, payload := range payloads {
			res, execErr := tx.ExecContext(ctx, `INSERT INTO `+c.table+` (payload, created_at) VALUES (?, ?)`, string(payload), at)
			if execErr != nil {
				return nil, fmt.Errorf("insert %s: %w", c.name, execErr)
			}
			id, idErr := res.LastInsertId()
			if idErr != nil {
				return nil, fmt.Errorf("insert %s: %w", c.name, idErr)
			}
			ids = append(ids, id)
		}
		if err = tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit %s: %w", c.name, err)
		}
		return ids, nil
	})
}
