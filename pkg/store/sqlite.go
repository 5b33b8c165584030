package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// OpenSQLite opens a SQLite database. dsn is a file path, "file:..." URI or
// ":memory:"; a "sqlite://" or "file://" prefix is stripped. WAL mode and a
// busy timeout are enabled for file databases.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	dsn = strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite://"), "file://")
	if dsn == "" {
		return nil, ErrInvalidURL
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Join(ErrConnect, err)
	}
	if dsn == ":memory:" {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	pragmas := []string{"PRAGMA busy_timeout = 5000", "PRAGMA foreign_keys = ON"}
	if dsn != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, errors.Join(ErrConnect, err)
		}
	}
	return db, nil
}

// SQLite stores items as JSON documents in one table per collection:
//
//	id TEXT PRIMARY KEY, data TEXT, created_at INTEGER, updated_at INTEGER
//
// Timestamps are Unix milliseconds. The schema only uses SQL that libSQL
// (Turso) also accepts.
type SQLite[T any] struct {
	db    *sql.DB
	table string
}

// NewSQLite creates the collection table if needed.
func NewSQLite[T any](ctx context.Context, db *sql.DB, collection string) (*SQLite[T], error) {
	if err := validName(collection); err != nil {
		return nil, err
	}
	s := &SQLite[T]{db: db, table: collection}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
	id TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
)`, s.table)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("store: create table %s: %w", collection, err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %q ON %q (created_at)`, s.table+"_created_at", s.table)); err != nil {
		return nil, fmt.Errorf("store: create index on %s: %w", collection, err)
	}
	return s, nil
}

// Ping checks the database connection.
func (s *SQLite[T]) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.Join(ErrHealthcheck, err)
	}
	return nil
}

func (s *SQLite[T]) Get(ctx context.Context, id string) (Item[T], error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, data, created_at, updated_at FROM %q WHERE id = ?`, s.table), id)
	item, err := scanItem[T](row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item[T]{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return item, err
}

func (s *SQLite[T]) List(ctx context.Context) ([]Item[T], error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, data, created_at, updated_at FROM %q ORDER BY created_at, rowid`, s.table))
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", s.table, err)
	}
	defer rows.Close()

	out := []Item[T]{}
	for rows.Next() {
		item, err := scanItem[T](rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *SQLite[T]) Create(ctx context.Context, data T) (Item[T], error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Item[T]{}, errors.Join(ErrEncode, err)
	}
	ts := now()
	item := Item[T]{ID: newID(), Data: data, CreatedAt: ts, UpdatedAt: ts}
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %q (id, data, created_at, updated_at) VALUES (?, ?, ?, ?)`, s.table),
		item.ID, string(raw), ts.UnixMilli(), ts.UnixMilli())
	if err != nil {
		return Item[T]{}, fmt.Errorf("store: insert into %s: %w", s.table, err)
	}
	return item, nil
}

func (s *SQLite[T]) Update(ctx context.Context, id string, data T) (Item[T], error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Item[T]{}, errors.Join(ErrEncode, err)
	}
	ts := now()
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %q SET data = ?, updated_at = ? WHERE id = ?`, s.table),
		string(raw), ts.UnixMilli(), id)
	if err != nil {
		return Item[T]{}, fmt.Errorf("store: update %s: %w", s.table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Item[T]{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.Get(ctx, id)
}

func (s *SQLite[T]) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %q WHERE id = ?`, s.table), id)
	if err != nil {
		return fmt.Errorf("store: delete from %s: %w", s.table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem[T any](row scanner) (Item[T], error) {
	var (
		item             Item[T]
		raw              string
		created, updated int64
	)
	if err := row.Scan(&item.ID, &raw, &created, &updated); err != nil {
		return Item[T]{}, err
	}
	if err := json.Unmarshal([]byte(raw), &item.Data); err != nil {
		return Item[T]{}, errors.Join(ErrDecode, err)
	}
	item.CreatedAt = time.UnixMilli(created).UTC()
	item.UpdatedAt = time.UnixMilli(updated).UTC()
	return item, nil
}
