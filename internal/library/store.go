// Package library persists the cues accumulated from loaded media so a
// search session survives between invocations.
package library

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mgpai22/subsearch/internal/cueindex"
	"github.com/mgpai22/subsearch/internal/subtitle"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates a library written by an incompatible version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const lockRetryDelay = 50 * time.Millisecond

// Media describes one loaded media item.
type Media struct {
	ID       string
	Path     string
	LoadedAt time.Time
	CueCount int
}

// Store is the SQLite-backed cue library. Writers take an exclusive file
// lock so concurrent loads append one media item at a time.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open creates or opens the library database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create library directory: %w", err)
	}

	// per-connection pragmas go in the DSN so every pooled connection gets them
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma %q: %w", "journal_mode=WAL", err)
	}

	s := &Store{
		db:   db,
		path: path,
		lock: flock.New(path + ".lock"),
	}
	if err := s.withLock(ctx, s.initSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: library has version %d, expected %d (run 'subsearch clear' or delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func (s *Store) withLock(ctx context.Context, fn func(context.Context) error) error {
	ok, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire library lock: %w", err)
	}
	if !ok {
		return errors.New("library is locked by another process")
	}
	defer func() { _ = s.lock.Unlock() }()
	return fn(ctx)
}

// Append records cues loaded from source as a new media item. Either every
// cue is stored or none is. Each cue's Source is replaced by source.
func (s *Store) Append(ctx context.Context, source string, cues []subtitle.Cue) (Media, error) {
	m := Media{
		ID:       uuid.NewString(),
		Path:     source,
		LoadedAt: time.Now().UTC().Truncate(time.Millisecond),
		CueCount: len(cues),
	}

	err := s.withLock(ctx, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin append tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO media (id, path, loaded_at) VALUES (?, ?, ?)",
			m.ID, m.Path, m.LoadedAt.UnixMilli(),
		); err != nil {
			return fmt.Errorf("insert media: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO cues (media_id, start_ms, end_ms, text) VALUES (?, ?, ?, ?)",
		)
		if err != nil {
			return fmt.Errorf("prepare cue insert: %w", err)
		}
		defer stmt.Close()

		for _, cue := range cues {
			if _, err := stmt.ExecContext(ctx,
				m.ID,
				cue.StartTime.Milliseconds(),
				cue.EndTime.Milliseconds(),
				cue.Text,
			); err != nil {
				return fmt.Errorf("insert cue: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit append: %w", err)
		}
		return nil
	})
	if err != nil {
		return Media{}, err
	}
	return m, nil
}

// Cues loads every stored cue, in load order, into a collection.
func (s *Store) Cues(ctx context.Context) (*cueindex.Collection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.path, c.start_ms, c.end_ms, c.text
		FROM cues c
		JOIN media m ON m.id = c.media_id
		ORDER BY m.seq, c.id`)
	if err != nil {
		return nil, fmt.Errorf("query cues: %w", err)
	}
	defer rows.Close()

	collection := cueindex.NewCollection()
	for rows.Next() {
		var (
			cue            subtitle.Cue
			startMS, endMS int64
		)
		if err := rows.Scan(&cue.Source, &startMS, &endMS, &cue.Text); err != nil {
			return nil, fmt.Errorf("scan cue: %w", err)
		}
		cue.StartTime = time.Duration(startMS) * time.Millisecond
		cue.EndTime = time.Duration(endMS) * time.Millisecond
		collection.Append(cue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cues: %w", err)
	}
	return collection, nil
}

// Media lists loaded media items in load order.
func (s *Store) Media(ctx context.Context) ([]Media, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.path, m.loaded_at, COUNT(c.id)
		FROM media m
		LEFT JOIN cues c ON c.media_id = m.id
		GROUP BY m.seq
		ORDER BY m.seq`)
	if err != nil {
		return nil, fmt.Errorf("query media: %w", err)
	}
	defer rows.Close()

	var items []Media
	for rows.Next() {
		var (
			m        Media
			loadedAt int64
		)
		if err := rows.Scan(&m.ID, &m.Path, &loadedAt, &m.CueCount); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		m.LoadedAt = time.UnixMilli(loadedAt).UTC()
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media: %w", err)
	}
	return items, nil
}

// Clear removes every media item and cue.
func (s *Store) Clear(ctx context.Context) error {
	return s.withLock(ctx, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin clear tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM cues"); err != nil {
			return fmt.Errorf("clear cues: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM media"); err != nil {
			return fmt.Errorf("clear media: %w", err)
		}
		return tx.Commit()
	})
}

// Remove drops every media item loaded from source and returns how many
// were removed.
func (s *Store) Remove(ctx context.Context, source string) (int, error) {
	var removed int
	err := s.withLock(ctx, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin remove tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM cues WHERE media_id IN (SELECT id FROM media WHERE path = ?)",
			source,
		); err != nil {
			return fmt.Errorf("remove cues: %w", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM media WHERE path = ?", source)
		if err != nil {
			return fmt.Errorf("remove media: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("remove media: %w", err)
		}
		removed = int(n)
		return tx.Commit()
	})
	return removed, err
}
