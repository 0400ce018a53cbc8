// Package store persists decks in SQLite. Each row holds one serialized
// facade together with the name of the algorithm that can load it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/sky-flux/deck"
)

var (
	// ErrNotFound is returned when no deck has the requested name.
	ErrNotFound = errors.New("store: deck not found")

	// ErrAlgorithmMismatch is returned when a deck is loaded as a different
	// algorithm than it was saved with.
	ErrAlgorithmMismatch = errors.New("store: deck algorithm mismatch")
)

// Record is one stored deck.
type Record struct {
	Name      string
	Algorithm string
	Payload   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store handles persistence of decks.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// Open opens the SQLite database at path, applies migrations and returns a
// store over it. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection serializes writers and keeps an in-memory database alive.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(db, logger); err != nil {
		_ = db.Close() //nolint:errcheck // already failing
		return nil, err
	}
	return New(db, logger), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{db: db, logger: logger, now: time.Now}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts or replaces the deck called name.
func (s *Store) Put(ctx context.Context, name, algorithm string, payload []byte) error {
	now := s.now().Unix()
	query := sq.Insert("decks").
		Columns("name", "algorithm", "payload", "created_at", "updated_at").
		Values(name, algorithm, payload, now, now).
		Suffix("ON CONFLICT(name) DO UPDATE SET algorithm = excluded.algorithm, payload = excluded.payload, updated_at = excluded.updated_at")

	queryStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, queryStr, args...); err != nil {
		return fmt.Errorf("save deck %q: %w", name, err)
	}
	s.logger.Debug().Str("deck", name).Str("algorithm", algorithm).Int("bytes", len(payload)).Msg("saved deck")
	return nil
}

// Get returns the deck called name, or ErrNotFound.
func (s *Store) Get(ctx context.Context, name string) (Record, error) {
	queryStr, args, err := sq.Select("name", "algorithm", "payload", "created_at", "updated_at").
		From("decks").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return Record{}, fmt.Errorf("build query: %w", err)
	}

	var (
		rec                  Record
		createdAt, updatedAt int64
	)
	err = s.db.QueryRowContext(ctx, queryStr, args...).
		Scan(&rec.Name, &rec.Algorithm, &rec.Payload, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return Record{}, fmt.Errorf("load deck %q: %w", name, err)
	}
	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)
	return rec, nil
}

// List returns every stored deck ordered by name. Payloads are omitted.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	queryStr, args, err := sq.Select("name", "algorithm", "created_at", "updated_at").
		From("decks").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, queryStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only

	var out []Record
	for rows.Next() {
		var (
			rec                  Record
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&rec.Name, &rec.Algorithm, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan deck: %w", err)
		}
		rec.CreatedAt = time.Unix(createdAt, 0)
		rec.UpdatedAt = time.Unix(updatedAt, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes the deck called name, or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, name string) error {
	queryStr, args, err := sq.Delete("decks").Where(sq.Eq{"name": name}).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, queryStr, args...)
	if err != nil {
		return fmt.Errorf("delete deck %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete deck %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	s.logger.Debug().Str("deck", name).Msg("deleted deck")
	return nil
}

// SaveDeck serializes f and stores it under its name.
func SaveDeck[T deck.Item[T, S], S any](ctx context.Context, s *Store, algorithm string, f *deck.Facade[T, S]) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode deck %q: %w", f.Name(), err)
	}
	return s.Put(ctx, f.Name(), algorithm, payload)
}

// LoadDeck restores the deck called name. The stored algorithm must equal
// algorithm.
func LoadDeck[T deck.Item[T, S], S any](ctx context.Context, s *Store, name, algorithm string, factory deck.Factory[T], opts ...deck.Option) (*deck.Facade[T, S], error) {
	rec, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if rec.Algorithm != algorithm {
		return nil, fmt.Errorf("%w: %q is %s, not %s", ErrAlgorithmMismatch, name, rec.Algorithm, algorithm)
	}
	f, err := deck.Load[T, S](rec.Payload, factory, opts...)
	if err != nil {
		return nil, fmt.Errorf("decode deck %q: %w", name, err)
	}
	return f, nil
}
