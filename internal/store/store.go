// Package store keeps the app's blobs in a local SQLite key-value table.
// Each key is written whole on every save.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ramanasai/amal/internal/habit"
	"github.com/ramanasai/amal/internal/tracker"
)

//go:embed schema.sql
var schemaFS embed.FS

const (
	KeyTasks  = "daily-tasks"
	KeyHabits = "habits"

	FileName = "amal.db"
)

var (
	ErrNotFound = errors.New("key not found")
	// ErrLocked is returned when an encrypted value is read without a passphrase.
	ErrLocked = errors.New("value is encrypted; set the passphrase to unlock")
)

// Sealer encrypts values at rest.
type Sealer interface {
	Seal(plaintext []byte) (string, error)
	Open(sealed string) ([]byte, error)
}

type Store struct {
	db     *sql.DB
	sealer Sealer
	now    func() time.Time
}

type Option func(*Store)

// WithSealer encrypts every value written from now on.
func WithSealer(s Sealer) Option {
	return func(st *Store) { st.sealer = s }
}

func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		path,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	b, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(string(b)); err != nil {
		return errors.Join(fmt.Errorf("schema apply failed"), err)
	}
	return nil
}

// Get returns the raw value of key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	var encrypted bool
	err := s.db.QueryRowContext(ctx, `SELECT value, encrypted FROM kv WHERE key = ?`, key).Scan(&value, &encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	if !encrypted {
		return []byte(value), nil
	}
	if s.sealer == nil {
		return nil, ErrLocked
	}
	plain, err := s.sealer.Open(value)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return plain, nil
}

// Put overwrites key with value.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	stored := string(value)
	encrypted := false
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(value)
		if err != nil {
			return fmt.Errorf("put %s: %w", key, err)
		}
		stored, encrypted = sealed, true
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO kv(key, value, encrypted, updated_at) VALUES(?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, encrypted = excluded.encrypted, updated_at = excluded.updated_at`,
		key, stored, encrypted, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *Store) loadJSON(ctx context.Context, key string, v any) error {
	b, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) saveJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, b)
}

// LoadTasks returns the stored plan, empty when nothing was saved yet.
func (s *Store) LoadTasks(ctx context.Context) (tracker.Store, error) {
	out := tracker.Store{}
	if err := s.loadJSON(ctx, KeyTasks, &out); err != nil {
		return tracker.Store{}, err
	}
	if out == nil {
		out = tracker.Store{}
	}
	return out, nil
}

func (s *Store) SaveTasks(ctx context.Context, tasks tracker.Store) error {
	if tasks == nil {
		tasks = tracker.Store{}
	}
	return s.saveJSON(ctx, KeyTasks, tasks)
}

func (s *Store) LoadHabits(ctx context.Context) (habit.Book, error) {
	out := habit.Book{}
	if err := s.loadJSON(ctx, KeyHabits, &out); err != nil {
		return habit.Book{}, err
	}
	if out == nil {
		out = habit.Book{}
	}
	return out, nil
}

func (s *Store) SaveHabits(ctx context.Context, b habit.Book) error {
	if b == nil {
		b = habit.Book{}
	}
	return s.saveJSON(ctx, KeyHabits, b)
}
