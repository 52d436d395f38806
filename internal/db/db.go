package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"

	"github.com/example/formcraft/internal/ports/secondary"
)

// Store owns the embedded SQLite database for one process.
// It is constructed by the composition root and handed to repositories;
// there is no package-level handle.
type Store struct {
	path string

	mu   sync.RWMutex
	conn *sql.DB

	feed *changeFeed
}

// New returns an unopened store for the database at path.
// Use ":memory:" for a private in-memory database.
func New(path string) *Store {
	return &Store{
		path: path,
		feed: newChangeFeed(),
	}
}

// Open connects to the database, enables foreign keys, installs the change
// hook and brings the schema up to date. Opening an open store is a no-op.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return nil
	}

	if s.path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn := sql.OpenDB(&hookConnector{
		dsn: dsnFor(s.path),
		driver: &sqlite3.SQLiteDriver{
			ConnectHook: func(c *sqlite3.SQLiteConn) error {
				c.RegisterUpdateHook(func(op int, dbName, table string, rowid int64) {
					switch table {
					case "controls", "sections", "questionnaires":
						s.feed.notify()
					}
				})
				return nil
			},
		},
	})

	// One connection: an in-memory database lives and dies with its
	// connection, and SQLite serializes writers anyway.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := InitSchema(conn); err != nil {
		conn.Close()
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.conn = conn
	return nil
}

// Close closes the database connection. Subsequent calls fail with
// secondary.ErrNotInitialized until Open is called again.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Ready reports whether Open has completed.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn != nil
}

// DB returns the live connection or secondary.ErrNotInitialized.
func (s *Store) DB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.conn == nil {
		return nil, secondary.ErrNotInitialized
	}
	return s.conn, nil
}

// SubscribeChanges returns a row-change signal private to the caller.
// Changes between reads coalesce into one signal.
func (s *Store) SubscribeChanges() (<-chan struct{}, func()) {
	return s.feed.subscribe()
}

// Path returns the database path the store was created with.
func (s *Store) Path() string {
	return s.path
}

// OpenMemory returns an opened in-memory store with the authoritative schema.
func OpenMemory() (*Store, error) {
	store := New(":memory:")
	if err := store.Open(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// DefaultPath returns ~/.formcraft/formcraft.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".formcraft", "formcraft.db"), nil
}

func dsnFor(path string) string {
	params := "_foreign_keys=on&_busy_timeout=5000"
	if path != ":memory:" {
		params += "&_journal_mode=WAL"
	}
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

// hookConnector opens connections through a private driver instance so the
// update hook is bound to this store rather than a globally registered driver.
type hookConnector struct {
	dsn    string
	driver *sqlite3.SQLiteDriver
}

func (c *hookConnector) Connect(ctx context.Context) (driver.Conn, error) {
	return c.driver.Open(c.dsn)
}

func (c *hookConnector) Driver() driver.Driver {
	return c.driver
}

// changeFeed fans row-change notifications out to one-slot channels,
// one per subscriber.
type changeFeed struct {
	mu      sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
}

func newChangeFeed() *changeFeed {
	return &changeFeed{subs: make(map[int]chan struct{})}
}

// notify never blocks: it runs inside SQLite's update hook.
func (f *changeFeed) notify() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (f *changeFeed) subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

var (
	_ secondary.ChangeFeed = (*Store)(nil)
	_ secondary.Readiness  = (*Store)(nil)
)
