package trace

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/tliron/commonlog"

	_ "modernc.org/sqlite"
)

var log = commonlog.GetLogger("skein.trace")

// ErrRunNotFound indicates the requested run doesn't exist.
var ErrRunNotFound = errors.New("run not found")

// Store persists trace logs to SQLite, one row per run, the log as a
// canonical CBOR blob.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenStore opens (creating if needed) a trace database at the given path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		network TEXT NOT NULL,
		events BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save persists a run's log, replacing any previous log under the same id.
func (s *Store) Save(runID string, l *Log) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := Marshal(l)
	if err != nil {
		return fmt.Errorf("encoding log: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO runs (id, network, events) VALUES (?, ?, ?)",
		runID, l.Network, blob,
	)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	log.Infof("saved run %s (%d events)", runID, len(l.Events))
	return nil
}

// LoadRun returns the log saved under runID, or ErrRunNotFound.
func (s *Store) LoadRun(runID string) (*Log, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var blob []byte
	err := s.db.QueryRow("SELECT events FROM runs WHERE id = ?", runID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading run: %w", err)
	}
	return Unmarshal(blob)
}

// Runs lists saved run ids in lexical order.
func (s *Store) Runs() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT id FROM runs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
