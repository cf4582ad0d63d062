// Package journal records stage transitions in a local SQLite database.
// The journal is supplementary observability: version-control
// checkpoints remain the durability mechanism, and a journal failure
// never blocks a claim.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/promptbridge/promptbridge/models"
)

// Entry is a single recorded stage transition.
type Entry struct {
	ID        string
	Task      string
	From      models.Stage
	To        models.Stage
	Watcher   string
	Committed bool
	Error     string
	CreatedAt time.Time
}

// Journal is a SQLite-backed transition log. It also keeps an
// in-process set of task names it has recorded, which the claim engine
// uses to enforce at-most-once claims per process lifetime.
type Journal struct {
	db *sql.DB

	mu   sync.Mutex
	seen map[string]struct{}
}

// Open creates or opens the journal database at the given path.
// Pass ":memory:" for an in-memory journal (used in tests).
func Open(path string) (*Journal, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create journal directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	j := &Journal{db: db, seen: make(map[string]struct{})}
	if err := j.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}
	return j, nil
}

func (j *Journal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transitions (
		id TEXT PRIMARY KEY,
		task TEXT NOT NULL,
		from_stage TEXT NOT NULL,
		to_stage TEXT NOT NULL,
		watcher TEXT NOT NULL DEFAULT '',
		committed INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transitions_task ON transitions(task);
	CREATE INDEX IF NOT EXISTS idx_transitions_created ON transitions(created_at);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Record persists a transition entry. A zero ID and CreatedAt are
// filled in.
func (j *Journal) Record(e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := j.db.Exec(
		`INSERT INTO transitions (id, task, from_stage, to_stage, watcher, committed, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Task, string(e.From), string(e.To), e.Watcher, boolToInt(e.Committed), e.Error,
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record transition for %s: %w", e.Task, err)
	}

	j.mu.Lock()
	j.seen[e.Task] = struct{}{}
	j.mu.Unlock()
	return nil
}

// Seen reports whether this process has already recorded a transition
// for the given task.
func (j *Journal) Seen(task string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, ok := j.seen[task]
	return ok
}

// Recent returns the most recent transitions, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.Query(
		`SELECT id, task, from_stage, to_stage, watcher, committed, error, created_at
		 FROM transitions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var from, to, created string
		var committed int
		if err := rows.Scan(&e.ID, &e.Task, &from, &to, &e.Watcher, &committed, &e.Error, &created); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		e.From = models.Stage(from)
		e.To = models.Stage(to)
		e.Committed = committed != 0
		if t, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
