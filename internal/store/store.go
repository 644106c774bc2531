// Package store implements the per-collection memory engine: a SQLite
// FTS5 index of memory records with a serialized writer, plus the
// service that maps collection names to index directories.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/agentutil/memstore/internal/memory"
)

// ErrNotFound reports a lookup miss to callers that want a hard failure.
// Store lookups themselves return empty results instead of this error.
var ErrNotFound = errors.New("memory not found")

// MemoryStore serves CRUD, search, and aggregation for one collection.
//
// Mutations funnel through a single logical writer: a lazily begun
// transaction guarded by mu. A mutating call with write=false leaves its
// change buffered in that transaction, invisible to reads until Write
// commits it (or until a later call passes write=true). Reads always see
// the last committed state.
type MemoryStore struct {
	db  *sql.DB
	log *slog.Logger

	mu sync.Mutex
	tx *sql.Tx // pending writer transaction; nil when nothing is buffered
}

func newStore(db *sql.DB, log *slog.Logger) *MemoryStore {
	return &MemoryStore{db: db, log: log}
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		uuid          TEXT PRIMARY KEY,
		content       TEXT NOT NULL,
		tags          TEXT NOT NULL DEFAULT '[]',
		timestamp     INTEGER NOT NULL,
		importance    INTEGER NOT NULL,
		access_count  INTEGER NOT NULL DEFAULT 0,
		last_accessed INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memories_timestamp ON memories(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_memories_importance ON memories(importance);
	CREATE INDEX IF NOT EXISTS idx_memories_access ON memories(access_count);

	CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(
		content,
		tags,
		content=memories,
		content_rowid=rowid
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	// FTS5 triggers for automatic sync
	if _, err := db.Exec(`CREATE TRIGGER IF NOT EXISTS memories_ai AFTER INSERT ON memories BEGIN
		INSERT INTO memories_fts(rowid, content, tags) VALUES (new.rowid, new.content, new.tags);
	END`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE TRIGGER IF NOT EXISTS memories_ad AFTER DELETE ON memories BEGIN
		INSERT INTO memories_fts(memories_fts, rowid, content, tags) VALUES('delete', old.rowid, old.content, old.tags);
	END`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE TRIGGER IF NOT EXISTS memories_au AFTER UPDATE ON memories BEGIN
		INSERT INTO memories_fts(memories_fts, rowid, content, tags) VALUES('delete', old.rowid, old.content, old.tags);
		INSERT INTO memories_fts(rowid, content, tags) VALUES (new.rowid, new.content, new.tags);
	END`); err != nil {
		return err
	}

	return nil
}

// UpdateParams carries the optional fields for UpdateMemory. Nil fields
// are left unchanged. A non-nil Tags replaces the whole sequence, so an
// empty non-nil slice clears all tags.
type UpdateParams struct {
	Content    *string
	Importance *uint64
	Tags       []string
}

// AddMemory stores a new record and returns its uuid. The importance
// bound is enforced here; out-of-range values never reach the index.
func (s *MemoryStore) AddMemory(ctx context.Context, content string, importance uint64, tags []string, write bool) (string, error) {
	mem, err := memory.New(content, importance, tags)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.writerLocked(ctx)
	if err != nil {
		return "", err
	}
	if err := insertMemory(ctx, tx, mem); err != nil {
		return "", fmt.Errorf("add memory: %w", err)
	}
	if err := s.maybeCommitLocked(write); err != nil {
		return "", err
	}

	s.log.Debug("memory added", "uuid", mem.UUID, "committed", write)
	return mem.UUID, nil
}

// GetMemory looks up a single record by uuid on the committed view. A hit
// also bumps the record's access statistics, which makes every get a
// write: the updated record is re-indexed under the same uuid and
// buffered or committed per the write flag. Returns nil when absent.
func (s *MemoryStore) GetMemory(ctx context.Context, uuid string, write bool) (*memory.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mem, err := s.lookup(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if mem == nil {
		return nil, nil
	}

	updated := mem.RegisterAccess()

	tx, err := s.writerLocked(ctx)
	if err != nil {
		return nil, err
	}
	if err := replaceMemory(ctx, tx, updated); err != nil {
		return nil, fmt.Errorf("record access for %s: %w", uuid, err)
	}
	if err := s.maybeCommitLocked(write); err != nil {
		return nil, err
	}

	return &updated, nil
}

// UpdateMemory applies the supplied fields to an existing record and
// reports whether anything changed. Absent records and empty parameter
// sets both return false without touching the writer.
func (s *MemoryStore) UpdateMemory(ctx context.Context, uuid string, p UpdateParams, write bool) (bool, error) {
	if p.Content == nil && p.Importance == nil && p.Tags == nil {
		return false, nil
	}
	if p.Importance != nil && *p.Importance > memory.MaxImportanceScore {
		return false, fmt.Errorf("%w: %d > %d", memory.ErrInvalidImportance, *p.Importance, memory.MaxImportanceScore)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mem, err := s.lookup(ctx, uuid)
	if err != nil {
		return false, err
	}
	if mem == nil {
		return false, nil
	}

	if p.Content != nil {
		mem.Content = *p.Content
	}
	if p.Importance != nil {
		mem.Importance = *p.Importance
	}
	if p.Tags != nil {
		mem.Tags = p.Tags
	}

	tx, err := s.writerLocked(ctx)
	if err != nil {
		return false, err
	}
	if err := replaceMemory(ctx, tx, *mem); err != nil {
		return false, fmt.Errorf("update memory %s: %w", uuid, err)
	}
	if err := s.maybeCommitLocked(write); err != nil {
		return false, err
	}

	return true, nil
}

// DeleteMemory removes a record by uuid. Deleting an absent uuid is not
// an error; the call reports success either way.
func (s *MemoryStore) DeleteMemory(ctx context.Context, uuid string, write bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.writerLocked(ctx)
	if err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE uuid = ?`, uuid); err != nil {
		return false, fmt.Errorf("delete memory %s: %w", uuid, err)
	}
	if err := s.maybeCommitLocked(write); err != nil {
		return false, err
	}

	s.log.Debug("memory deleted", "uuid", uuid, "committed", write)
	return true, nil
}

// Write commits any buffered mutations, making them visible to reads.
func (s *MemoryStore) Write() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked()
}

// Close discards any still-buffered mutations. The underlying index
// handle is shared with the owning service and stays open.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback()
	s.tx = nil
	if err != nil {
		return fmt.Errorf("discard pending writes: %w", err)
	}
	return nil
}

// writerLocked returns the pending writer transaction, beginning one if
// needed. Callers must hold mu.
func (s *MemoryStore) writerLocked(ctx context.Context) (*sql.Tx, error) {
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin writer: %w", err)
	}
	s.tx = tx
	return tx, nil
}

func (s *MemoryStore) maybeCommitLocked(write bool) error {
	if !write {
		return nil
	}
	return s.commitLocked()
}

func (s *MemoryStore) commitLocked() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return fmt.Errorf("commit writes: %w", err)
	}
	return nil
}

// lookup fetches one record by uuid from the committed view. Returns
// (nil, nil) on a miss.
func (s *MemoryStore) lookup(ctx context.Context, uuid string) (*memory.Memory, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+memoryColumns+` FROM memories WHERE uuid = ? LIMIT 1`, uuid)
	mem, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup memory %s: %w", uuid, err)
	}
	return &mem, nil
}

const memoryColumns = "uuid, content, tags, timestamp, importance, access_count, last_accessed"

// replaceMemory is the single mutation primitive: indexed documents are
// immutable, so any field change retracts the prior version by uuid and
// reinserts the whole record.
func replaceMemory(ctx context.Context, tx *sql.Tx, mem memory.Memory) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE uuid = ?`, mem.UUID); err != nil {
		return err
	}
	return insertMemory(ctx, tx, mem)
}

func insertMemory(ctx context.Context, tx *sql.Tx, mem memory.Memory) error {
	tags := mem.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	_, err := tx.ExecContext(ctx,
		`INSERT INTO memories (uuid, content, tags, timestamp, importance, access_count, last_accessed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		mem.UUID, mem.Content, string(tagsJSON), mem.Timestamp, mem.Importance, mem.AccessCount, mem.LastAccessed)
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(row scanner) (memory.Memory, error) {
	var m memory.Memory
	var tagsJSON string

	err := row.Scan(&m.UUID, &m.Content, &tagsJSON, &m.Timestamp, &m.Importance, &m.AccessCount, &m.LastAccessed)
	if err != nil {
		return m, err
	}
	if tagsJSON != "" && tagsJSON != "[]" {
		json.Unmarshal([]byte(tagsJSON), &m.Tags)
	}
	return m, nil
}
