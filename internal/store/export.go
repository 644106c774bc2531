package store

import (
	"context"
	"fmt"

	"github.com/agentutil/memstore/internal/memory"
)

// ExportAll returns every committed record in uuid (creation) order, for
// backup or migration.
func (s *MemoryStore) ExportAll(ctx context.Context) ([]memory.Memory, error) {
	return s.AllMemories(ctx)
}

// Import stores records verbatim, preserving uuid, timestamps, and
// counters. Records re-use the replace primitive, so importing the same
// export twice is idempotent. Returns the number of records imported.
func (s *MemoryStore) Import(ctx context.Context, memories []memory.Memory, write bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.writerLocked(ctx)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, mem := range memories {
		if mem.UUID == "" {
			return imported, fmt.Errorf("import: record %d has no uuid", imported)
		}
		if mem.Importance > memory.MaxImportanceScore {
			return imported, fmt.Errorf("import %s: %w", mem.UUID, memory.ErrInvalidImportance)
		}
		if err := replaceMemory(ctx, tx, mem); err != nil {
			return imported, fmt.Errorf("import %s: %w", mem.UUID, err)
		}
		imported++
	}

	if err := s.maybeCommitLocked(write); err != nil {
		return imported, err
	}
	s.log.Debug("memories imported", "count", imported, "committed", write)
	return imported, nil
}
