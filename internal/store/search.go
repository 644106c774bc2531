package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agentutil/memstore/internal/memory"
	"github.com/agentutil/memstore/internal/similarity"
)

// DefaultTopK bounds result sets when callers pass a non-positive limit.
const DefaultTopK = 100

// boostDecayFactor is the fixed decay constant applied when re-ranking
// boosted searches.
const boostDecayFactor = 0.01

// SearchMemories runs a full-text query over content and tags. The query
// string uses FTS5 syntax (bare terms, AND/OR/NOT, "quoted phrases");
// syntax errors surface as wrapped engine errors.
//
// Candidates are fetched 2*topK deep by textual (bm25) score. With
// boostRecent the candidates are re-scored as textual score plus the
// record's relevance score and re-sorted, so a record outside the textual
// top-k can be promoted — but only from within the over-fetch window.
// This is approximate top-k under the combined score, traded for not
// scoring the whole index.
func (s *MemoryStore) SearchMemories(ctx context.Context, query string, topK int, boostRecent bool) ([]memory.Memory, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+prefixedColumns("m")+`, -bm25(memories_fts) AS score
		 FROM memories_fts
		 JOIN memories m ON m.rowid = memories_fts.rowid
		 WHERE memories_fts MATCH ?
		 ORDER BY score DESC
		 LIMIT ?`,
		query, 2*topK)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer rows.Close()

	type scoredMemory struct {
		score float64
		mem   memory.Memory
	}

	var results []scoredMemory
	for rows.Next() {
		var sm scoredMemory
		var tagsJSON string
		err := rows.Scan(&sm.mem.UUID, &sm.mem.Content, &tagsJSON, &sm.mem.Timestamp,
			&sm.mem.Importance, &sm.mem.AccessCount, &sm.mem.LastAccessed, &sm.score)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", query, err)
		}
		decodeTags(tagsJSON, &sm.mem)
		results = append(results, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	if boostRecent {
		for i := range results {
			results[i].score += results[i].mem.RelevanceScore(boostDecayFactor)
		}
		// Stable for reproducible ordering on ties.
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].score > results[j].score
		})
	}

	if len(results) > topK {
		results = results[:topK]
	}
	memories := make([]memory.Memory, len(results))
	for i, sm := range results {
		memories[i] = sm.mem
	}
	return memories, nil
}

// SearchByTags matches records carrying any of the given tags, as a
// disjunction of phrase queries over the indexed tag field.
func (s *MemoryStore) SearchByTags(ctx context.Context, tags []string, topK int) ([]memory.Memory, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	quoted := make([]string, len(tags))
	for i, tag := range tags {
		quoted[i] = `"` + strings.ReplaceAll(tag, `"`, `""`) + `"`
	}
	return s.SearchMemories(ctx, strings.Join(quoted, " OR "), topK, false)
}

// MemoriesByImportance returns up to topK records with importance in
// [minImportance, MaxImportanceScore], ordered by descending importance
// then uuid.
func (s *MemoryStore) MemoriesByImportance(ctx context.Context, minImportance uint64, topK int) ([]memory.Memory, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return s.queryMemories(ctx,
		`SELECT `+memoryColumns+` FROM memories
		 WHERE importance >= ?
		 ORDER BY importance DESC, uuid ASC
		 LIMIT ?`,
		minImportance, topK)
}

// RecentMemories returns up to topK records created within the last
// `days` days, newest first.
func (s *MemoryStore) RecentMemories(ctx context.Context, days int64, topK int) ([]memory.Memory, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	cutoff := time.Now().Unix() - days*86400
	return s.queryMemories(ctx,
		`SELECT `+memoryColumns+` FROM memories
		 WHERE timestamp >= ?
		 ORDER BY timestamp DESC, uuid ASC
		 LIMIT ?`,
		cutoff, topK)
}

// FrequentlyAccessed returns up to topK records ordered by ascending
// access count, ties broken by uuid.
//
// TODO: confirm with callers whether this should sort descending before
// changing the order; existing consumers may rely on it as is.
func (s *MemoryStore) FrequentlyAccessed(ctx context.Context, topK int) ([]memory.Memory, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return s.queryMemories(ctx,
		`SELECT `+memoryColumns+` FROM memories
		 ORDER BY access_count ASC, uuid ASC
		 LIMIT ?`,
		topK)
}

// AllMemories returns every committed record, ordered by uuid (which is
// creation order).
func (s *MemoryStore) AllMemories(ctx context.Context) ([]memory.Memory, error) {
	return s.queryMemories(ctx,
		`SELECT `+memoryColumns+` FROM memories ORDER BY uuid ASC`)
}

// CountMemories returns the committed record count.
func (s *MemoryStore) CountMemories(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count memories: %w", err)
	}
	return n, nil
}

// CleanupOldMemories deletes records older than daysThreshold whose
// importance and access count are both below the given limits, and
// returns the removed uuids.
func (s *MemoryStore) CleanupOldMemories(ctx context.Context, daysThreshold int64, minImportance, maxAccessCount uint64, write bool) ([]string, error) {
	cutoff := time.Now().Unix() - daysThreshold*86400

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT uuid FROM memories
		 WHERE timestamp < ? AND importance < ? AND access_count < ?
		 ORDER BY uuid ASC`,
		cutoff, minImportance, maxAccessCount)
	if err != nil {
		return nil, fmt.Errorf("cleanup scan: %w", err)
	}
	var uuids []string
	for rows.Next() {
		var uuid string
		if err := rows.Scan(&uuid); err != nil {
			rows.Close()
			return nil, fmt.Errorf("cleanup scan: %w", err)
		}
		uuids = append(uuids, uuid)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("cleanup scan: %w", err)
	}
	rows.Close()

	if len(uuids) == 0 {
		return nil, nil
	}

	tx, err := s.writerLocked(ctx)
	if err != nil {
		return nil, err
	}
	for _, uuid := range uuids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE uuid = ?`, uuid); err != nil {
			return nil, fmt.Errorf("cleanup delete %s: %w", uuid, err)
		}
	}
	if err := s.maybeCommitLocked(write); err != nil {
		return nil, err
	}

	s.log.Debug("cleanup removed memories", "count", len(uuids), "committed", write)
	return uuids, nil
}

// ConsolidateMemories reports pairs of records whose content token-set
// similarity exceeds the threshold. Pairwise over the whole store, so
// quadratic; intended for offline maintenance.
func (s *MemoryStore) ConsolidateMemories(ctx context.Context, threshold float64) ([][2]string, error) {
	all, err := s.AllMemories(ctx)
	if err != nil {
		return nil, err
	}

	var pairs [][2]string
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if similarity.Jaccard(all[i].Content, all[j].Content) > threshold {
				pairs = append(pairs, [2]string{all[i].UUID, all[j].UUID})
			}
		}
	}
	return pairs, nil
}

func (s *MemoryStore) queryMemories(ctx context.Context, query string, args ...interface{}) ([]memory.Memory, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	var memories []memory.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("query memories: %w", err)
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	return memories, nil
}

func prefixedColumns(alias string) string {
	cols := strings.Split(memoryColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func decodeTags(tagsJSON string, m *memory.Memory) {
	if tagsJSON == "" || tagsJSON == "[]" {
		return
	}
	json.Unmarshal([]byte(tagsJSON), &m.Tags)
}
