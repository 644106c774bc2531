package store

import (
	"context"
	"testing"
)

// ageMemory rewinds a record's creation time, since the public API never
// backdates anything.
func ageMemory(t *testing.T, s *MemoryStore, uuid string, days int64) {
	t.Helper()
	_, err := s.db.Exec(
		`UPDATE memories SET timestamp = timestamp - ?, last_accessed = last_accessed - ? WHERE uuid = ?`,
		days*86400, days*86400, uuid)
	if err != nil {
		t.Fatalf("age memory: %v", err)
	}
}

func TestSearchMemoriesText(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AddMemory(ctx, "machine learning basics", 5, []string{"ai"}, true)
	s.AddMemory(ctx, "deep learning advances", 8, []string{"ai", "ml"}, true)
	s.AddMemory(ctx, "grocery list for sunday", 1, nil, true)

	results, err := s.SearchMemories(ctx, "learning", 10, false)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results for 'learning', got %d", len(results))
	}

	results, err = s.SearchMemories(ctx, "machine", 10, false)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Content != "machine learning basics" {
		t.Fatalf("unexpected results for 'machine': %v", results)
	}

	// Phrase syntax is passed through to the engine.
	results, err = s.SearchMemories(ctx, `"deep learning"`, 10, false)
	if err != nil {
		t.Fatalf("phrase search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 phrase match, got %d", len(results))
	}
}

func TestSearchInvalidQuery(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AddMemory(ctx, "something", 1, nil, true)

	if _, err := s.SearchMemories(ctx, "AND", 10, false); err == nil {
		t.Fatal("expected a syntax error from the engine")
	}
}

func TestSearchByTagsScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AddMemory(ctx, "machine learning basics", 5, []string{"ai"}, true)
	s.AddMemory(ctx, "deep learning advances", 8, []string{"ai", "ml"}, true)

	both, err := s.SearchByTags(ctx, []string{"ai"}, 10)
	if err != nil {
		t.Fatalf("search by tags: %v", err)
	}
	if len(both) != 2 {
		t.Fatalf("expected both records for tag 'ai', got %d", len(both))
	}

	mlOnly, err := s.SearchByTags(ctx, []string{"ml"}, 10)
	if err != nil {
		t.Fatalf("search by tags: %v", err)
	}
	if len(mlOnly) != 1 || mlOnly[0].Content != "deep learning advances" {
		t.Fatalf("unexpected results for tag 'ml': %v", mlOnly)
	}

	none, err := s.SearchByTags(ctx, nil, 10)
	if err != nil {
		t.Fatalf("empty tag search: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no results for empty tag list, got %d", len(none))
	}
}

func TestMemoriesByImportance(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AddMemory(ctx, "machine learning basics", 5, []string{"ai"}, true)
	high, _ := s.AddMemory(ctx, "deep learning advances", 8, []string{"ai", "ml"}, true)

	results, err := s.MemoriesByImportance(ctx, 6, 10)
	if err != nil {
		t.Fatalf("by importance: %v", err)
	}
	if len(results) != 1 || results[0].UUID != high {
		t.Fatalf("expected only the importance-8 record, got %v", results)
	}

	all, err := s.MemoriesByImportance(ctx, 0, 10)
	if err != nil {
		t.Fatalf("by importance: %v", err)
	}
	if len(all) != 2 || all[0].Importance != 8 {
		t.Fatalf("expected descending importance order, got %v", all)
	}
}

func TestRecentMemories(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	old, _ := s.AddMemory(ctx, "ancient history", 1, nil, true)
	fresh, _ := s.AddMemory(ctx, "breaking news", 1, nil, true)
	ageMemory(t, s, old, 30)

	results, err := s.RecentMemories(ctx, 7, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(results) != 1 || results[0].UUID != fresh {
		t.Fatalf("expected only the fresh record, got %v", results)
	}

	results, err = s.RecentMemories(ctx, 60, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(results) != 2 || results[0].UUID != fresh {
		t.Fatalf("expected both records newest first, got %v", results)
	}
}

func TestFrequentlyAccessedOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	quiet, _ := s.AddMemory(ctx, "rarely read", 1, nil, true)
	busy, _ := s.AddMemory(ctx, "often read", 1, nil, true)
	s.GetMemory(ctx, busy, true)
	s.GetMemory(ctx, busy, true)

	results, err := s.FrequentlyAccessed(ctx, 10)
	if err != nil {
		t.Fatalf("frequently accessed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 records, got %d", len(results))
	}
	// Ascending access count order.
	if results[0].UUID != quiet || results[1].UUID != busy {
		t.Fatalf("expected [quiet, busy], got %v", results)
	}
	if results[1].AccessCount != 2 {
		t.Errorf("busy access_count = %d, want 2", results[1].AccessCount)
	}
}

func TestSearchBoostRecent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cold, _ := s.AddMemory(ctx, "golang concurrency patterns", 5, nil, true)
	hot, _ := s.AddMemory(ctx, "golang concurrency patterns", 5, nil, true)
	s.GetMemory(ctx, hot, true)

	// Textual scores are equal; the accessed record's frequency term
	// breaks the tie under boosting.
	results, err := s.SearchMemories(ctx, "concurrency", 10, true)
	if err != nil {
		t.Fatalf("boosted search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].UUID != hot {
		t.Fatalf("expected the accessed record first, got %s (cold=%s)", results[0].UUID, cold)
	}
}

func TestCountMemories(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if n, err := s.CountMemories(ctx); err != nil || n != 0 {
		t.Fatalf("empty count: n=%d err=%v", n, err)
	}
	s.AddMemory(ctx, "one", 1, nil, true)
	s.AddMemory(ctx, "two", 1, nil, true)
	if n, err := s.CountMemories(ctx); err != nil || n != 2 {
		t.Fatalf("count: n=%d err=%v", n, err)
	}
}

func TestCleanupOldMemories(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	stale, _ := s.AddMemory(ctx, "stale trivia", 1, nil, true)
	keepImportant, _ := s.AddMemory(ctx, "old but important", 9, nil, true)
	fresh, _ := s.AddMemory(ctx, "fresh note", 1, nil, true)
	ageMemory(t, s, stale, 30)
	ageMemory(t, s, keepImportant, 30)

	removed, err := s.CleanupOldMemories(ctx, 7, 5, 5, true)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if len(removed) != 1 || removed[0] != stale {
		t.Fatalf("expected only the stale record removed, got %v", removed)
	}

	for _, uuid := range []string{keepImportant, fresh} {
		got, err := s.GetMemory(ctx, uuid, true)
		if err != nil || got == nil {
			t.Fatalf("survivor %s missing: %v", uuid, err)
		}
	}
}

func TestConsolidateMemories(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.AddMemory(ctx, "deep learning advances today", 5, nil, true)
	b, _ := s.AddMemory(ctx, "deep learning advances now", 5, nil, true)
	s.AddMemory(ctx, "completely unrelated grocery run", 1, nil, true)

	pairs, err := s.ConsolidateMemories(ctx, 0.5)
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("expected 1 near-duplicate pair, got %d", len(pairs))
	}
	if pairs[0] != [2]string{a, b} {
		t.Fatalf("pair = %v, want [%s %s]", pairs[0], a, b)
	}
}
