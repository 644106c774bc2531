package store

import (
	"context"
	"fmt"
	"time"
)

// Stats holds aggregate metrics over one collection.
type Stats struct {
	TotalMemories  uint64  `json:"total_memories"`
	AvgImportance  float64 `json:"avg_importance"`
	AvgAccessCount float64 `json:"avg_access_count"`
	AvgAgeDays     float64 `json:"avg_age_days"`
}

// String renders the display form of the statistics.
func (st Stats) String() string {
	return fmt.Sprintf(
		"Total Memories: %d\nAverage Importance: %v\nAverage Access Count: %v\nAverage Age (Days): %v",
		st.TotalMemories, st.AvgImportance, st.AvgAccessCount, st.AvgAgeDays)
}

// Stats computes the aggregate metrics in one engine-side pass rather
// than scanning records in Go. An empty store yields all zeros.
func (s *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var avgTimestamp float64

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(importance), 0),
		       COALESCE(AVG(access_count), 0),
		       COALESCE(AVG(timestamp), 0)
		FROM memories`).
		Scan(&st.TotalMemories, &st.AvgImportance, &st.AvgAccessCount, &avgTimestamp)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate stats: %w", err)
	}

	if avgTimestamp > 0 {
		st.AvgAgeDays = (float64(time.Now().Unix()) - avgTimestamp) / 86400.0
	}
	return st, nil
}
