// Package memory defines the stored record type and its derived scores.
package memory

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/oklog/ulid/v2"
)

// MaxImportanceScore is the upper bound of the importance range.
const MaxImportanceScore uint64 = 100

// MinImportanceScore is the lower bound of the importance range.
const MinImportanceScore uint64 = 0

// ErrInvalidImportance is returned when an importance value exceeds
// MaxImportanceScore.
var ErrInvalidImportance = errors.New("importance out of range")

// Memory is one stored record. UUID and Timestamp are assigned at
// creation and never change; AccessCount and LastAccessed move forward
// on every read access.
type Memory struct {
	UUID         string   `json:"uuid"`
	Content      string   `json:"content"`
	Timestamp    int64    `json:"timestamp"`
	Importance   uint64   `json:"importance"`
	Tags         []string `json:"tags,omitempty"`
	AccessCount  uint64   `json:"access_count"`
	LastAccessed int64    `json:"last_accessed"`
}

// New builds a record with a fresh time-ordered id. The id is a ULID, so
// lexicographic order follows creation order without a separate sort key.
func New(content string, importance uint64, tags []string) (Memory, error) {
	if importance > MaxImportanceScore {
		return Memory{}, fmt.Errorf("%w: %d > %d", ErrInvalidImportance, importance, MaxImportanceScore)
	}
	now := time.Now().Unix()
	return Memory{
		UUID:         ulid.Make().String(),
		Content:      content,
		Timestamp:    now,
		Importance:   importance,
		Tags:         tags,
		AccessCount:  0,
		LastAccessed: now,
	}, nil
}

// RegisterAccess returns a copy with the access counter bumped and
// LastAccessed set to now. Persisting the new value is the caller's job.
func (m Memory) RegisterAccess() Memory {
	m.AccessCount++
	m.LastAccessed = time.Now().Unix()
	return m
}

// RelevanceScore blends importance, recency, and access frequency:
//
//	importance * exp(-ageDays*decayFactor) * ln(accessCount+1)
//
// A record that has never been accessed scores exactly zero, since
// ln(1) = 0. Larger decay factors make old records fade faster.
func (m Memory) RelevanceScore(decayFactor float64) float64 {
	ageDays := float64(time.Now().Unix()-m.Timestamp) / 86400.0
	recency := math.Exp(-ageDays * decayFactor)
	frequency := math.Log(float64(m.AccessCount) + 1.0)
	return float64(m.Importance) * recency * frequency
}
