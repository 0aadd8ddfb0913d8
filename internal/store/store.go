package store

import (
	"crypto/rand"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/autin2/hullifyrepo/internal/valuation"
)

// Record is one completed valuation, addressable by token. The engine itself
// never reads records back; they exist so a valuation can be fetched and
// rendered later.
type Record struct {
	Token     string              `json:"token"`
	CreatedAt time.Time           `json:"created_at"`
	Payload   valuation.Payload   `json:"payload"`
	Valuation valuation.Valuation `json:"valuation"`
}

type Store interface {
	Save(rec Record) error
	Get(token string) (Record, bool, error)
	Recent(limit int) ([]Record, error)
}

// NewToken returns a 32-char hex token.
func NewToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// MemoryStore keeps records in-process. Used by tests and db-less deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Token] = rec
	return nil
}

func (s *MemoryStore) Get(token string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[token]
	return rec, ok, nil
}

func (s *MemoryStore) Recent(limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
