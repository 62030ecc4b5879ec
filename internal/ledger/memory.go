package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-memory ledger. It backs local
// development without Postgres and the test suites; the append-only
// contract is the same as the Postgres store's.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	records []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Append(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextID
	rec.CreatedAt = time.Now()
	s.nextID++
	s.records = append(s.records, *rec)
	return nil
}

func (s *MemoryStore) Summary(_ context.Context) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := &Summary{
		TotalTransactions: len(s.records),
		Transactions:      make([]Record, len(s.records)),
	}
	copy(summary.Transactions, s.records)
	for _, rec := range s.records {
		summary.TotalProfit = summary.TotalProfit.Add(rec.Profit)
	}
	return summary, nil
}
