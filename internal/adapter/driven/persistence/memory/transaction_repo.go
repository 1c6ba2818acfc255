package memory

import (
	"context"
	"sync"

	"github.com/Wyydra/speakerbox/internal/core/domain"
)

const DefaultHistorySize = 100

// TransactionRepository keeps the most recent transaction records in memory.
type TransactionRepository struct {
	mu      sync.Mutex
	limit   int
	records []domain.TransactionRecord
}

func NewTransactionRepository(limit int) *TransactionRepository {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &TransactionRepository{
		limit:   limit,
		records: make([]domain.TransactionRecord, 0),
	}
}

// Save replaces the record with the same ID, or appends it and evicts the
// oldest records past the limit.
func (r *TransactionRepository) Save(ctx context.Context, record domain.TransactionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.records {
		if r.records[i].ID == record.ID {
			r.records[i] = record
			return nil
		}
	}

	r.records = append(r.records, record)
	if over := len(r.records) - r.limit; over > 0 {
		r.records = append(r.records[:0:0], r.records[over:]...)
	}
	return nil
}

func (r *TransactionRepository) List(ctx context.Context) ([]domain.TransactionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.TransactionRecord, len(r.records))
	copy(out, r.records)
	return out, nil
}
