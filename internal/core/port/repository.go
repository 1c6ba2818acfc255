package port

import (
	"context"

	"github.com/Wyydra/speakerbox/internal/core/domain"
)

type TransactionRepository interface {
	Save(ctx context.Context, record domain.TransactionRecord) error
	List(ctx context.Context) ([]domain.TransactionRecord, error)
}
