package domain

import "time"

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionSucceeded TransactionStatus = "succeeded"
	TransactionFailed    TransactionStatus = "failed"
)

// TransactionRecord is the log entry for one submitted transaction.
type TransactionRecord struct {
	ID          TransactionID
	Actions     []string
	Status      TransactionStatus
	Error       string
	RequestedAt time.Time
	CompletedAt time.Time
}

func NewTransactionRecord(tx Transaction, requestedAt time.Time) TransactionRecord {
	actions := make([]string, 0, len(tx.Actions))
	for _, a := range tx.Actions {
		actions = append(actions, a.String())
	}
	return TransactionRecord{
		ID:          tx.ID,
		Actions:     actions,
		Status:      TransactionPending,
		RequestedAt: requestedAt,
	}
}

// Complete returns a copy of r resolved by err.
func (r TransactionRecord) Complete(err error, completedAt time.Time) TransactionRecord {
	r.CompletedAt = completedAt
	if err != nil {
		r.Status = TransactionFailed
		r.Error = err.Error()
		return r
	}
	r.Status = TransactionSucceeded
	return r
}
