package port

import (
	"context"

	"github.com/Wyydra/speakerbox/internal/core/domain"
)

// CallController is the external call backend. Request returns immediately;
// completion runs later with nil or the reason the transaction was refused.
type CallController interface {
	Request(ctx context.Context, tx domain.Transaction, completion func(error))
}

// IncomingCallReporter lets the backend announce calls it did not originate.
type IncomingCallReporter interface {
	ReportIncomingCall(ctx context.Context, handle domain.Handle, isVideo bool) (domain.CallID, error)
}

// CallStore is the view of the registry the backend uses to reflect calls
// it creates or ends.
type CallStore interface {
	Add(ctx context.Context, call *domain.Call) error
	Remove(ctx context.Context, call *domain.Call)
	Find(id domain.CallID) (*domain.Call, bool)
	Len() int
}
