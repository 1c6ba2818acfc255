package service

import (
	"context"
	"sync"

	"github.com/Wyydra/speakerbox/internal/core/domain"
	"github.com/Wyydra/speakerbox/internal/core/port"
	"github.com/rs/zerolog/log"
)

type trackedCall struct {
	call        *domain.Call
	unsubscribe func()
}

// CallRegistry owns the list of active calls and posts
// domain.CallsChangedNotification whenever the list or a call's state changes.
type CallRegistry struct {
	mu       sync.RWMutex
	calls    []trackedCall
	notifier port.ChangeNotifier
}

func NewCallRegistry(notifier port.ChangeNotifier) *CallRegistry {
	return &CallRegistry{
		calls:    make([]trackedCall, 0),
		notifier: notifier,
	}
}

func (r *CallRegistry) Add(ctx context.Context, call *domain.Call) error {
	r.mu.Lock()
	for _, t := range r.calls {
		if t.call.ID == call.ID {
			r.mu.Unlock()
			return domain.ErrCallExists
		}
	}
	unsubscribe := call.Subscribe(func(ctx context.Context, c *domain.Call) {
		log.Debug().Str("call_id", c.ID.String()).Str("state", string(c.State())).Msg("Call state changed")
		r.postCallsChanged(ctx)
	})
	r.calls = append(r.calls, trackedCall{call: call, unsubscribe: unsubscribe})
	r.mu.Unlock()

	r.postCallsChanged(ctx)
	return nil
}

// Remove drops the first tracked call identical to call. The broadcast is
// posted even if call was not tracked.
func (r *CallRegistry) Remove(ctx context.Context, call *domain.Call) {
	r.mu.Lock()
	for i, t := range r.calls {
		if t.call == call {
			t.unsubscribe()
			r.calls = append(r.calls[:i], r.calls[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.postCallsChanged(ctx)
}

func (r *CallRegistry) RemoveAll(ctx context.Context) {
	r.mu.Lock()
	for _, t := range r.calls {
		t.unsubscribe()
	}
	r.calls = make([]trackedCall, 0)
	r.mu.Unlock()

	r.postCallsChanged(ctx)
}

func (r *CallRegistry) Find(id domain.CallID) (*domain.Call, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.calls {
		if t.call.ID == id {
			return t.call, true
		}
	}
	return nil, false
}

// Calls returns the tracked calls in insertion order.
func (r *CallRegistry) Calls() []*domain.Call {
	r.mu.RLock()
	defer r.mu.RUnlock()

	calls := make([]*domain.Call, 0, len(r.calls))
	for _, t := range r.calls {
		calls = append(calls, t.call)
	}
	return calls
}

func (r *CallRegistry) Snapshot() []domain.CallSnapshot {
	calls := r.Calls()
	snapshots := make([]domain.CallSnapshot, 0, len(calls))
	for _, c := range calls {
		snapshots = append(snapshots, c.Snapshot())
	}
	return snapshots
}

func (r *CallRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.calls)
}

func (r *CallRegistry) postCallsChanged(ctx context.Context) {
	r.notifier.Post(ctx, domain.Notification{
		Name:   domain.CallsChangedNotification,
		Sender: r,
	})
}
