package domain

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/looplab/fsm"
)

type CallState string

const (
	CallStateDialing    CallState = "dialing"
	CallStateConnecting CallState = "connecting"
	CallStateConnected  CallState = "connected"
	CallStateHeld       CallState = "held"
	CallStateEnded      CallState = "ended"
)

type CallEvent string

const (
	EventConnect   CallEvent = "connect"
	EventEstablish CallEvent = "establish"
	EventHold      CallEvent = "hold"
	EventResume    CallEvent = "resume"
	EventEnd       CallEvent = "end"
)

// StateObserver is invoked after every state change of a call.
type StateObserver func(ctx context.Context, c *Call)

// Call is one ongoing or pending call. Identity fields are immutable; state
// only moves through Transition.
type Call struct {
	ID        CallID
	Handle    Handle
	IsVideo   bool
	Outgoing  bool
	CreatedAt time.Time

	machine *fsm.FSM

	mu           sync.Mutex
	observers    map[int]StateObserver
	nextObserver int
	connectedAt  time.Time
	endedAt      time.Time
}

// NewOutgoingCall creates a call in the dialing state.
func NewOutgoingCall(id CallID, handle Handle, isVideo bool) *Call {
	return newCall(id, handle, isVideo, true, CallStateDialing)
}

// NewIncomingCall creates a call in the connecting state.
func NewIncomingCall(id CallID, handle Handle, isVideo bool) *Call {
	return newCall(id, handle, isVideo, false, CallStateConnecting)
}

func newCall(id CallID, handle Handle, isVideo, outgoing bool, initial CallState) *Call {
	c := &Call{
		ID:        id,
		Handle:    handle,
		IsVideo:   isVideo,
		Outgoing:  outgoing,
		CreatedAt: time.Now(),
		observers: make(map[int]StateObserver),
	}

	c.machine = fsm.NewFSM(
		string(initial),
		fsm.Events{
			{Name: string(EventConnect), Src: []string{string(CallStateDialing)}, Dst: string(CallStateConnecting)},
			{Name: string(EventEstablish), Src: []string{string(CallStateConnecting)}, Dst: string(CallStateConnected)},
			{Name: string(EventHold), Src: []string{string(CallStateConnected)}, Dst: string(CallStateHeld)},
			{Name: string(EventResume), Src: []string{string(CallStateHeld)}, Dst: string(CallStateConnected)},
			{Name: string(EventEnd), Src: []string{
				string(CallStateDialing),
				string(CallStateConnecting),
				string(CallStateConnected),
				string(CallStateHeld),
			}, Dst: string(CallStateEnded)},
		},
		fsm.Callbacks{
			"enter_" + string(CallStateConnected): func(_ context.Context, _ *fsm.Event) {
				c.mu.Lock()
				if c.connectedAt.IsZero() {
					c.connectedAt = time.Now()
				}
				c.mu.Unlock()
			},
			"enter_" + string(CallStateEnded): func(_ context.Context, _ *fsm.Event) {
				c.mu.Lock()
				c.endedAt = time.Now()
				c.mu.Unlock()
			},
		},
	)

	return c
}

func (c *Call) State() CallState {
	return CallState(c.machine.Current())
}

// Transition fires ev on the call's state machine. Firing an event that
// leaves the state unchanged is not an error and notifies nobody.
func (c *Call) Transition(ctx context.Context, ev CallEvent) error {
	from := c.State()
	if err := c.machine.Event(ctx, string(ev)); err != nil {
		var noTransition fsm.NoTransitionError
		if errors.As(err, &noTransition) {
			return nil
		}
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ev, from)
	}
	c.notify(ctx)
	return nil
}

// SetHeld moves a connected call on or off hold. Asking for the state the
// call is already in is a no-op.
func (c *Call) SetHeld(ctx context.Context, onHold bool) error {
	switch {
	case onHold && c.State() == CallStateHeld:
		return nil
	case !onHold && c.State() == CallStateConnected:
		return nil
	case onHold:
		return c.Transition(ctx, EventHold)
	default:
		return c.Transition(ctx, EventResume)
	}
}

func (c *Call) End(ctx context.Context) error {
	if c.State() == CallStateEnded {
		return nil
	}
	return c.Transition(ctx, EventEnd)
}

// CanTransition reports whether ev is allowed from the current state.
func (c *Call) CanTransition(ev CallEvent) bool {
	return c.machine.Can(string(ev))
}

// Subscribe registers fn for state changes. The returned function removes
// the subscription and may be called more than once.
func (c *Call) Subscribe(fn StateObserver) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextObserver
	c.nextObserver++
	c.observers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.observers, id)
			c.mu.Unlock()
		})
	}
}

func (c *Call) notify(ctx context.Context) {
	c.mu.Lock()
	ids := make([]int, 0, len(c.observers))
	for id := range c.observers {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	// subscription order
	slices.Sort(ids)
	for _, id := range ids {
		c.mu.Lock()
		fn, ok := c.observers[id]
		c.mu.Unlock()
		if ok {
			fn(ctx, c)
		}
	}
}

type CallSnapshot struct {
	ID          CallID
	Handle      Handle
	IsVideo     bool
	Outgoing    bool
	State       CallState
	CreatedAt   time.Time
	ConnectedAt time.Time
	EndedAt     time.Time
}

func (c *Call) Snapshot() CallSnapshot {
	state := c.State()
	c.mu.Lock()
	defer c.mu.Unlock()
	return CallSnapshot{
		ID:          c.ID,
		Handle:      c.Handle,
		IsVideo:     c.IsVideo,
		Outgoing:    c.Outgoing,
		State:       state,
		CreatedAt:   c.CreatedAt,
		ConnectedAt: c.connectedAt,
		EndedAt:     c.endedAt,
	}
}
