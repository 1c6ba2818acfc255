package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Wyydra/speakerbox/internal/core/domain"
	"github.com/Wyydra/speakerbox/internal/core/port"
	"github.com/rs/zerolog/log"
)

var ErrControllerClosed = errors.New("call controller closed")

type Options struct {
	// MaxCalls is the number of simultaneous calls before new ones are
	// refused with domain.ErrBusy.
	MaxCalls int
	// DialDelay is the time between the state steps of a new call.
	DialDelay time.Duration
}

// Controller is an in-process call backend. It executes transactions one at
// a time on its own goroutines and reflects their effects into the store.
type Controller struct {
	store port.CallStore
	opts  Options

	mu sync.Mutex // serializes transactions

	closeMu sync.RWMutex
	closed  bool
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewController(store port.CallStore, opts Options) *Controller {
	if opts.MaxCalls <= 0 {
		opts.MaxCalls = 1
	}
	return &Controller{
		store: store,
		opts:  opts,
		done:  make(chan struct{}),
	}
}

func (c *Controller) Request(ctx context.Context, tx domain.Transaction, completion func(error)) {
	ctx = context.WithoutCancel(ctx)

	if !c.track() {
		go completion(ErrControllerClosed)
		return
	}

	go func() {
		defer c.wg.Done()
		completion(c.process(ctx, tx))
	}()
}

func (c *Controller) ReportIncomingCall(ctx context.Context, handle domain.Handle, isVideo bool) (domain.CallID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store.Len() >= c.opts.MaxCalls {
		return domain.CallID{}, domain.ErrBusy
	}

	call := domain.NewIncomingCall(domain.NewCallID(), handle, isVideo)
	if err := c.store.Add(ctx, call); err != nil {
		return domain.CallID{}, err
	}
	log.Info().Str("call_id", call.ID.String()).Str("handle", handle.Value).Msg("Incoming call reported")

	c.progress(context.WithoutCancel(ctx), call, domain.EventEstablish)
	return call.ID, nil
}

// Close stops the state progress of pending calls and waits for in-flight
// transactions to complete.
func (c *Controller) Close() {
	c.closeMu.Lock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
	c.closeMu.Unlock()

	c.wg.Wait()
}

func (c *Controller) track() bool {
	c.closeMu.RLock()
	defer c.closeMu.RUnlock()

	if c.closed {
		return false
	}
	c.wg.Add(1)
	return true
}

func (c *Controller) process(ctx context.Context, tx domain.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.validate(tx); err != nil {
		return err
	}

	for _, action := range tx.Actions {
		if err := c.apply(ctx, action); err != nil {
			return err
		}
	}
	return nil
}

// validate checks the whole batch before anything is applied.
func (c *Controller) validate(tx domain.Transaction) error {
	if len(tx.Actions) == 0 {
		return domain.ErrEmptyTransaction
	}

	active := c.store.Len()
	starting := make(map[domain.CallID]bool)

	for _, action := range tx.Actions {
		switch a := action.(type) {
		case domain.StartCallAction:
			if _, ok := c.store.Find(a.Call); ok || starting[a.Call] {
				return fmt.Errorf("start call %s: %w", a.Call, domain.ErrCallExists)
			}
			if active >= c.opts.MaxCalls {
				return fmt.Errorf("start call %s: %w", a.Call, domain.ErrBusy)
			}
			starting[a.Call] = true
			active++

		case domain.EndCallAction:
			if _, ok := c.store.Find(a.Call); !ok {
				return fmt.Errorf("end call %s: %w", a.Call, domain.ErrCallNotFound)
			}

		case domain.SetHeldCallAction:
			call, ok := c.store.Find(a.Call)
			if !ok {
				return fmt.Errorf("set held %s: %w", a.Call, domain.ErrCallNotFound)
			}
			if !canSetHeld(call.State()) {
				return fmt.Errorf("set held %s: %w: call is %s", a.Call, domain.ErrInvalidTransition, call.State())
			}

		default:
			return fmt.Errorf("unsupported action %s", action.Kind())
		}
	}
	return nil
}

// Hold and resume both need an answered call; asking for the current hold
// state is accepted as a no-op.
func canSetHeld(state domain.CallState) bool {
	return state == domain.CallStateConnected || state == domain.CallStateHeld
}

func (c *Controller) apply(ctx context.Context, action domain.Action) error {
	l := log.With().Str("call_id", action.CallID().String()).Str("action", string(action.Kind())).Logger()

	switch a := action.(type) {
	case domain.StartCallAction:
		call := domain.NewOutgoingCall(a.Call, a.Handle, a.IsVideo)
		if err := c.store.Add(ctx, call); err != nil {
			return fmt.Errorf("start call %s: %w", a.Call, err)
		}
		l.Debug().Str("handle", a.Handle.Value).Bool("video", a.IsVideo).Msg("Outgoing call started")
		c.progress(ctx, call, domain.EventConnect, domain.EventEstablish)

	case domain.EndCallAction:
		call, ok := c.store.Find(a.Call)
		if !ok {
			return fmt.Errorf("end call %s: %w", a.Call, domain.ErrCallNotFound)
		}
		if err := call.End(ctx); err != nil {
			return fmt.Errorf("end call %s: %w", a.Call, err)
		}
		c.store.Remove(ctx, call)
		l.Debug().Msg("Call ended")

	case domain.SetHeldCallAction:
		call, ok := c.store.Find(a.Call)
		if !ok {
			return fmt.Errorf("set held %s: %w", a.Call, domain.ErrCallNotFound)
		}
		if err := call.SetHeld(ctx, a.OnHold); err != nil {
			return fmt.Errorf("set held %s: %w", a.Call, err)
		}
		l.Debug().Bool("on_hold", a.OnHold).Msg("Call hold changed")
	}
	return nil
}

// progress walks call through events, waiting DialDelay before each one.
// It gives up when the call leaves the expected path or on Close.
func (c *Controller) progress(ctx context.Context, call *domain.Call, events ...domain.CallEvent) {
	if !c.track() {
		return
	}

	go func() {
		defer c.wg.Done()

		for _, ev := range events {
			if c.opts.DialDelay > 0 {
				timer := time.NewTimer(c.opts.DialDelay)
				select {
				case <-timer.C:
				case <-c.done:
					timer.Stop()
					return
				}
			}

			if !call.CanTransition(ev) {
				return
			}
			if err := call.Transition(ctx, ev); err != nil {
				log.Debug().Err(err).Str("call_id", call.ID.String()).Msg("Call progress stopped")
				return
			}
		}
	}()
}
