package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Wyydra/speakerbox/internal/adapter/driven/notify"
	"github.com/Wyydra/speakerbox/internal/core/domain"
	"github.com/Wyydra/speakerbox/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T, opts Options) (*Controller, *service.CallRegistry) {
	t.Helper()
	registry := service.NewCallRegistry(notify.NewCenter())
	controller := NewController(registry, opts)
	t.Cleanup(controller.Close)
	return controller, registry
}

func request(t *testing.T, c *Controller, actions ...domain.Action) error {
	t.Helper()
	done := make(chan error, 1)
	c.Request(context.Background(), domain.NewTransaction(actions...), func(err error) { done <- err })

	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("completion was not called")
		return nil
	}
}

func mustHandle(t *testing.T, value string) domain.Handle {
	t.Helper()
	h, err := domain.NewHandle(value)
	require.NoError(t, err)
	return h
}

func stateOf(registry *service.CallRegistry, id domain.CallID) domain.CallState {
	call, ok := registry.Find(id)
	if !ok {
		return ""
	}
	return call.State()
}

func TestControllerStartCallConnects(t *testing.T) {
	t.Parallel()

	controller, registry := newTestController(t, Options{MaxCalls: 1})
	id := domain.NewCallID()

	err := request(t, controller, domain.StartCallAction{Call: id, Handle: mustHandle(t, "+15551234567")})
	require.NoError(t, err)

	call, ok := registry.Find(id)
	require.True(t, ok)
	assert.True(t, call.Outgoing)
	assert.Eventually(t, func() bool {
		return stateOf(registry, id) == domain.CallStateConnected
	}, time.Second, 5*time.Millisecond)
}

func TestControllerStartCallWhenBusy(t *testing.T) {
	t.Parallel()

	controller, registry := newTestController(t, Options{MaxCalls: 1})
	require.NoError(t, request(t, controller, domain.StartCallAction{Call: domain.NewCallID(), Handle: mustHandle(t, "100")}))

	err := request(t, controller, domain.StartCallAction{Call: domain.NewCallID(), Handle: mustHandle(t, "200")})
	require.ErrorIs(t, err, domain.ErrBusy)
	assert.Equal(t, 1, registry.Len())
}

func TestControllerStartCallWithExistingID(t *testing.T) {
	t.Parallel()

	controller, registry := newTestController(t, Options{MaxCalls: 2})
	id := domain.NewCallID()
	require.NoError(t, request(t, controller, domain.StartCallAction{Call: id, Handle: mustHandle(t, "100")}))

	err := request(t, controller, domain.StartCallAction{Call: id, Handle: mustHandle(t, "100")})
	require.ErrorIs(t, err, domain.ErrCallExists)
	assert.Equal(t, 1, registry.Len())
}

func TestControllerEmptyTransaction(t *testing.T) {
	t.Parallel()

	controller, _ := newTestController(t, Options{})

	err := request(t, controller)
	require.ErrorIs(t, err, domain.ErrEmptyTransaction)
}

func TestControllerEndCallRemovesIt(t *testing.T) {
	t.Parallel()

	controller, registry := newTestController(t, Options{MaxCalls: 1})
	id := domain.NewCallID()
	require.NoError(t, request(t, controller, domain.StartCallAction{Call: id, Handle: mustHandle(t, "100")}))
	call, ok := registry.Find(id)
	require.True(t, ok)

	require.NoError(t, request(t, controller, domain.EndCallAction{Call: id}))

	assert.Equal(t, domain.CallStateEnded, call.State())
	assert.Zero(t, registry.Len())
}

func TestControllerEndUnknownCall(t *testing.T) {
	t.Parallel()

	controller, _ := newTestController(t, Options{})

	err := request(t, controller, domain.EndCallAction{Call: domain.NewCallID()})
	require.ErrorIs(t, err, domain.ErrCallNotFound)
}

func TestControllerSetHeld(t *testing.T) {
	t.Parallel()

	controller, registry := newTestController(t, Options{MaxCalls: 1})
	id := domain.NewCallID()
	require.NoError(t, request(t, controller, domain.StartCallAction{Call: id, Handle: mustHandle(t, "100")}))
	require.Eventually(t, func() bool {
		return stateOf(registry, id) == domain.CallStateConnected
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, request(t, controller, domain.SetHeldCallAction{Call: id, OnHold: true}))
	assert.Equal(t, domain.CallStateHeld, stateOf(registry, id))

	require.NoError(t, request(t, controller, domain.SetHeldCallAction{Call: id, OnHold: false}))
	assert.Equal(t, domain.CallStateConnected, stateOf(registry, id))
}

func TestControllerSetHeldBeforeAnswer(t *testing.T) {
	t.Parallel()

	controller, registry := newTestController(t, Options{MaxCalls: 1, DialDelay: time.Hour})
	id := domain.NewCallID()
	require.NoError(t, request(t, controller, domain.StartCallAction{Call: id, Handle: mustHandle(t, "100")}))

	err := request(t, controller, domain.SetHeldCallAction{Call: id, OnHold: true})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.CallStateDialing, stateOf(registry, id))
}

func TestControllerValidatesWholeBatch(t *testing.T) {
	t.Parallel()

	controller, registry := newTestController(t, Options{MaxCalls: 2})

	err := request(t, controller,
		domain.StartCallAction{Call: domain.NewCallID(), Handle: mustHandle(t, "100")},
		domain.EndCallAction{Call: domain.NewCallID()},
	)
	require.ErrorIs(t, err, domain.ErrCallNotFound)
	assert.Zero(t, registry.Len())
}

func TestControllerReportIncomingCall(t *testing.T) {
	t.Parallel()

	controller, registry := newTestController(t, Options{MaxCalls: 1})

	id, err := controller.ReportIncomingCall(context.Background(), mustHandle(t, "alice@example.com"), true)
	require.NoError(t, err)

	call, ok := registry.Find(id)
	require.True(t, ok)
	assert.False(t, call.Outgoing)
	assert.True(t, call.IsVideo)
	assert.Eventually(t, func() bool {
		return stateOf(registry, id) == domain.CallStateConnected
	}, time.Second, 5*time.Millisecond)

	_, err = controller.ReportIncomingCall(context.Background(), mustHandle(t, "bob@example.com"), false)
	require.ErrorIs(t, err, domain.ErrBusy)
}

func TestControllerRequestAfterClose(t *testing.T) {
	t.Parallel()

	controller, registry := newTestController(t, Options{})
	controller.Close()

	err := request(t, controller, domain.StartCallAction{Call: domain.NewCallID(), Handle: mustHandle(t, "100")})
	require.ErrorIs(t, err, ErrControllerClosed)
	assert.Zero(t, registry.Len())
}
