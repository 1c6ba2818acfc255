package ws

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Wyydra/speakerbox/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	id      string
	sendErr error

	mu       sync.Mutex
	received [][]domain.CallSnapshot
	closed   bool
}

func (c *fakeClient) ID() string { return c.id }

func (c *fakeClient) SendCalls(calls []domain.CallSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.received = append(c.received, calls)
	return nil
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) receivedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.received)
}

func (c *fakeClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	return hub
}

func TestHubBroadcastsToRegisteredClients(t *testing.T) {
	hub := startHub(t)
	defer hub.Stop()
	a, b := &fakeClient{id: "a"}, &fakeClient{id: "b"}
	hub.Register(a)
	hub.Register(b)

	calls := []domain.CallSnapshot{{ID: domain.NewCallID(), State: domain.CallStateDialing}}
	require.NoError(t, hub.BroadcastCalls(context.Background(), calls))

	assert.Eventually(t, func() bool {
		return a.receivedCount() == 1 && b.receivedCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestHubDropsFailingClient(t *testing.T) {
	hub := startHub(t)
	defer hub.Stop()
	broken := &fakeClient{id: "broken", sendErr: errors.New("write: broken pipe")}
	hub.Register(broken)

	require.NoError(t, hub.BroadcastCalls(context.Background(), nil))

	assert.Eventually(t, broken.isClosed, time.Second, 5*time.Millisecond)
}

func TestHubUnregisterClosesClient(t *testing.T) {
	hub := startHub(t)
	defer hub.Stop()
	c := &fakeClient{id: "c"}
	hub.Register(c)

	hub.Unregister(c)

	assert.Eventually(t, c.isClosed, time.Second, 5*time.Millisecond)
}

func TestHubStopClosesClients(t *testing.T) {
	hub := startHub(t)
	c := &fakeClient{id: "c"}
	hub.Register(c)

	hub.Stop()

	assert.True(t, c.isClosed())
	hub.Unregister(c)
}
