package notify

import (
	"context"
	"testing"

	"github.com/Wyydra/speakerbox/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callsChanged(sender any) domain.Notification {
	return domain.Notification{Name: domain.CallsChangedNotification, Sender: sender}
}

func TestCenterDeliversInSubscriptionOrder(t *testing.T) {
	t.Parallel()

	center := NewCenter()
	var order []string
	center.Subscribe(domain.CallsChangedNotification, func(context.Context, domain.Notification) { order = append(order, "first") })
	center.Subscribe(domain.CallsChangedNotification, func(context.Context, domain.Notification) { order = append(order, "second") })
	center.Subscribe("other", func(context.Context, domain.Notification) { order = append(order, "other") })

	center.Post(context.Background(), callsChanged(nil))

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestCenterPassesSender(t *testing.T) {
	t.Parallel()

	center := NewCenter()
	sender := &struct{ name string }{name: "registry"}
	var got domain.Notification
	center.Subscribe(domain.CallsChangedNotification, func(_ context.Context, n domain.Notification) { got = n })

	center.Post(context.Background(), callsChanged(sender))

	assert.Same(t, sender, got.Sender)
	assert.Equal(t, domain.CallsChangedNotification, got.Name)
}

func TestCenterCancelStopsDelivery(t *testing.T) {
	t.Parallel()

	center := NewCenter()
	count := 0
	cancel := center.Subscribe(domain.CallsChangedNotification, func(context.Context, domain.Notification) { count++ })

	center.Post(context.Background(), callsChanged(nil))
	cancel()
	cancel()
	center.Post(context.Background(), callsChanged(nil))

	assert.Equal(t, 1, count)
}

func TestCenterObserverCanCancelDuringDelivery(t *testing.T) {
	t.Parallel()

	center := NewCenter()
	secondCalls := 0
	var cancelSecond func()
	center.Subscribe(domain.CallsChangedNotification, func(context.Context, domain.Notification) { cancelSecond() })
	cancelSecond = center.Subscribe(domain.CallsChangedNotification, func(context.Context, domain.Notification) { secondCalls++ })

	require.NotPanics(t, func() { center.Post(context.Background(), callsChanged(nil)) })
	assert.Zero(t, secondCalls)
}
