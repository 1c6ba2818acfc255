package http

import (
	"context"

	"github.com/Wyydra/speakerbox/internal/core/domain"
	"github.com/Wyydra/speakerbox/internal/core/port"
	"github.com/rs/zerolog/log"
)

// WatchCalls forwards every calls-changed notification to the hub as a
// fresh snapshot of the registry.
func (h *Handler) WatchCalls(notifications port.NotificationSubscriber) (cancel func()) {
	return notifications.Subscribe(domain.CallsChangedNotification, func(ctx context.Context, _ domain.Notification) {
		if err := h.Hub.BroadcastCalls(ctx, h.Registry.Snapshot()); err != nil {
			log.Error().Err(err).Msg("Failed to broadcast calls")
		}
	})
}
