package port

import (
	"context"

	"github.com/Wyydra/speakerbox/internal/core/domain"
)

type ChangeNotifier interface {
	Post(ctx context.Context, n domain.Notification)
}

type RealTimeGateway interface {
	BroadcastCalls(ctx context.Context, calls []domain.CallSnapshot) error
}

type NotificationSubscriber interface {
	Subscribe(name domain.NotificationName, observer domain.Observer) (cancel func())
}
