package ws

import "github.com/Wyydra/speakerbox/internal/core/domain"

type Client interface {
	ID() string
	SendCalls(calls []domain.CallSnapshot) error
	Close() error
}
