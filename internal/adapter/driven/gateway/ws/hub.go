package ws

import (
	"context"

	"github.com/Wyydra/speakerbox/internal/core/domain"
	"github.com/rs/zerolog/log"
)

const broadcastQueueSize = 16

// Hub pushes call snapshots to connected clients. It implements
// port.RealTimeGateway; the client set is only touched by Run.
type Hub struct {
	clients    map[Client]bool
	broadcast  chan []domain.CallSnapshot
	register   chan Client
	unregister chan Client
	quit       chan struct{}
	stopped    chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[Client]bool),
		broadcast:  make(chan []domain.CallSnapshot, broadcastQueueSize),
		register:   make(chan Client),
		unregister: make(chan Client),
		quit:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

func (h *Hub) BroadcastCalls(ctx context.Context, calls []domain.CallSnapshot) error {
	select {
	case h.broadcast <- calls:
	default:
		log.Warn().Int("calls", len(calls)).Msg("Broadcast queue full, dropping calls update")
	}
	return nil
}

func (h *Hub) Run() {
	defer close(h.stopped)

	for {
		select {
		case <-h.quit:
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			log.Info().Int("count", len(h.clients)).Str("client_id", client.ID()).Msg("Client registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
				log.Info().Int("count", len(h.clients)).Str("client_id", client.ID()).Msg("Client unregistered")
			}

		case calls := <-h.broadcast:
			for client := range h.clients {
				if err := client.SendCalls(calls); err != nil {
					log.Error().Err(err).Str("client_id", client.ID()).Msg("Error sending calls")
					client.Close()
					delete(h.clients, client)
				}
			}
		}
	}
}

func (h *Hub) Register(c Client) {
	select {
	case h.register <- c:
	case <-h.stopped:
		c.Close()
	}
}

func (h *Hub) Unregister(c Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

func (h *Hub) Stop() {
	close(h.quit)
	<-h.stopped
}
