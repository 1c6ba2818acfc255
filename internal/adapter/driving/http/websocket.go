package http

import (
	"net/http"
	"sync"

	"github.com/Wyydra/speakerbox/internal/core/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict to the configured UI origin once one exists
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSClient struct {
	id   string
	conn *websocket.Conn

	mu sync.Mutex // gorilla allows one concurrent writer
}

func (c *WSClient) ID() string {
	return c.id
}

func (c *WSClient) SendCalls(calls []domain.CallSnapshot) error {
	return c.writeJSON(callsEvent{Type: "calls", Calls: newCallDTOs(calls)})
}

func (c *WSClient) Close() error {
	return c.conn.Close()
}

func (c *WSClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

type callsEvent struct {
	Type  string    `json:"type"`
	Calls []callDTO `json:"calls"`
}

type errorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type startedEvent struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type incomingDTO struct {
	Type   string `json:"type"`
	Handle string `json:"handle"`
	Video  bool   `json:"video"`
	CallID string `json:"call_id"`
	OnHold bool   `json:"on_hold"`
}

// HTTP handler
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Error while upgrading ws")
		return
	}

	client := &WSClient{
		id:   uuid.New().String(),
		conn: conn,
	}

	l := log.With().Str("client_id", client.id).Logger()
	l.Info().Msg("New client connected")

	if err := client.SendCalls(h.Registry.Snapshot()); err != nil {
		l.Error().Err(err).Msg("Error sending initial calls")
		conn.Close()
		return
	}

	h.Hub.Register(client)

	defer func() {
		l.Info().Msg("Client disconnected")
		h.Hub.Unregister(client)
		conn.Close()
	}()

	// listening for browser
	for {
		var req incomingDTO
		err := conn.ReadJSON(&req)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				l.Error().Err(err).Msg("Unexpected close error")
			}
			break
		}

		l.Debug().Object("message", &req).Msg("Client action received")

		if err := h.handleWSAction(r, client, req); err != nil {
			l.Warn().Err(err).Str("type", req.Type).Msg("Rejected client action")
			if err := client.writeJSON(errorEvent{Type: "error", Error: err.Error()}); err != nil {
				l.Error().Err(err).Msg("Error sending error event")
				break
			}
		}
	}
}

func (h *Handler) handleWSAction(r *http.Request, client *WSClient, req incomingDTO) error {
	ctx := r.Context()

	switch domain.ActionKind(req.Type) {
	case domain.ActionStartCall:
		id, err := h.CallService.StartCall(ctx, req.Handle, req.Video)
		if err != nil {
			return err
		}
		return client.writeJSON(startedEvent{Type: "call_started", ID: id.String()})

	case domain.ActionEndCall, domain.ActionSetHeld:
		id, err := domain.ParseCallID(req.CallID)
		if err != nil {
			return err
		}
		call, ok := h.Registry.Find(id)
		if !ok {
			return domain.ErrCallNotFound
		}
		if req.Type == string(domain.ActionEndCall) {
			h.CallService.EndCall(ctx, call)
		} else {
			h.CallService.SetHeld(ctx, call, req.OnHold)
		}
		return nil

	default:
		return errUnknownMessage(req.Type)
	}
}

type errUnknownMessage string

func (e errUnknownMessage) Error() string {
	return "unknown message type " + string(e)
}

var _ zerolog.LogObjectMarshaler = (*incomingDTO)(nil)

func (d *incomingDTO) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", d.Type).Str("call_id", d.CallID)
}
