package http

import (
	"net/http"

	"github.com/Wyydra/speakerbox/internal/adapter/driven/gateway/ws"
	"github.com/Wyydra/speakerbox/internal/core/port"
	"github.com/Wyydra/speakerbox/internal/core/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handler struct {
	CallService *service.CallService
	Registry    *service.CallRegistry
	Incoming    port.IncomingCallReporter
	History     port.TransactionRepository
	Hub         *ws.Hub
}

func NewHandler(
	callService *service.CallService,
	registry *service.CallRegistry,
	incoming port.IncomingCallReporter,
	history port.TransactionRepository,
	hub *ws.Hub,
) *Handler {
	return &Handler{
		CallService: callService,
		Registry:    registry,
		Incoming:    incoming,
		History:     history,
		Hub:         hub,
	}
}

func (h *Handler) NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/calls", func(r chi.Router) {
		r.Get("/", h.ListCalls)
		r.Post("/", h.StartCall)
		r.Delete("/", h.RemoveAllCalls)
		r.Post("/incoming", h.ReportIncomingCall)

		r.Route("/{callID}", func(r chi.Router) {
			r.Get("/", h.GetCall)
			r.Delete("/", h.EndCall)
			r.Put("/hold", h.SetHeld)
		})
	})

	r.Get("/transactions", h.ListTransactions)
	r.Get("/ws", h.ServeWS)

	return r
}
