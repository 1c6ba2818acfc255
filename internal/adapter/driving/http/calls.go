package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Wyydra/speakerbox/internal/core/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type callDTO struct {
	ID          string     `json:"id"`
	Handle      string     `json:"handle"`
	HandleType  string     `json:"handle_type"`
	Video       bool       `json:"video"`
	Outgoing    bool       `json:"outgoing"`
	State       string     `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
}

func newCallDTO(s domain.CallSnapshot) callDTO {
	dto := callDTO{
		ID:         s.ID.String(),
		Handle:     s.Handle.Value,
		HandleType: string(s.Handle.Type),
		Video:      s.IsVideo,
		Outgoing:   s.Outgoing,
		State:      string(s.State),
		CreatedAt:  s.CreatedAt,
	}
	if !s.ConnectedAt.IsZero() {
		dto.ConnectedAt = &s.ConnectedAt
	}
	if !s.EndedAt.IsZero() {
		dto.EndedAt = &s.EndedAt
	}
	return dto
}

func newCallDTOs(snapshots []domain.CallSnapshot) []callDTO {
	dtos := make([]callDTO, 0, len(snapshots))
	for _, s := range snapshots {
		dtos = append(dtos, newCallDTO(s))
	}
	return dtos
}

type startCallRequest struct {
	Handle string `json:"handle"`
	Video  bool   `json:"video"`
}

type holdRequest struct {
	OnHold bool `json:"on_hold"`
}

type idResponse struct {
	ID string `json:"id"`
}

type transactionDTO struct {
	ID          string     `json:"id"`
	Actions     []string   `json:"actions"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	RequestedAt time.Time  `json:"requested_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (h *Handler) ListCalls(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCallDTOs(h.Registry.Snapshot()))
}

func (h *Handler) GetCall(w http.ResponseWriter, r *http.Request) {
	call, ok := h.findCall(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newCallDTO(call.Snapshot()))
}

func (h *Handler) StartCall(w http.ResponseWriter, r *http.Request) {
	var req startCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := h.CallService.StartCall(r.Context(), req.Handle, req.Video)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, idResponse{ID: id.String()})
}

func (h *Handler) ReportIncomingCall(w http.ResponseWriter, r *http.Request) {
	var req startCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	handle, err := domain.NewHandle(req.Handle)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	id, err := h.Incoming.ReportIncomingCall(r.Context(), handle, req.Video)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id.String()})
}

func (h *Handler) EndCall(w http.ResponseWriter, r *http.Request) {
	call, ok := h.findCall(w, r)
	if !ok {
		return
	}
	h.CallService.EndCall(r.Context(), call)
	writeJSON(w, http.StatusAccepted, idResponse{ID: call.ID.String()})
}

func (h *Handler) SetHeld(w http.ResponseWriter, r *http.Request) {
	call, ok := h.findCall(w, r)
	if !ok {
		return
	}

	var req holdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	h.CallService.SetHeld(r.Context(), call, req.OnHold)
	writeJSON(w, http.StatusAccepted, idResponse{ID: call.ID.String()})
}

func (h *Handler) RemoveAllCalls(w http.ResponseWriter, r *http.Request) {
	h.Registry.RemoveAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	records, err := h.History.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]transactionDTO, 0, len(records))
	for _, rec := range records {
		dto := transactionDTO{
			ID:          rec.ID.String(),
			Actions:     rec.Actions,
			Status:      string(rec.Status),
			Error:       rec.Error,
			RequestedAt: rec.RequestedAt,
		}
		if !rec.CompletedAt.IsZero() {
			completed := rec.CompletedAt
			dto.CompletedAt = &completed
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) findCall(w http.ResponseWriter, r *http.Request) (*domain.Call, bool) {
	id, err := domain.ParseCallID(chi.URLParam(r, "callID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}

	call, ok := h.Registry.Find(id)
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrCallNotFound)
		return nil, false
	}
	return call, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidHandle):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCallNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBusy), errors.Is(err, domain.ErrCallExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error writing response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
