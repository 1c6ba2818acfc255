package service

import (
	"context"
	"time"

	"github.com/Wyydra/speakerbox/internal/core/domain"
	"github.com/Wyydra/speakerbox/internal/core/port"
	"github.com/rs/zerolog/log"
)

// CallService turns call intents into single-action transactions for the
// call backend. It never mutates calls itself: the backend reflects the
// outcome back through the registry.
type CallService struct {
	controller port.CallController
	history    port.TransactionRepository
	now        func() time.Time
}

func NewCallService(controller port.CallController, history port.TransactionRepository) *CallService {
	return &CallService{
		controller: controller,
		history:    history,
		now:        time.Now,
	}
}

func (s *CallService) StartCall(ctx context.Context, handle string, isVideo bool) (domain.CallID, error) {
	h, err := domain.NewHandle(handle)
	if err != nil {
		return domain.CallID{}, err
	}

	id := domain.NewCallID()
	s.requestTransaction(ctx, domain.NewTransaction(domain.StartCallAction{
		Call:    id,
		Handle:  h,
		IsVideo: isVideo,
	}))
	return id, nil
}

func (s *CallService) EndCall(ctx context.Context, call *domain.Call) {
	s.requestTransaction(ctx, domain.NewTransaction(domain.EndCallAction{Call: call.ID}))
}

func (s *CallService) SetHeld(ctx context.Context, call *domain.Call, onHold bool) {
	s.requestTransaction(ctx, domain.NewTransaction(domain.SetHeldCallAction{
		Call:   call.ID,
		OnHold: onHold,
	}))
}

func (s *CallService) requestTransaction(ctx context.Context, tx domain.Transaction) {
	l := log.With().Str("transaction_id", tx.ID.String()).Logger()

	record := domain.NewTransactionRecord(tx, s.now())
	if err := s.history.Save(ctx, record); err != nil {
		l.Warn().Err(err).Msg("Failed to record transaction")
	}

	s.controller.Request(ctx, tx, func(err error) {
		if err != nil {
			l.Error().Err(&domain.RequestError{Transaction: tx.ID, Err: err}).Strs("actions", record.Actions).Msg("Error requesting transaction")
		} else {
			l.Info().Strs("actions", record.Actions).Msg("Requested transaction successfully")
		}

		// the request context may be gone by the time the backend answers
		if err := s.history.Save(context.WithoutCancel(ctx), record.Complete(err, s.now())); err != nil {
			l.Warn().Err(err).Msg("Failed to record transaction outcome")
		}
	})
}
