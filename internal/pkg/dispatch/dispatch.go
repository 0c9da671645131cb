package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/subhound/subhound/internal/pkg/billing"
	metrics "github.com/subhound/subhound/internal/pkg/metrics/counter"
)

// Handler processes one verified event to completion.
type Handler interface {
	HandleEvent(ctx context.Context, evt billing.Event) error
}

// Executor runs one detached goroutine per accepted event. Outcomes are
// logged and counted but never reach the ingress path, and there is no
// cancellation once an event is dispatched.
type Executor struct {
	handler Handler
	wg      sync.WaitGroup
}

// NewExecutor creates an executor over the given event handler.
func NewExecutor(handler Handler) *Executor {
	return &Executor{handler: handler}
}

// Dispatch hands an event to a detached worker and returns immediately.
func (e *Executor) Dispatch(evt billing.Event) {
	deliveryID := uuid.NewString()
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.process(deliveryID, evt)
	}()
}

func (e *Executor) process(deliveryID string, evt billing.Event) {
	log.Infof("[Dispatch] %s processing event type=%s created=%d", deliveryID, evt.Type, evt.Created)

	err := e.handler.HandleEvent(context.Background(), evt)
	switch {
	case err == nil:
		if cerr := metrics.AddEventProcessed(evt.Type); cerr != nil {
			log.Debugf("[Dispatch] Counter update failed: %v", cerr)
		}
		log.Infof("[Dispatch] %s done", deliveryID)
	case errors.Is(err, billing.ErrSessionAlreadyCompleted):
		if cerr := metrics.AddEventDuplicate(evt.Type); cerr != nil {
			log.Debugf("[Dispatch] Counter update failed: %v", cerr)
		}
		log.Warnf("[Dispatch] %s duplicate delivery absorbed: %v", deliveryID, err)
	default:
		if cerr := metrics.AddEventFailed(evt.Type); cerr != nil {
			log.Debugf("[Dispatch] Counter update failed: %v", cerr)
		}
		log.Errorf("[Dispatch] %s failed: %v", deliveryID, err)
	}
}

// Wait blocks until every dispatched event has finished. Used on shutdown
// and in tests.
func (e *Executor) Wait() {
	e.wg.Wait()
}
