package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/subhound/subhound/internal/pkg/billing"
)

type blockingHandler struct {
	started chan struct{}
	release chan struct{}
	err     error
}

func (h *blockingHandler) HandleEvent(_ context.Context, _ billing.Event) error {
	close(h.started)
	<-h.release
	return h.err
}

type countingHandler struct {
	mu    sync.Mutex
	errs  []error
	count int
}

func (h *countingHandler) HandleEvent(_ context.Context, _ billing.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	if h.count <= len(h.errs) {
		return h.errs[h.count-1]
	}
	return nil
}

func TestDispatch_ReturnsBeforeProcessingFinishes(t *testing.T) {
	handler := &blockingHandler{started: make(chan struct{}), release: make(chan struct{})}
	e := NewExecutor(handler)

	done := make(chan struct{})
	go func() {
		e.Dispatch(billing.Event{Type: "checkout.session.completed"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on the handler")
	}

	select {
	case <-handler.started:
	case <-time.After(time.Second):
		t.Fatal("handler was never invoked")
	}

	close(handler.release)
	e.Wait()
}

func TestDispatch_FailuresAreIsolated(t *testing.T) {
	handler := &countingHandler{errs: []error{
		errors.New("storage gone"),
		billing.ErrSessionAlreadyCompleted,
		nil,
	}}
	e := NewExecutor(handler)

	for i := 0; i < 3; i++ {
		e.Dispatch(billing.Event{Type: "checkout.session.completed", Created: int64(i)})
	}
	e.Wait()

	handler.mu.Lock()
	defer handler.mu.Unlock()
	require.Equal(t, 3, handler.count)
}
