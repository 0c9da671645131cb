package poller

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/subhound/subhound/internal/pkg/billing"
	metrics "github.com/subhound/subhound/internal/pkg/metrics/counter"
)

// DefaultInterval is the poll cycle spacing when none is configured.
const DefaultInterval = 2 * time.Second

// EventLister is the provider query surface the poller needs.
type EventLister interface {
	ListEvents(ctx context.Context, createdAfter *int64) ([]billing.Event, error)
}

// Dispatcher hands accepted events to detached processing.
type Dispatcher interface {
	Dispatch(evt billing.Event)
}

// Poller drives the pull-based fallback channel: a single sequential loop
// whose cycles never overlap. The cursor is loop-local state, nil until the
// first non-empty batch and the maximum observed created value afterwards.
// The first batch only establishes the cursor and is never dispatched, so a
// cold start does not replay the full event history.
type Poller struct {
	api      EventLister
	executor Dispatcher
	interval time.Duration

	cursor *int64

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// New creates a poller over the provider client and executor.
func New(api EventLister, executor Dispatcher, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		api:      api,
		executor: executor,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the poll loop.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	// Recreate stop channel for each start cycle so the poller can be
	// restarted safely.
	p.stopCh = make(chan struct{})
	p.running = true
	p.wg.Add(1)
	go p.loop()
	log.Infof("[Poller] Started (interval: %s)", p.interval)
}

// Stop halts the loop and waits for the current cycle to finish. Events
// already dispatched keep running in the executor.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
	p.wg.Wait()
	log.Info("[Poller] Stopped")
}

func (p *Poller) loop() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.pollOnce(context.Background())
		}
	}
}

// pollOnce runs a single poll cycle. A failed cycle neither advances nor
// resets the cursor; the next tick simply tries again.
func (p *Poller) pollOnce(ctx context.Context) {
	events, err := p.api.ListEvents(ctx, p.cursor)
	if err != nil {
		log.Errorf("[Poller] Poll cycle failed: %v", err)
		return
	}
	if len(events) == 0 {
		return
	}

	maxCreated := events[0].Created
	for _, evt := range events[1:] {
		if evt.Created > maxCreated {
			maxCreated = evt.Created
		}
	}

	coldStart := p.cursor == nil
	p.cursor = &maxCreated

	if coldStart {
		log.Infof("[Poller] Got first batch, baseline cursor=%d", maxCreated)
		return
	}

	for _, evt := range events {
		if cerr := metrics.AddDeliveryAccepted("poll"); cerr != nil {
			log.Debugf("[Poller] Counter update failed: %v", cerr)
		}
		p.executor.Dispatch(evt)
	}
}
