package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"rentalWs/internal/modules/realtime/application/port"
	"rentalWs/internal/modules/realtime/domain"
	"rentalWs/internal/modules/realtime/infrastructure"
)

var (
	ErrAlreadyRunning = errors.New("dispatcher already running")
	ErrNotRunning     = errors.New("dispatcher not running")
)

// Dispatcher is the background consumer that turns broker events into
// WebSocket pushes. Lifecycle is Stopped -> Running -> Stopped; per-message
// failures (malformed payloads, dead sockets) never stop the loop.
type Dispatcher struct {
	source   port.MessageSource
	registry *infrastructure.Registry

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewDispatcher(source port.MessageSource, registry *infrastructure.Registry) *Dispatcher {
	return &Dispatcher{source: source, registry: registry}
}

// Start launches the consume loop. It returns immediately; consumption runs
// until Stop is called or ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.running = true

	go func(done chan struct{}) {
		defer close(done)
		if err := d.source.Consume(runCtx, d.handleMessage); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("dispatcher consume loop ended", slog.Any("error", err))
		}
	}(d.done)

	slog.Info("dispatcher started")
	return nil
}

// Stop cancels consumption and waits for the in-flight message, if any, to
// finish its delivery loop. ctx bounds the wait.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return ErrNotRunning
	}
	cancel, done := d.cancel, d.done
	d.running = false
	d.mu.Unlock()

	cancel()
	select {
	case <-done:
		slog.Info("dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports the current lifecycle state.
func (d *Dispatcher) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *Dispatcher) handleMessage(topic string, value []byte) {
	ev, err := domain.DecodeEvent(value)
	if err != nil {
		// Discard and keep consuming: one bad payload must not take the loop down.
		slog.Warn("discarding malformed event", slog.String("topic", topic), slog.Any("error", err))
		return
	}
	sent, dropped := d.dispatch(ev)
	slog.Info("event dispatched",
		slog.String("topic", topic),
		slog.String("eventType", string(ev.Type)),
		slog.String("subjectId", ev.SubjectID),
		slog.Int("sent", sent),
		slog.Int("dropped", dropped),
	)
}

// dispatch fans the event out to every live connection of its targets exactly
// once. A failed send marks that connection dead, removes it from the registry
// and moves on; it is never surfaced to the remaining recipients.
func (d *Dispatcher) dispatch(ev *domain.Event) (sent, dropped int) {
	conns := d.collect(ev)
	if len(conns) == 0 {
		return 0, 0
	}

	data, err := json.Marshal(ev.Notification())
	if err != nil {
		slog.Error("notification marshal failed", slog.String("eventType", string(ev.Type)), slog.Any("error", err))
		return 0, 0
	}

	for _, c := range conns {
		if err := c.Send(data); err != nil {
			dropped++
			d.registry.Unregister(c)
			_ = c.Close()
			slog.Warn("send failed, connection dropped",
				slog.String("userId", c.UserID()),
				slog.String("eventType", string(ev.Type)),
				slog.Any("error", err),
			)
			continue
		}
		sent++
	}
	return sent, dropped
}

// collect snapshots the recipient connections: the explicit targets first,
// then the audience, deduplicated so no connection receives the event twice
// in one dispatch.
func (d *Dispatcher) collect(ev *domain.Event) []*infrastructure.Client {
	seen := make(map[*infrastructure.Client]struct{})
	var conns []*infrastructure.Client
	add := func(list []*infrastructure.Client) {
		for _, c := range list {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			conns = append(conns, c)
		}
	}

	for _, userID := range ev.TargetUserIDs {
		add(d.registry.ConnectionsFor(userID))
	}
	if role := ev.Audience.Role(); role != "" {
		add(d.registry.ConnectionsForRole(role))
	}
	return conns
}
