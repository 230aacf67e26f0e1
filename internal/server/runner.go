package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sanonone/beams/pkg/frame"
	"github.com/sanonone/beams/pkg/metrics"
	"github.com/sanonone/beams/pkg/sim"
)

// subscriberBuffer is the number of frames a slow stream client may lag
// behind before frames are dropped for it.
const subscriberBuffer = 4

// Runner drives a Simulation at a fixed rate and serialises every access to
// it. The simulation itself is single-threaded; all readers go through the
// runner's lock.
type Runner struct {
	mu  sync.RWMutex
	sim *sim.Simulation

	interval time.Duration

	subsMu sync.Mutex
	subs   map[chan []byte]struct{}
}

// NewRunner wraps s, ticking it tickRate times per second once Run is called.
func NewRunner(s *sim.Simulation, tickRate int) *Runner {
	return &Runner{
		sim:      s,
		interval: time.Second / time.Duration(tickRate),
		subs:     make(map[chan []byte]struct{}),
	}
}

// Run ticks the simulation until ctx is cancelled. It always returns nil on
// cancellation so it can live in an errgroup next to the HTTP server.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("simulation loop started", "interval", r.interval.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation loop stopped", "ticks", r.Stats().Tick)
			r.closeSubscribers()
			return nil
		case <-ticker.C:
			r.Step()
		}
	}
}

// Step runs one tick, records metrics and pushes the packed snapshot (see
// frame.Encode) to every stream subscriber.
func (r *Runner) Step() sim.TickReport {
	start := time.Now()

	r.mu.Lock()
	report := r.sim.Tick()
	modes := r.sim.ModeCounts()
	var packed []byte
	streaming := r.subscriberCount() > 0
	if streaming {
		packed = frame.Encode(r.sim.Frame())
	}
	r.mu.Unlock()

	metrics.TickDuration.Observe(time.Since(start).Seconds())
	metrics.TicksTotal.Inc()
	metrics.EdgeBreaksTotal.Add(float64(len(report.Breaks)))
	for _, h := range report.Hops {
		if h.Recorded {
			metrics.HopsTotal.WithLabelValues("true").Inc()
		} else {
			metrics.HopsTotal.WithLabelValues("false").Inc()
		}
	}
	for _, d := range report.DeadEnds {
		metrics.DeadEndsTotal.WithLabelValues(string(d.Mode)).Inc()
	}
	metrics.Edges.Set(float64(report.Edges))
	for kind, n := range modes {
		metrics.EntitiesByMode.WithLabelValues(string(kind)).Set(float64(n))
	}

	if streaming {
		r.broadcast(packed)
	}
	return report
}

// Frame returns a snapshot of the current state.
func (r *Runner) Frame() sim.Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sim.Frame()
}

// Stats returns the current summary.
func (r *Runner) Stats() sim.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sim.Stats()
}

// Node returns details about one node.
func (r *Runner) Node(i int) (sim.NodeInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sim.Node(i)
}

// Angles returns the current orientation.
func (r *Runner) Angles() sim.Angles {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sim.Angles()
}

// UpdateOrientation sets roll and yaw; a nil angle keeps its current value.
// The merge happens under the write lock so concurrent partial updates do
// not overwrite each other. Changes take effect on the next tick.
func (r *Runner) UpdateOrientation(roll, yaw *float64) sim.Angles {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.sim.Angles()
	if roll != nil {
		a.Roll = *roll
	}
	if yaw != nil {
		a.Yaw = *yaw
	}
	r.sim.SetOrientation(a.Roll, a.Yaw)
	return r.sim.Angles()
}

// Edges returns every edge with its wear.
func (r *Runner) Edges() []sim.EdgeView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sim.Edges()
}

// Subscribe registers a stream client. Each tick's packed snapshot is sent on
// the returned channel; frames are dropped while the client lags behind.
// The cancel function unregisters the client and closes the channel.
func (r *Runner) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)

	r.subsMu.Lock()
	r.subs[ch] = struct{}{}
	metrics.StreamClients.Set(float64(len(r.subs)))
	r.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.subsMu.Lock()
			defer r.subsMu.Unlock()
			if _, ok := r.subs[ch]; ok {
				delete(r.subs, ch)
				close(ch)
			}
			metrics.StreamClients.Set(float64(len(r.subs)))
		})
	}
}

func (r *Runner) subscriberCount() int {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	return len(r.subs)
}

func (r *Runner) broadcast(msg []byte) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	for ch := range r.subs {
		select {
		case ch <- msg:
		default:
			slog.Debug("stream client lagging, frame dropped")
		}
	}
}

func (r *Runner) closeSubscribers() {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	for ch := range r.subs {
		delete(r.subs, ch)
		close(ch)
	}
	metrics.StreamClients.Set(0)
}
