// Package bridge forwards fan status traffic to NATS and InfluxDB and lets
// NATS clients send commands back to the fan.
package bridge

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alittlebrighter/blowcontrol/controller"
	"github.com/alittlebrighter/blowcontrol/logger"
	"github.com/alittlebrighter/blowcontrol/models"
	"github.com/alittlebrighter/blowcontrol/state"
)

const queueSize = 64

// Sink receives every status message together with the merged state.
// stateful is true when msg changed the device state.
type Sink interface {
	Name() string
	Write(msg models.StatusMessage, snap models.Snapshot, stateful bool) error
	Close()
}

// Bridge ties a device connection to its sinks.
type Bridge struct {
	PollInterval   time.Duration
	CommandTimeout time.Duration
	// InitialDelay gives the status subscription time to settle before
	// the first state request.
	InitialDelay time.Duration

	control  controller.Controller
	tracker  *state.Tracker
	sinks    []Sink
	nats     *NATSSink
	dispatch *Dispatcher
	log      *logger.Logger
}

func New(c controller.Controller, tracker *state.Tracker, log *logger.Logger) *Bridge {
	return &Bridge{
		PollInterval:   5 * time.Minute,
		CommandTimeout: 15 * time.Second,
		InitialDelay:   2 * time.Second,
		control:        c,
		tracker:        tracker,
		log:            log,
	}
}

func (b *Bridge) AddSink(s Sink) {
	b.sinks = append(b.sinks, s)
}

// ServeCommands answers remote commands through n with d. n is also
// expected to be one of the sinks.
func (b *Bridge) ServeCommands(n *NATSSink, d *Dispatcher) {
	b.nats = n
	b.dispatch = d
}

// Run forwards status messages and polls the device until ctx is done or
// one of its loops fails. Sinks are closed on return.
func (b *Bridge) Run(ctx context.Context) error {
	defer func() {
		for _, s := range b.sinks {
			s.Close()
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	queue := make(chan models.StatusMessage, queueSize)

	g.Go(func() error {
		return b.control.Listen(ctx, func(msg models.StatusMessage) {
			select {
			case queue <- msg:
			default:
				b.log.Warnw("bridge queue full, dropping message", "msg", msg.Msg)
			}
		})
	})
	g.Go(func() error {
		for {
			select {
			case msg := <-queue:
				b.forward(msg)
			case <-ctx.Done():
				return nil
			}
		}
	})
	g.Go(func() error {
		return b.poll(ctx)
	})
	if b.nats != nil && b.dispatch != nil {
		g.Go(func() error {
			return b.nats.Serve(ctx, b.dispatch, b.CommandTimeout)
		})
	}

	b.log.Infow("bridge running", "sinks", len(b.sinks), "poll", b.PollInterval)
	return g.Wait()
}

func (b *Bridge) forward(msg models.StatusMessage) {
	stateful := msg.Msg == models.MsgCurrentState || msg.Msg == models.MsgStateChange || msg.Msg == models.MsgLocation
	b.tracker.Handle(msg)
	snap, ready := b.tracker.Snapshot()
	if !ready {
		stateful = false
	}

	for _, s := range b.sinks {
		if err := s.Write(msg, snap, stateful); err != nil {
			b.log.Errorw("sink write failed", "sink", s.Name(), "msg", msg.Msg, "err", err)
		}
	}
}

// poll asks for the full state after InitialDelay and then every PollInterval so
// the sinks see the device even when nothing changes.
func (b *Bridge) poll(ctx context.Context) error {
	select {
	case <-time.After(b.InitialDelay):
	case <-ctx.Done():
		return nil
	}
	b.request(ctx)
	if b.PollInterval <= 0 {
		return nil
	}

	ticker := time.NewTicker(b.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if last := b.tracker.LastUpdate(); !last.IsZero() && time.Since(last) < b.PollInterval/2 {
				continue
			}
			b.request(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

func (b *Bridge) request(ctx context.Context) {
	if err := b.control.Send(ctx, models.MsgRequestCurrentState, nil); err != nil && ctx.Err() == nil {
		b.log.Warnw("could not request device state", "err", err)
	}
}
