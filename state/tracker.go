package state

import (
	"context"
	"sync"
	"time"

	"github.com/alittlebrighter/blowcontrol/models"
	"github.com/alittlebrighter/blowcontrol/util"
)

// Tracker keeps the latest device state built from the status stream.
// Handle is safe to call from MQTT callback goroutines.
type Tracker struct {
	mu      sync.Mutex
	snap    models.Snapshot
	ready   bool
	waiters []chan struct{}
	now     func() time.Time

	History *util.RingBuffer[models.StatusMessage]
}

// NewTracker remembers the last historySize messages.
func NewTracker(historySize uint) *Tracker {
	return &Tracker{
		now:     time.Now,
		History: util.NewRingBuffer[models.StatusMessage](historySize),
	}
}

// Handle folds a status message into the tracked state. STATE-CHANGE
// messages only apply once a CURRENT-STATE has been seen.
func (t *Tracker) Handle(msg models.StatusMessage) {
	t.History.Add(msg)

	t.mu.Lock()
	defer t.mu.Unlock()

	if msg.Msg == models.MsgStateChange && !t.ready {
		return
	}
	if t.snap.Apply(msg, t.now()) && !t.ready && msg.Msg == models.MsgCurrentState {
		t.ready = true
		for _, w := range t.waiters {
			close(w)
		}
		t.waiters = nil
	}
}

// Snapshot returns a copy of the tracked state and whether a full state has
// been received.
func (t *Tracker) Snapshot() (models.Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap.Copy(), t.ready
}

// LastUpdate is the time of the last message that changed the snapshot.
func (t *Tracker) LastUpdate() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap.Updated
}

// WaitForState blocks until the first CURRENT-STATE arrives or ctx is done.
func (t *Tracker) WaitForState(ctx context.Context) (models.Snapshot, error) {
	t.mu.Lock()
	if t.ready {
		snap := t.snap.Copy()
		t.mu.Unlock()
		return snap, nil
	}
	ch := make(chan struct{})
	t.waiters = append(t.waiters, ch)
	t.mu.Unlock()

	select {
	case <-ch:
		snap, _ := t.Snapshot()
		return snap, nil
	case <-ctx.Done():
		return models.Snapshot{}, ctx.Err()
	}
}
