// internal/room/scheduler.go
package room

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTickInterval is the show clock resolution.
const DefaultTickInterval = time.Second

// Scheduler drives every room's timer from a single global clock.
type Scheduler struct {
	Store       *RoomStore
	Broadcaster Broadcaster
	Logger      *logrus.Logger
	Interval    time.Duration

	// IdleTTL enables expiry of empty rooms when positive. The store is swept
	// every SweepEvery ticks.
	IdleTTL    time.Duration
	SweepEvery int
	// OnExpire is called for each room removed by a sweep.
	OnExpire func(id string)

	ticks int
}

// NewScheduler returns a scheduler ticking once per DefaultTickInterval.
func NewScheduler(store *RoomStore, b Broadcaster, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		Store:       store,
		Broadcaster: b,
		Logger:      logger,
		Interval:    DefaultTickInterval,
		SweepEvery:  60,
	}
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Logger.Infof("Scheduler: ticking every %s", interval)
	for {
		select {
		case <-ctx.Done():
			s.Logger.Infof("Scheduler: stopping: %v", ctx.Err())
			return
		case <-ticker.C:
			s.Step()
		}
	}
}

// Step performs one tick over the rooms that exist when it starts and returns
// how many of them were broadcast.
func (s *Scheduler) Step() int {
	broadcast := 0
	for _, r := range s.Store.Rooms() {
		if s.tickRoom(r) {
			broadcast++
		}
	}

	s.ticks++
	if s.IdleTTL > 0 && s.SweepEvery > 0 && s.ticks%s.SweepEvery == 0 {
		s.sweep()
	}
	return broadcast
}

// tickRoom isolates a single room so that a fault cannot stop the tick for
// the others.
func (s *Scheduler) tickRoom(r *Room) (sent bool) {
	defer func() {
		if rec := recover(); rec != nil {
			s.Logger.WithFields(logrus.Fields{
				"room":  r.ID,
				"panic": rec,
			}).Error("Scheduler: room tick failed")
			sent = false
		}
	}()

	state, changed := r.Tick()
	if !changed {
		return false
	}
	s.Broadcaster.BroadcastState(r.ID, state)
	return true
}

func (s *Scheduler) sweep() {
	for _, id := range s.Store.Sweep(s.IdleTTL) {
		s.Logger.Infof("Scheduler: expired idle room %q", id)
		if s.OnExpire != nil {
			s.OnExpire(id)
		}
	}
}
