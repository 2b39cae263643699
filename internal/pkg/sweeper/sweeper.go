// Package sweeper drives the liveness probe/collect/commit cycle.
//
// There is no reliable transport-level signal that a browser tab vanished,
// so liveness is established by round-trip confirmation: on each cycle the
// sweeper clears the provisional user set, probes every connection, waits a
// fixed grace period, then commits whatever responded as the new
// authoritative set and broadcasts it. A connection that misses the grace
// period is dropped from the list regardless of whether its reply arrives
// later.
package sweeper

import (
	"context"
	"time"

	"github.com/sb810/pixel-paint-challenge/internal/pkg/protocol"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/registry"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Default cycle timings.
const (
	DefaultInterval = 10 * time.Second
	DefaultGrace    = 1 * time.Second
)

// Broadcaster fans a message out to every open connection.
type Broadcaster interface {
	Broadcast(msg protocol.Message)
}

// Sweeper alternates between Idle and Sweeping on a fixed timer, and can be
// triggered out of band when a connection closes.
type Sweeper struct {
	registry *registry.Registry
	hub      Broadcaster
	interval time.Duration
	grace    time.Duration
	trigger  chan struct{}
}

// Cfg configures a Sweeper.
type Cfg func(*Sweeper) error

// WithRegistry sets the user registry to sweep.
func WithRegistry(r *registry.Registry) Cfg {
	return func(s *Sweeper) error {
		s.registry = r
		return nil
	}
}

// WithBroadcaster sets the fan-out used for probes and user-list updates.
func WithBroadcaster(b Broadcaster) Cfg {
	return func(s *Sweeper) error {
		s.hub = b
		return nil
	}
}

// WithInterval sets the period between sweep cycles.
func WithInterval(d time.Duration) Cfg {
	return func(s *Sweeper) error {
		s.interval = d
		return nil
	}
}

// WithGrace sets the reply window of a cycle.
func WithGrace(d time.Duration) Cfg {
	return func(s *Sweeper) error {
		s.grace = d
		return nil
	}
}

// NewSweeper creates a new Sweeper with the given configuration.
func NewSweeper(cfgs ...Cfg) (*Sweeper, error) {
	s := &Sweeper{
		interval: DefaultInterval,
		grace:    DefaultGrace,
		trigger:  make(chan struct{}, 1),
	}
	for _, cfg := range cfgs {
		if err := cfg(s); err != nil {
			return nil, errors.Wrap(err, "apply Sweeper cfg failed")
		}
	}
	if s.registry == nil {
		return nil, errors.New("sweeper requires a registry")
	}
	if s.hub == nil {
		return nil, errors.New("sweeper requires a broadcaster")
	}
	return s, nil
}

// Trigger requests an immediate cycle. A request made while one is already
// pending keeps a single pending cycle.
func (s *Sweeper) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run cycles until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.cycle(ctx)
		case <-s.trigger:
			s.cycle(ctx)
		}
	}
}

// cycle runs one Idle -> Sweeping -> Idle transition synchronously.
func (s *Sweeper) cycle(ctx context.Context) {
	s.registry.BeginSweep()
	s.hub.Broadcast(protocol.LivenessProbeMessage())
	select {
	case <-ctx.Done():
		return
	case <-time.After(s.grace):
	}
	users := s.registry.CommitSweep()
	logger.WithField("users", len(users)).Debug("sweep committed")
	s.hub.Broadcast(protocol.UserListMessage(users))
}
