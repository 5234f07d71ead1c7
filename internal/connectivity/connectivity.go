// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package connectivity tracks whether the storage swarm is reachable and
// notifies subscribers about changes.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/session-foundation/config-sync/internal/logger"
)

//go:generate mockgen -source=connectivity.go -destination=../mock/connectivity_mock.go -package=mock

// State is the reachability of the swarm.
type State int

const (
	Unknown State = iota
	Online
	Offline
)

func (s State) String() string {
	switch s {
	case Online:
		return "online"
	case Offline:
		return "offline"
	}
	return "unknown"
}

// Observer reports the current connectivity state and its changes.
type Observer interface {
	State() State

	// Subscribe returns a channel receiving every state change until ctx is
	// done, after which the channel is closed. Slow readers only see the
	// latest state.
	Subscribe(ctx context.Context) <-chan State
}

// Prober checks the swarm once.
type Prober interface {
	Ping(ctx context.Context) error
}

// Monitor is an [Observer] fed by periodic probes and manual updates.
type Monitor struct {
	prober   Prober
	interval time.Duration
	clock    clockwork.Clock
	logger   *logger.Logger

	mu    sync.Mutex
	state State
	subs  map[chan State]struct{}
}

// NewMonitor creates a monitor probing every interval. A nil prober makes
// the monitor purely manual.
func NewMonitor(prober Prober, interval time.Duration, clock clockwork.Clock, log *logger.Logger) *Monitor {
	return &Monitor{
		prober:   prober,
		interval: interval,
		clock:    clock,
		logger:   log,
		subs:     make(map[chan State]struct{}),
	}
}

// State implements [Observer].
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe implements [Observer].
func (m *Monitor) Subscribe(ctx context.Context) <-chan State {
	ch := make(chan State, 1)
	m.mu.Lock()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, ch)
		close(ch)
		m.mu.Unlock()
	}()
	return ch
}

// SetState records s and notifies subscribers if it changed.
func (m *Monitor) SetState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == s {
		return
	}

	m.logger.Info().
		Str("func", "*Monitor.SetState").
		Stringer("from", m.state).
		Stringer("to", s).
		Msg("connectivity changed")

	m.state = s
	for ch := range m.subs {
		// keep only the latest state for slow readers
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

// Run probes the swarm until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	if m.prober == nil {
		<-ctx.Done()
		return nil
	}

	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.probe(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	if err := m.prober.Ping(probeCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Debug().Err(err).Str("func", "*Monitor.probe").Msg("swarm probe failed")
		m.SetState(Offline)
		return
	}
	m.SetState(Online)
}

// WaitOnline blocks until obs reports [Online] or ctx is done.
func WaitOnline(ctx context.Context, obs Observer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := obs.Subscribe(ctx)
	if obs.State() == Online {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-ch:
			if !ok {
				return ctx.Err()
			}
			if s == Online {
				return nil
			}
		}
	}
}
