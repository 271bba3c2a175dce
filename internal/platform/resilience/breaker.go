// Package resilience guards provider calls with a consecutive-failure breaker.
package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrOpen = errors.New("provider breaker is open")

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// BreakerConfig tunes a breaker. Zero values take the defaults below.
type BreakerConfig struct {
	Enabled  bool
	Failures int
	Cooldown time.Duration
	Probes   int
}

const (
	defaultFailures = 5
	defaultCooldown = 30 * time.Second
	defaultProbes   = 1
)

func (c BreakerConfig) WithDefaults() BreakerConfig {
	if c.Failures <= 0 {
		c.Failures = defaultFailures
	}
	if c.Cooldown <= 0 {
		c.Cooldown = defaultCooldown
	}
	if c.Probes <= 0 {
		c.Probes = defaultProbes
	}
	return c
}

// Transition is reported to the observer after the lock is released.
type Transition struct {
	Breaker string
	From    State
	To      State
}

// Breaker trips after cfg.Failures consecutive failures, rejects calls for
// cfg.Cooldown, then admits up to cfg.Probes trial calls. A failed probe
// reopens it; the last successful probe closes it.
type Breaker struct {
	name     string
	cfg      BreakerConfig
	observe  func(Transition)
	now      func() time.Time
	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	inFlight int
	passed   int
}

// NewBreaker returns a closed breaker. A disabled config yields a breaker that
// admits every call. observe may be nil.
func NewBreaker(name string, cfg BreakerConfig, observe func(Transition)) *Breaker {
	return &Breaker{
		name:    name,
		cfg:     cfg.WithDefaults(),
		observe: observe,
		now:     time.Now,
		state:   StateClosed,
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Do runs fn when admitted. countable decides which errors trip the breaker;
// nil counts every error.
func (b *Breaker) Do(fn func() error, countable func(error) bool) error {
	if !b.cfg.Enabled {
		return fn()
	}
	if err := b.admit(); err != nil {
		return err
	}
	err := fn()
	b.record(err != nil && (countable == nil || countable(err)))
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	var moved *Transition
	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			b.mu.Unlock()
			return ErrOpen
		}
		moved = b.move(StateHalfOpen)
		b.inFlight = 1
	case StateHalfOpen:
		if b.inFlight >= b.cfg.Probes {
			b.mu.Unlock()
			return ErrOpen
		}
		b.inFlight++
	}
	b.mu.Unlock()
	b.report(moved)
	return nil
}

func (b *Breaker) record(failed bool) {
	b.mu.Lock()
	var moved *Transition
	switch b.state {
	case StateClosed:
		if !failed {
			b.failures = 0
			break
		}
		b.failures++
		if b.failures >= b.cfg.Failures {
			moved = b.move(StateOpen)
		}
	case StateHalfOpen:
		if b.inFlight > 0 {
			b.inFlight--
		}
		if failed {
			moved = b.move(StateOpen)
			break
		}
		b.passed++
		if b.passed >= b.cfg.Probes {
			moved = b.move(StateClosed)
		}
	}
	b.mu.Unlock()
	b.report(moved)
}

// move must be called with mu held.
func (b *Breaker) move(to State) *Transition {
	from := b.state
	b.state = to
	b.failures = 0
	b.passed = 0
	b.inFlight = 0
	if to == StateOpen {
		b.openedAt = b.now()
	}
	return &Transition{Breaker: b.name, From: from, To: to}
}

func (b *Breaker) report(t *Transition) {
	if t != nil && b.observe != nil {
		b.observe(*t)
	}
}
