package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestBreaker_TripCooldownProbe(t *testing.T) {
	t.Parallel()

	var moves []string
	b := NewBreaker("football-data", BreakerConfig{Enabled: true, Failures: 2, Cooldown: 5 * time.Second}, func(tr Transition) {
		moves = append(moves, tr.Breaker+":"+string(tr.From)+"->"+string(tr.To))
	})
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	boom := errors.New("503")
	fail := func() error { return boom }
	ok := func() error { return nil }

	if err := b.Do(fail, nil); !errors.Is(err, boom) {
		t.Fatalf("expected call error, got %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("expected closed after one failure, got %s", b.State())
	}
	_ = b.Do(fail, nil)
	if b.State() != StateOpen {
		t.Fatalf("expected open after two failures, got %s", b.State())
	}

	called := false
	if err := b.Do(func() error { called = true; return nil }, nil); !errors.Is(err, ErrOpen) || called {
		t.Fatalf("expected rejection without call, err=%v called=%t", err, called)
	}

	now = now.Add(6 * time.Second)
	if err := b.Do(ok, nil); err != nil {
		t.Fatalf("expected probe to pass, got %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("expected closed after probe, got %s", b.State())
	}

	want := []string{
		"football-data:closed->open",
		"football-data:open->half_open",
		"football-data:half_open->closed",
	}
	if len(moves) != len(want) {
		t.Fatalf("unexpected transitions: %v", moves)
	}
	for i := range want {
		if moves[i] != want[i] {
			t.Fatalf("transition %d: got %s want %s", i, moves[i], want[i])
		}
	}
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	t.Parallel()

	b := NewBreaker("api-football", BreakerConfig{Enabled: true, Failures: 1, Cooldown: time.Second}, nil)
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	_ = b.Do(func() error { return errors.New("timeout") }, nil)
	now = now.Add(2 * time.Second)
	_ = b.Do(func() error { return errors.New("timeout") }, nil)
	if b.State() != StateOpen {
		t.Fatalf("expected reopened breaker, got %s", b.State())
	}
	if err := b.Do(func() error { return nil }, nil); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected fresh cooldown, got %v", err)
	}
}

func TestBreaker_UncountedErrorsKeepItClosed(t *testing.T) {
	t.Parallel()

	b := NewBreaker("odds-api", BreakerConfig{Enabled: true, Failures: 1}, nil)
	notFound := errors.New("not found")
	if err := b.Do(func() error { return notFound }, func(error) bool { return false }); !errors.Is(err, notFound) {
		t.Fatalf("expected error passthrough, got %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("expected closed, got %s", b.State())
	}
}

func TestBreaker_DisabledAdmitsEverything(t *testing.T) {
	t.Parallel()

	b := NewBreaker("csv-archive", BreakerConfig{Failures: 1}, nil)
	for i := 0; i < 3; i++ {
		_ = b.Do(func() error { return errors.New("down") }, nil)
	}
	if b.State() != StateClosed {
		t.Fatalf("disabled breaker must stay closed, got %s", b.State())
	}
}

func TestBreakerConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	got := BreakerConfig{Enabled: true}.WithDefaults()
	if got.Failures != defaultFailures || got.Cooldown != defaultCooldown || got.Probes != defaultProbes {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}
