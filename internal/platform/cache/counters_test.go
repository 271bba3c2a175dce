package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCounters_AddKeepsFirstLapse(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	counters := NewCounters().WithClock(func() time.Time { return now })
	midnight := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	key := "quota:fd-1:2026-03-01"

	require.EqualValues(t, 1, counters.Add(key, 1, midnight))
	require.EqualValues(t, 3, counters.Add(key, 2, midnight.Add(time.Hour)))

	now = midnight
	require.Zero(t, counters.Value(key))
	require.EqualValues(t, 1, counters.Add(key, 1, midnight.Add(24*time.Hour)))
}

func TestCounters_ZeroLapseNeverLapses(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	counters := NewCounters().WithClock(func() time.Time { return now })
	counters.Put("k", 7, time.Time{})

	now = now.Add(365 * 24 * time.Hour)
	require.EqualValues(t, 7, counters.Value("k"))
}

func TestCounters_Sweep(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	counters := NewCounters().WithClock(func() time.Time { return now })
	counters.Put("old", 3, now.Add(time.Minute))
	counters.Put("kept", 4, time.Time{})

	now = now.Add(time.Hour)
	require.Equal(t, 1, counters.Sweep())
	require.EqualValues(t, 4, counters.Value("kept"))
}

func TestCounters_ConcurrentAdd(t *testing.T) {
	t.Parallel()

	counters := NewCounters()
	lapses := time.Now().Add(time.Hour)

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			counters.Add("counter", 1, lapses)
		}()
	}
	wg.Wait()

	require.EqualValues(t, workers, counters.Value("counter"))
}
