package stamp

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMillis(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 7, 8, 9, 42_500_000, time.UTC)
	assert.Equal(t, "20240305070809042", Millis(ts))

	local := time.Date(2024, time.March, 5, 9, 8, 9, 0, time.FixedZone("X", 2*3600))
	assert.Equal(t, "20240305070809000", Millis(local))
}

func TestSequence_FrozenClockStillIncreases(t *testing.T) {
	frozen := time.Date(2024, time.March, 5, 7, 8, 9, 0, time.UTC)
	seq := NewSequence(func() time.Time { return frozen })

	first := seq.Next()
	second := seq.Next()
	third := seq.Next()

	assert.Equal(t, frozen, first)
	assert.Equal(t, frozen.Add(time.Millisecond), second)
	assert.Equal(t, frozen.Add(2*time.Millisecond), third)
}

func TestSequence_ConcurrentCallsAreUnique(t *testing.T) {
	seq := NewSequence(nil)

	const n = 200
	out := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out <- Millis(seq.Next())
		}()
	}
	wg.Wait()
	close(out)

	seen := make(map[string]bool, n)
	for s := range out {
		require.False(t, seen[s], "duplicate stamp %s", s)
		seen[s] = true
	}
	assert.Len(t, seen, n)
}
