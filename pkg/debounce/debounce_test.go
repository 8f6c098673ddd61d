package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commitLog struct {
	mu     sync.Mutex
	values []string
	at     []time.Time
}

func (c *commitLog) add(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = append(c.values, v)
	c.at = append(c.at, time.Now())
}

func (c *commitLog) snapshot() ([]string, []time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.values...), append([]time.Time(nil), c.at...)
}

func TestDebouncer_OnlyLastValueCommitted(t *testing.T) {
	const delay = 60 * time.Millisecond
	log := &commitLog{}
	d := New(delay, log.add)

	var lastSet time.Time
	for i, v := range []string{"U", "UB", "UBS", "UBS C", "UBS Centro"} {
		if i > 0 {
			time.Sleep(delay / 6)
		}
		lastSet = time.Now()
		d.Set(v)
	}

	require.Eventually(t, func() bool {
		values, _ := log.snapshot()
		return len(values) == 1
	}, time.Second, 5*time.Millisecond)

	// give any stray timer a chance to fire
	time.Sleep(2 * delay)

	values, at := log.snapshot()
	assert.Equal(t, []string{"UBS Centro"}, values)
	assert.GreaterOrEqual(t, at[0].Sub(lastSet), delay)
	assert.Equal(t, "UBS Centro", d.Value())
	assert.False(t, d.Pending())
}

func TestDebouncer_SeparateBurstsCommitSeparately(t *testing.T) {
	const delay = 30 * time.Millisecond
	log := &commitLog{}
	d := New(delay, log.add)

	d.Set("a")
	require.Eventually(t, func() bool {
		values, _ := log.snapshot()
		return len(values) == 1
	}, time.Second, 5*time.Millisecond)

	d.Set("b")
	require.Eventually(t, func() bool {
		values, _ := log.snapshot()
		return len(values) == 2
	}, time.Second, 5*time.Millisecond)

	values, _ := log.snapshot()
	assert.Equal(t, []string{"a", "b"}, values)
}

func TestDebouncer_FlushAndStop(t *testing.T) {
	log := &commitLog{}
	d := New(time.Hour, log.add)

	assert.False(t, d.Flush())

	d.Set("x")
	assert.True(t, d.Pending())
	assert.True(t, d.Flush())
	values, _ := log.snapshot()
	assert.Equal(t, []string{"x"}, values)

	d.Set("y")
	d.Stop()
	assert.False(t, d.Pending())
	assert.False(t, d.Flush())
	values, _ = log.snapshot()
	assert.Equal(t, []string{"x"}, values)
	assert.Equal(t, "x", d.Value())
}
