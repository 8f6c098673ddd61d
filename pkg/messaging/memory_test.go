package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBrokerAdapter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mb := NewBrokerAdapter(NewMemoryBroker())
	defer mb.Close()

	got := make(chan map[string]string, 1)
	require.NoError(t, mb.Subscribe(ctx, "sessions", func(b []byte) error {
		var m map[string]string
		if err := json.Unmarshal(b, &m); err != nil {
			return err
		}
		got <- m
		return nil
	}))

	require.NoError(t, mb.Publish(ctx, "sessions", []byte(`{"session_id":"abc"}`)))

	select {
	case m := <-got:
		assert.Equal(t, "abc", m["session_id"])
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}

	assert.Error(t, mb.Publish(ctx, "sessions", []byte("not json")))
}

func TestMemoryBrokerClosed(t *testing.T) {
	b := NewMemoryBroker()
	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Publish(context.Background(), "x", 1), ErrBrokerClosed)
	_, err := b.Subscribe(context.Background(), "x")
	assert.ErrorIs(t, err, ErrBrokerClosed)
}

func TestSubscriptionSurvivesPanickingHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mb := NewBrokerAdapter(NewMemoryBroker())
	defer mb.Close()

	got := make(chan string, 1)
	require.NoError(t, mb.Subscribe(ctx, "sessions", func(b []byte) error {
		if string(b) == `"boom"` {
			panic("bad payload")
		}
		got <- string(b)
		return nil
	}))

	require.NoError(t, mb.Publish(ctx, "sessions", []byte(`"boom"`)))
	require.NoError(t, mb.Publish(ctx, "sessions", []byte(`"ok"`)))

	select {
	case m := <-got:
		assert.Equal(t, `"ok"`, m)
	case <-time.After(time.Second):
		t.Fatal("subscription stopped after a panic")
	}
}
