package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwalitptl/ubs-console/pkg/messaging"
)

const invalidationChannel = "ubs-console:session:invalidated"

// Invalidated announces that a session is gone.
type Invalidated struct {
	SessionID string    `json:"session_id"`
	Reason    string    `json:"reason"`
	Origin    string    `json:"origin"`
	At        time.Time `json:"at"`
}

// Bus carries invalidation events between console replicas.
type Bus interface {
	Publish(ctx context.Context, ev Invalidated) error
	Subscribe(ctx context.Context, fn func(Invalidated)) error
}

type brokerBus struct {
	broker messaging.MessageBroker
}

// NewBus publishes invalidations through broker.
func NewBus(broker messaging.Broker) Bus {
	return &brokerBus{broker: messaging.NewBrokerAdapter(broker)}
}

// NewLocalBus delivers invalidations inside this process only.
func NewLocalBus() Bus {
	return NewBus(messaging.NewMemoryBroker())
}

func (b *brokerBus) Publish(ctx context.Context, ev Invalidated) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.broker.Publish(ctx, invalidationChannel, payload)
}

func (b *brokerBus) Subscribe(ctx context.Context, fn func(Invalidated)) error {
	return b.broker.Subscribe(ctx, invalidationChannel, func(payload []byte) error {
		var ev Invalidated
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("decode invalidation: %w", err)
		}
		fn(ev)
		return nil
	})
}
