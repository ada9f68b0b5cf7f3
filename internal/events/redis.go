package events

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"docstore/internal/logger"
)

// DefaultChannel is the Redis pub/sub channel carrying document events.
const DefaultChannel = "docstore:events"

// RedisBus publishes and receives events over Redis pub/sub.
type RedisBus struct {
	rdb     goredis.UniversalClient
	channel string
	log     *logger.Logger
}

func NewRedisBus(rdb goredis.UniversalClient, channel string, log *logger.Logger) *RedisBus {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBus{rdb: rdb, channel: channel, log: log.Named("events")}
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes to the channel and calls onEvent for every
// message until ctx is cancelled. It returns once the subscription is live.
func (b *RedisBus) StartForwarder(ctx context.Context, onEvent func(Event)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				ev, err := decode(m.Payload)
				if err != nil {
					b.log.Warnw("bad_event_payload", "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()

	return nil
}

func decode(payload string) (Event, error) {
	var ev Event
	err := json.Unmarshal([]byte(payload), &ev)
	return ev, err
}
