package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Compile-time check to ensure RedisMirror implements Sink
var _ Sink = (*RedisMirror)(nil)

// RedisMirror republishes events on a redis pub/sub channel and keeps the
// latest one under "<channel>:last" for consumers that poll.
type RedisMirror struct {
	client  *redis.Client
	channel string
}

func NewRedisMirror(client *redis.Client, channel string) *RedisMirror {
	return &RedisMirror{
		client:  client,
		channel: channel,
	}
}

func (m *RedisMirror) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pipe := m.client.Pipeline()
	pipe.Publish(ctx, m.channel, payload)
	pipe.Set(ctx, m.LastKey(), payload, 0)
	_, err = pipe.Exec(ctx)
	return err
}

// LastKey is where the most recent event is stored
func (m *RedisMirror) LastKey() string {
	return m.channel + ":last"
}

func (m *RedisMirror) Close() error {
	return m.client.Close()
}
