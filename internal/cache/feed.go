package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel store changes are announced on.
const DefaultChannel = "tourism:changes"

// Broadcaster wakes local observers. *storage.Hub satisfies it.
type Broadcaster interface {
	Broadcast()
}

type changeMessage struct {
	Origin string    `json:"origin"`
	At     time.Time `json:"at"`
}

// Feed relays store changes between processes that share one database.
type Feed struct {
	client  *redis.Client
	hub     Broadcaster
	origin  string
	channel string
	log     *slog.Logger
}

// NewFeed constructs a Feed with a fresh origin id on DefaultChannel.
func NewFeed(client *redis.Client, hub Broadcaster, log *slog.Logger) *Feed {
	return NewFeedOnChannel(client, hub, DefaultChannel, log)
}

// NewFeedOnChannel constructs a Feed on a custom channel.
func NewFeedOnChannel(client *redis.Client, hub Broadcaster, channel string, log *slog.Logger) *Feed {
	if log == nil {
		log = slog.Default()
	}
	return &Feed{
		client:  client,
		hub:     hub,
		origin:  uuid.NewString(),
		channel: channel,
		log:     log,
	}
}

// Origin is the id this process tags its own messages with.
func (f *Feed) Origin() string { return f.origin }

// Publish announces a local write.
func (f *Feed) Publish(ctx context.Context) error {
	b, err := json.Marshal(changeMessage{Origin: f.origin, At: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshaling change message: %w", err)
	}

	if err := f.client.Publish(ctx, f.channel, b).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", f.channel, err)
	}
	return nil
}

// Run relays changes announced by other processes into the local hub until ctx
// is done. Messages carrying this feed's origin are skipped.
func (f *Feed) Run(ctx context.Context) error {
	sub := f.client.Subscribe(ctx, f.channel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribing to %s: %w", f.channel, err)
	}
	f.log.Info("change feed subscribed", "channel", f.channel, "origin", f.origin)

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("change feed subscription closed")
			}
			f.handle(msg.Payload)
		}
	}
}

func (f *Feed) handle(payload string) {
	var m changeMessage
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		f.log.Warn("ignoring malformed change message", "channel", f.channel, "err", err)
		return
	}
	if m.Origin == f.origin {
		return
	}
	f.log.Debug("relaying remote change", "origin", m.Origin)
	f.hub.Broadcast()
}
