package realtime

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// envelope carries an encoded frame between processes.
type envelope struct {
	BoardID string `json:"board_id"`
	Frame   string `json:"frame"`
}

// RedisBroadcaster publishes through a Redis channel so that every process
// subscribed to it delivers to its own connections. Run must be running for
// frames to reach local subscribers.
type RedisBroadcaster struct {
	client  *redis.Client
	channel string
	local   *Broadcaster
	log     logrus.FieldLogger
}

var _ Publisher = (*RedisBroadcaster)(nil)

func NewRedisBroadcaster(client *redis.Client, channel string, local *Broadcaster, log logrus.FieldLogger) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, channel: channel, local: local, log: log}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, boardID uuid.UUID, ev Event) {
	data, err := ev.Encode()
	if err != nil {
		b.log.WithError(err).WithField("kind", ev.Kind).Error("failed to encode board event")
		return
	}
	msg, err := sonic.Marshal(envelope{BoardID: boardID.String(), Frame: string(data)})
	if err != nil {
		b.log.WithError(err).Error("failed to encode relay envelope")
		b.local.Deliver(boardID, data)
		return
	}
	if err := b.client.Publish(ctx, b.channel, msg).Err(); err != nil {
		b.log.WithError(err).WithField("board_id", boardID).Warn("redis publish failed, delivering locally")
		b.local.Deliver(boardID, data)
	}
}

// Run relays envelopes from Redis to local subscribers until ctx is done,
// resubscribing whenever the channel closes.
func (b *RedisBroadcaster) Run(ctx context.Context) {
	for {
		sub := b.client.Subscribe(ctx, b.channel)
		b.consume(ctx, sub.Channel())
		_ = sub.Close()
		if ctx.Err() != nil {
			return
		}
		b.log.Error("pubsub channel closed, reconnecting")
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (b *RedisBroadcaster) consume(ctx context.Context, ch <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := sonic.UnmarshalString(msg.Payload, &env); err != nil {
				b.log.WithError(err).Error("unable to parse relayed event")
				continue
			}
			boardID, err := uuid.Parse(env.BoardID)
			if err != nil {
				b.log.WithError(err).WithField("board_id", env.BoardID).Error("relayed event has bad board id")
				continue
			}
			b.local.Deliver(boardID, []byte(env.Frame))
		}
	}
}
