package board

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskflow/domain"
)

// envelope is the pub/sub payload. Origin identifies the publishing process
// so it can ignore its own messages.
type envelope struct {
	Origin string       `json:"origin"`
	Event  domain.Event `json:"event"`
}

// RedisPublisher broadcasts task events on a Redis channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	origin  string
}

func NewRedisPublisher(client *redis.Client, channel, origin string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel, origin: origin}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev domain.Event) error {
	payload, err := sonic.ConfigStd.Marshal(envelope{Origin: p.origin, Event: ev})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}

// SubscribeEvents delivers events published by other processes on channel
// to handle until ctx is cancelled. The subscription is re-established if
// the channel closes.
func SubscribeEvents(
	ctx context.Context,
	logger *log.Logger,
	rc *redis.Client,
	channel, origin string,
	handle func(domain.Event),
) {
	for {
		sub := rc.Subscribe(ctx, channel)
		ch := sub.Channel()
	receive:
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break receive
				}
				var env envelope
				if err := sonic.ConfigStd.Unmarshal([]byte(msg.Payload), &env); err != nil {
					logger.WithError(err).WithField("channel", channel).Error("unable to parse event")
					continue
				}
				if env.Origin == origin {
					continue
				}
				handle(env.Event)
			}
		}
		_ = sub.Close()
		if ctx.Err() != nil {
			return
		}
		logger.WithField("channel", channel).Error("pubsub channel closed, reconnecting")
		time.Sleep(time.Second)
	}
}
