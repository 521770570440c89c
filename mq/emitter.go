package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel carries slot events between service instances.
const DefaultChannel = "slot-events"

// Envelope is the message published on the Redis channel.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Sink receives frames coming off the channel; the websocket hub is one.
type Sink interface {
	PublishRaw(ctx context.Context, frame []byte) error
}

// Relay publishes events to Redis and forwards everything on the channel to
// the local sink, so each instance notifies its own viewers exactly once.
type Relay struct {
	rdb     *redis.Client
	channel string
	sink    Sink
	log     *zap.Logger
}

func NewRelay(rdb *redis.Client, channel string, sink Sink, log *zap.Logger) *Relay {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Relay{rdb: rdb, channel: channel, sink: sink, log: log}
}

// Connect builds a client for addr and checks it answers.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func Encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// Publish emits the event on the Redis channel.
func (r *Relay) Publish(ctx context.Context, event string, payload any) error {
	msg, err := Encode(event, payload)
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, r.channel, msg).Err(); err != nil {
		return fmt.Errorf("publish to redis: %w", err)
	}
	return nil
}

// Run subscribes to the channel and hands every valid message to the sink
// until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.log.Info("listening for slot events", zap.String("channel", r.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := r.forward(ctx, []byte(msg.Payload)); err != nil {
				r.log.Warn("dropping relayed event", zap.Error(err))
			}
		}
	}
}

func (r *Relay) forward(ctx context.Context, payload []byte) error {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if env.Event == "" {
		return fmt.Errorf("envelope without event name")
	}
	return r.sink.PublishRaw(ctx, payload)
}
