package cdc

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitlinklabs/orbitlink/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const KindDeviceChanged = "device-changed"

// Event is a change-data-capture record consumed by downstream sync jobs.
// Delivery is at-least-once; consumers must deduplicate.
type Event struct {
	Kind string       `json:"kind"`
	ID   snowflake.ID `json:"id"`
}

func DeviceChanged(trackerID snowflake.ID) Event {
	return Event{Kind: KindDeviceChanged, ID: trackerID}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	PublishBatch(ctx context.Context, events []Event) error
}

type Params struct {
	fx.In

	Redis *redis.Client
	Log   *zap.Logger
	Cfg   config.Config
}

// StreamPublisher appends events to a Redis stream.
type StreamPublisher struct {
	rdb    *redis.Client
	log    *zap.Logger
	stream string
}

func NewStreamPublisher(p Params) Publisher {
	return &StreamPublisher{
		rdb:    p.Redis,
		log:    p.Log.Named("cdc.publisher"),
		stream: p.Cfg.CDCStream,
	}
}

func (p *StreamPublisher) Publish(ctx context.Context, event Event) error {
	err := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"kind": event.Kind,
			"id":   event.ID.String(),
		},
	}).Err()
	if err != nil {
		return err
	}
	p.log.Debug("event published",
		zap.String("kind", event.Kind),
		zap.String("id", event.ID.String()))
	return nil
}

func (p *StreamPublisher) PublishBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	pipe := p.rdb.Pipeline()
	for _, event := range events {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			Values: map[string]any{
				"kind": event.Kind,
				"id":   event.ID.String(),
			},
		})
	}
	_, err := pipe.Exec(ctx)
	return err
}

var Module = fx.Module("cdc",
	fx.Provide(NewStreamPublisher),
)
