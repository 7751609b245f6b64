package devicestatus

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitlinklabs/orbitlink/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// TrackerRef identifies one tracker in a batch operation.
type TrackerRef struct {
	ID            snowflake.ID
	TrackerNumber string
}

type Service interface {
	// BatchClearRealtimeStatus drops the cached live status of the given
	// trackers so the next report repopulates it from scratch.
	BatchClearRealtimeStatus(ctx context.Context, trackers []TrackerRef) error
}

type Params struct {
	fx.In

	Redis *redis.Client
	Log   *zap.Logger
	Cfg   config.Config
}

type redisService struct {
	rdb    *redis.Client
	log    *zap.Logger
	prefix string
}

func NewService(p Params) Service {
	return &redisService{
		rdb:    p.Redis,
		log:    p.Log.Named("devicestatus"),
		prefix: p.Cfg.RealtimeStatusPrefix,
	}
}

func (s *redisService) BatchClearRealtimeStatus(ctx context.Context, trackers []TrackerRef) error {
	if len(trackers) == 0 {
		return nil
	}
	keys := make([]string, 0, len(trackers))
	for _, t := range trackers {
		keys = append(keys, s.prefix+t.TrackerNumber)
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	s.log.Debug("realtime status cleared", zap.Int("count", len(keys)))
	return nil
}

var Module = fx.Module("devicestatus",
	fx.Provide(NewService),
)
