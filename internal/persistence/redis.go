package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/pos-frontend/internal/config"
)

const redisProbeTimeout = 2 * time.Second

// Redis holds the client behind the redis token store.
type Redis struct {
	Client *redis.Client
}

// NewRedis creates the client and probes the server once. A failed probe is
// only logged: the session treats a failing read as an empty slot, so the
// terminal still starts and shows the login view.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	probeCtx, cancel := context.WithTimeout(ctx, redisProbeTimeout)
	defer cancel()

	fields := []zap.Field{zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB)}
	if err := client.Ping(probeCtx).Err(); err != nil {
		logger.Warn("token slot redis unreachable", append(fields, zap.Error(err))...)
	} else {
		logger.Info("token slot redis connected", fields...)
	}

	return &Redis{Client: client}
}

func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping is used by the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis token store not configured")
	}
	return r.Client.Ping(ctx).Err()
}
