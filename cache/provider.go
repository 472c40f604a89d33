package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/saasforge/authcore/config"
	"github.com/saasforge/authcore/services/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ProvideClient connects the shared cache used for refresh-token slots,
// blacklist entries, rate-limit counters, and one-time-code slots.
func ProvideClient(lc fx.Lifecycle, cfg *config.Config, logger *logging.Service) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("failed to connect to redis: %w", err)
			}
			if logger != nil {
				logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}

var Module = fx.Options(
	fx.Provide(ProvideClient),
)
