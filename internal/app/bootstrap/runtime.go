package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/medcare-portal/internal/chat"
	appconfig "github.com/wolfman30/medcare-portal/internal/config"
	"github.com/wolfman30/medcare-portal/pkg/logging"
)

const redisPingTimeout = 3 * time.Second

// redisOptions maps the REDIS_* settings. ok is false when no address is set.
func redisOptions(cfg *appconfig.Config) (opts *redis.Options, ok bool) {
	if cfg == nil {
		return nil, false
	}
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, false
	}
	opts = &redis.Options{Addr: addr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts, true
}

// BuildRedisClient returns a client for REDIS_ADDR, or nil when Redis is not
// configured. With verify set, an unreachable server also yields nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	opts, ok := redisOptions(cfg)
	if !ok {
		return nil
	}
	client := redis.NewClient(opts)
	if !verify {
		return client
	}
	if ctx == nil {
		ctx = context.Background()
	}
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if logger == nil {
			logger = logging.Default()
		}
		logger.Warn("redis not available", "addr", opts.Addr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildPinStore decides where the chat client remembers the endpoint that
// answered. The Redis client is returned so the caller can close it; it is
// nil for the in-memory store.
func BuildPinStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (chat.PinStore, *redis.Client) {
	rdb := BuildRedisClient(ctx, cfg, logger, true)
	if rdb == nil {
		return chat.NewMemoryPinStore(), nil
	}
	return chat.NewRedisPinStore(rdb, cfg.ChatSessionID, cfg.ChatPinTTL), rdb
}
