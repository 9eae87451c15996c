package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"instaapp/internal/config"
	"instaapp/internal/core"
)

const defaultRedisURL = "redis://localhost:6379/0"

// Redis keeps the token under a plain string key.
type Redis struct {
	Logger *slog.Logger
	Config *config.Config

	client *redis.Client
}

func (r *Redis) Init(ctx context.Context) error {
	r.Logger = r.Logger.With("component", "storage.Redis")

	url := r.Config.RedisURL
	if url == "" {
		url = defaultRedisURL
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	r.client = redis.NewClient(opts)

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	return nil
}

func (r *Redis) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Shutdown(context.Context) error {
	return r.client.Close()
}

func (r *Redis) Load(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, TokenKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", core.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	if token == "" {
		return "", core.ErrNoToken
	}
	return token, nil
}

func (r *Redis) Save(ctx context.Context, token string) error {
	return r.client.Set(ctx, TokenKey, token, 0).Err()
}

func (r *Redis) Clear(ctx context.Context) error {
	return r.client.Del(ctx, TokenKey).Err()
}
