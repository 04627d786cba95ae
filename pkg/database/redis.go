package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"stormbringer/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrCacheMiss is returned by GetJSON when the key does not exist
var ErrCacheMiss = redis.Nil

type Redis struct {
	Client *redis.Client
	tracer trace.Tracer
}

func NewRedis(ctx context.Context) (*Redis, error) {
	redisURL := config.GetEnv("REDIS_URL", "redis://localhost:6379")

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", opt.Addr)

	r := &Redis{
		Client: client,
	}

	// Only initialize tracer if telemetry is enabled
	if config.GetBoolEnv("ENABLE_TELEMETRY", false) {
		r.tracer = otel.Tracer("redis-client")
	}

	return r, nil
}

func (r *Redis) Close() error {
	return r.Client.Close()
}

// startSpan returns a no-op finish func when tracing is disabled
func (r *Redis) startSpan(ctx context.Context, name, key, op string) (context.Context, func(error)) {
	if r.tracer == nil {
		return ctx, func(error) {}
	}
	ctx, span := r.tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.String("redis.key", key),
			attribute.String("redis.operation", op),
		),
	)
	return ctx, func(err error) {
		if err != nil && err != redis.Nil {
			span.RecordError(err)
		}
		span.End()
	}
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	key := ""
	if len(keys) > 0 {
		key = keys[0]
	}
	ctx, finish := r.startSpan(ctx, "redis.delete", key, "DEL")
	err := r.Client.Del(ctx, keys...).Err()
	finish(err)
	return err
}

func (r *Redis) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.Client.Ping(ctx).Err()
}

// SetJSON stores a JSON-serializable object in Redis with expiration
func (r *Redis) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	ctx, finish := r.startSpan(ctx, "redis.set_json", key, "SET_JSON")
	err = r.Client.Set(ctx, key, jsonData, expiration).Err()
	finish(err)
	return err
}

// GetJSON retrieves and unmarshals a JSON object from Redis
func (r *Redis) GetJSON(ctx context.Context, key string, dest interface{}) error {
	ctx, finish := r.startSpan(ctx, "redis.get_json", key, "GET_JSON")
	jsonData, err := r.Client.Get(ctx, key).Result()
	finish(err)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(jsonData), dest); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}

// AcquireLock takes the lock at key for owner unless someone else holds it
func (r *Redis) AcquireLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	ctx, finish := r.startSpan(ctx, "redis.lock", key, "SETNX")
	ok, err := r.Client.SetNX(ctx, key, owner, ttl).Result()
	finish(err)
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return ok, nil
}

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// ReleaseLock drops the lock at key if owner still holds it
func (r *Redis) ReleaseLock(ctx context.Context, key, owner string) error {
	ctx, finish := r.startSpan(ctx, "redis.unlock", key, "EVAL")
	err := releaseScript.Run(ctx, r.Client, []string{key}, owner).Err()
	finish(err)
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
