package main

import (
	"context"

	"github.com/donovanp007/medscribe/internal/infrastructure/database/redis"
	"github.com/donovanp007/medscribe/internal/interfaces/http/handlers"
)

// redisChecker adapts the Redis client to the readiness probe.
func redisChecker(client *redis.Client) handlers.HealthChecker {
	return handlers.HealthCheckFunc{
		ComponentName: "redis",
		Fn: func(ctx context.Context) error {
			return client.Ping(ctx)
		},
	}
}
