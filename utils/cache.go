package utils

import (
	"context"
	"log"
	"time"

	"wheelhouse/config"

	"github.com/go-redis/redis/v8"
)

// LockClient backs the distributed lock that keeps reconciliation runs from overlapping across instances.
var LockClient *redis.Client

// InitLockCache connects the lock client on the configured lock DB.
func InitLockCache() {
	LockClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisLockDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := LockClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Lock): %v", err)
	}
}

// GetLockClient returns the lock client, connecting on first use.
func GetLockClient() *redis.Client {
	if LockClient == nil {
		InitLockCache()
	}
	return LockClient
}
