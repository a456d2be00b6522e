package utils

import (
	"context"
	"log"
	"time"

	"slotly/config"

	"github.com/go-redis/redis/v8"
)

var (
	// LockClient backs the cross-instance vendor locks.
	LockClient *redis.Client
)

// InitLockClient connects the Redis client used for slot locking (DB from AppConfig).
func InitLockClient() {
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
		InitLockClient()
	}
	return LockClient
}

// NewQueueClient returns an unverified client on the reminder queue DB, used for health pings.
func NewQueueClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
}
