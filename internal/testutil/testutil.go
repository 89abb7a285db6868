//go:build integration

package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisDB is the database index integration tests are allowed to flush.
const RedisDB = 9

// RedisAddr returns the address of the test Redis instance from
// PSKTRON_TEST_REDIS_ADDR, or "" when unset.
func RedisAddr() string {
	return os.Getenv("PSKTRON_TEST_REDIS_ADDR")
}

// SkipIfNoRedis skips the test if the test Redis instance is not reachable.
func SkipIfNoRedis(t *testing.T) {
	t.Helper()

	addr := RedisAddr()
	if addr == "" {
		t.Skip("test Redis not available: set PSKTRON_TEST_REDIS_ADDR")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("test Redis not reachable at %s: %v", addr, err)
	}
}

// FlushDB flushes the integration test database.
func FlushDB(t *testing.T) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: RedisAddr(), DB: RedisDB})
	defer client.Close()

	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flushing DB %d: %v", RedisDB, err)
	}
}
