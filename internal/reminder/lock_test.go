package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func TestLockExcludesSecondHolder(t *testing.T) {
	rdb := newTestRedis(t)
	lock := NewLock(rdb, time.Minute)
	ctx := context.Background()

	release, ok, err := lock.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !ok {
		t.Fatal("expected first acquire to succeed")
	}

	_, ok, err = lock.Acquire(ctx)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if ok {
		t.Fatal("expected second acquire to fail while held")
	}

	release()

	_, ok, err = lock.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	if !ok {
		t.Fatal("expected acquire to succeed after release")
	}
}

func TestLockReleaseIgnoresForeignToken(t *testing.T) {
	rdb := newTestRedis(t)
	lock := NewLock(rdb, time.Minute)
	ctx := context.Background()

	release, ok, err := lock.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("Acquire: ok=%v err=%v", ok, err)
	}

	// Simulate expiry plus takeover by another holder.
	if err := rdb.Set(ctx, lockKey, "someone-else", time.Minute).Err(); err != nil {
		t.Fatalf("Set: %v", err)
	}

	release()

	val, err := rdb.Get(ctx, lockKey).Result()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != "someone-else" {
		t.Fatal("release must not delete a lock held by someone else")
	}
}
