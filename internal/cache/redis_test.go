package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// Runs only when REDIS_TEST_ADDR points at a disposable Redis.
func TestRedisStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer client.Close()

	s := NewRedisStore(client, "test:", time.Minute)
	if err := s.Set(ctx, "board", map[string]int{"waiting": 3}); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got map[string]int
	hit, err := s.Get(ctx, "board", &got)
	if err != nil || !hit || got["waiting"] != 3 {
		t.Fatalf("expected hit with 3 waiting, got hit=%v err=%v %v", hit, err, got)
	}

	if err := s.Delete(ctx, "board"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if hit, _ := s.Get(ctx, "board", &got); hit {
		t.Fatalf("expected miss after delete")
	}
}

func TestNop_AlwaysMisses(t *testing.T) {
	var s Store = Nop{}
	_ = s.Set(context.Background(), "k", 1)

	var v int
	if hit, err := s.Get(context.Background(), "k", &v); hit || err != nil {
		t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
	}
}
