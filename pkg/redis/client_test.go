package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockCmdable struct {
	values   map[string]string
	counters map[string]int64
	expires  map[string]time.Duration
	dels     []string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		values:   map[string]string{},
		counters: map[string]int64{},
		expires:  map[string]time.Duration{},
	}
}

func (m *mockCmdable) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.values[key] = toString(value)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	v, ok := m.values[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if _, exists := m.values[key]; exists {
		cmd.SetVal(false)
		return cmd
	}
	m.values[key] = toString(value)
	cmd.SetVal(true)
	return cmd
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var removed int64
	for _, key := range keys {
		if _, ok := m.values[key]; ok {
			delete(m.values, key)
			removed++
		}
		m.dels = append(m.dels, key)
	}
	cmd.SetVal(removed)
	return cmd
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.counters[key]++
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(m.counters[key])
	return cmd
}

func (m *mockCmdable) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	m.expires[key] = ttl
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	key := client.AccessSessionKey("a1")

	if err := client.Set(ctx, key, "tok-abc", time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := client.Get(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "tok-abc" {
		t.Fatalf("expected stored token, got %q", got)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.Get(ctx, key); err == nil {
		t.Fatal("expected miss after delete")
	}
}

func TestKeyNamespacing(t *testing.T) {
	client := &Client{}

	if got := client.AccessSessionKey("a1"); got != "bs:session:access:a1" {
		t.Fatalf("unexpected access key %q", got)
	}
	if got := client.ResetTokenKey("r1"); got != "bs:pwd_reset:r1" {
		t.Fatalf("unexpected reset key %q", got)
	}
	if got := client.IdempotencyKey("scope", "id1"); got != "bs:idem:scope:id1" {
		t.Fatalf("unexpected idempotency key %q", got)
	}
	if got := client.RateLimitKey("login:ip:1.2.3.4"); got != "bs:rl:login:ip:1.2.3.4" {
		t.Fatalf("unexpected rate limit key %q", got)
	}
}

func TestIncrWithTTLSetsExpiryOnFirstHit(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	key := client.RateLimitKey("login:ip:1.2.3.4")

	count, err := client.IncrWithTTL(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected first increment to be 1, got %d", count)
	}
	if mock.expires[key] != time.Minute {
		t.Fatalf("expected ttl set on first increment, got %v", mock.expires[key])
	}

	delete(mock.expires, key)
	if _, err := client.IncrWithTTL(ctx, key, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := mock.expires[key]; ok {
		t.Fatal("ttl must only be set when the counter is created")
	}
}

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	key := client.RateLimitKey("login:email:abc")

	for i := 0; i < 3; i++ {
		ok, err := client.FixedWindowAllow(ctx, key, 3, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}

	ok, err := client.FixedWindowAllow(ctx, key, 3, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("fourth call should be rejected")
	}

	// Zero or negative limits disable the window entirely.
	ok, err = client.FixedWindowAllow(ctx, key, 0, time.Minute)
	if err != nil || !ok {
		t.Fatalf("disabled limit must allow, got ok=%v err=%v", ok, err)
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
}
