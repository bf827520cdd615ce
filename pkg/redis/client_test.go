package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"path"
	"sort"
	"syscall"
	"testing"
	"time"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	if err := client.Set(ctx, "shop:a:orders", "payload", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := client.Get(ctx, "shop:a:orders")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "payload" {
		t.Fatalf("expected payload got %q", got)
	}

	n, err := client.Del(ctx, "shop:a:orders", "missing")
	if err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 key deleted got %d", n)
	}
	if _, err := client.Get(ctx, "shop:a:orders"); !errors.Is(err, Nil) {
		t.Fatalf("expected Nil after delete, got %v", err)
	}
}

func TestDeletePatternWalksCursor(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	mock.pageSize = 1
	client := &Client{store: mock, scanBatch: 1}

	for _, key := range []string{"shop:a:products", "shop:a:orders:1:20:{}", "shop:b:products"} {
		if err := client.Set(ctx, key, "v", 0); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	n, err := client.DeletePattern(ctx, "shop:a:*")
	if err != nil {
		t.Fatalf("delete pattern failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted got %d", n)
	}
	if mock.scanCalls < 2 {
		t.Fatalf("expected multiple scan pages, got %d", mock.scanCalls)
	}
	if _, err := client.Get(ctx, "shop:b:products"); err != nil {
		t.Fatalf("other shop key should survive: %v", err)
	}
}

func TestDeletePatternScanError(t *testing.T) {
	mock := newMockCmdable()
	mock.scanErr = errors.New("connection refused")
	client := &Client{store: mock}

	if _, err := client.DeletePattern(context.Background(), "shop:a:*"); err == nil {
		t.Fatal("expected scan error to propagate")
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if _, err := client.Del(context.Background(), "k"); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
}

func TestOptionsFromConfigRequiresEndpoint(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", PoolSize: 4, DB: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.PoolSize != 4 || opts.DB != 2 {
		t.Fatalf("unexpected options %+v", opts)
	}
}

type mockCmdable struct {
	data      map[string]string
	pageSize  int
	scanCalls int
	scanErr   error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *mockCmdable) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	m.scanCalls++
	if m.scanErr != nil {
		return redis.NewScanCmdResult(nil, 0, m.scanErr)
	}
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	size := m.pageSize
	if size <= 0 {
		size = len(keys)
	}
	start := int(cursor)
	end := start + size
	if end >= len(keys) {
		end = len(keys)
	}
	var page []string
	for _, key := range keys[start:end] {
		if ok, _ := path.Match(match, key); ok {
			page = append(page, key)
		}
	}
	next := uint64(end)
	if end >= len(keys) {
		next = 0
	}
	return redis.NewScanCmdResult(page, next, nil)
}

func TestIsConnError(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"nil":           {nil, false},
		"miss":          {Nil, false},
		"refused":       {&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
		"eof":           {fmt.Errorf("read: %w", io.EOF), true},
		"closed":        {redis.ErrClosed, true},
		"pool timeout":  {redis.ErrPoolTimeout, true},
		"uninitialized": {ErrNotInitialized, true},
		"wrong type":    {errors.New("WRONGTYPE Operation against a key holding the wrong kind of value"), false},
	}
	for name, tc := range cases {
		if got := IsConnError(tc.err); got != tc.want {
			t.Fatalf("%s: IsConnError = %v, want %v", name, got, tc.want)
		}
	}
}
