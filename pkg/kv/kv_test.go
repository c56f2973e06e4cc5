package kv

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	mr := miniredis.RunT(t)
	rs, err := NewRedisStore(WithRedisAddr(mr.Addr()), WithRedisPrefix("test"))
	if err != nil {
		t.Fatalf("redis store: %v", err)
	}
	ss, err := NewSQLiteStore(WithSQLitePath(filepath.Join(t.TempDir(), "kv.db")))
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	t.Cleanup(func() {
		_ = rs.Close()
		_ = ss.Close()
	})

	return map[string]Store{
		"redis":  rs,
		"sqlite": ss,
		"memory": NewMemoryStore(),
	}
}

func TestGetSet(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := s.Set(ctx, "k", "KT,005930.KS"); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := s.Set(ctx, "k", "KT"); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err := s.Get(ctx, "k")
			if err != nil || got != "KT" {
				t.Fatalf("get = %q, %v", got, err)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.Update(ctx, "u", func(cur string, found bool) (string, error) {
				if found {
					t.Fatalf("unexpected value %q", cur)
				}
				return "a", nil
			})
			if err != nil || got != "a" {
				t.Fatalf("first update = %q, %v", got, err)
			}

			boom := errors.New("boom")
			if _, err := s.Update(ctx, "u", func(string, bool) (string, error) { return "", boom }); !errors.Is(err, boom) {
				t.Fatalf("expected fn error, got %v", err)
			}
			if v, _ := s.Get(ctx, "u"); v != "a" {
				t.Fatalf("failed update must not write, got %q", v)
			}
		})
	}
}

func TestUpdateConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			const n = 20
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := s.Update(ctx, "counter", func(cur string, found bool) (string, error) {
						v := 0
						if found {
							v, _ = strconv.Atoi(cur)
						}
						return strconv.Itoa(v + 1), nil
					})
					if err != nil && !errors.Is(err, ErrConflict) {
						t.Errorf("update: %v", err)
					}
				}()
			}
			wg.Wait()

			if name == "redis" {
				// optimistic retries may give up under heavy contention
				return
			}
			if v, _ := s.Get(ctx, "counter"); v != strconv.Itoa(n) {
				t.Fatalf("counter = %s, want %d", v, n)
			}
		})
	}
}

func TestHash(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			empty, err := s.HGetAll(ctx, "h")
			if err != nil || len(empty) != 0 {
				t.Fatalf("empty hash = %v, %v", empty, err)
			}
			if err := s.HSet(ctx, "h", map[string]string{"KT": "55.1", "^KS200": "0"}); err != nil {
				t.Fatalf("hset: %v", err)
			}
			if err := s.HSet(ctx, "h", map[string]string{"^KS200": "71.2"}); err != nil {
				t.Fatalf("hset overwrite: %v", err)
			}
			if err := s.HDel(ctx, "h", "KT", "absent"); err != nil {
				t.Fatalf("hdel: %v", err)
			}
			got, err := s.HGetAll(ctx, "h")
			if err != nil {
				t.Fatalf("hgetall: %v", err)
			}
			if len(got) != 1 || got["^KS200"] != "71.2" {
				t.Fatalf("hash = %v", got)
			}
		})
	}
}
