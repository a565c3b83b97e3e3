package kv

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func recencyBackends(t *testing.T) map[string]RecencyStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return map[string]RecencyStore{
		"memory": NewMemoryRecencyStore(),
		"redis":  NewRedisRecencyStore(rdb, "test:terms"),
	}
}

func mustAdd(t *testing.T, store RecencyStore, member string, score float64) {
	t.Helper()
	if err := store.Add(context.Background(), member, score); err != nil {
		t.Fatalf("Add(%q): %v", member, err)
	}
}

func mustNewest(t *testing.T, store RecencyStore, n int) []string {
	t.Helper()
	got, err := store.Newest(context.Background(), n)
	if err != nil {
		t.Fatalf("Newest(%d): %v", n, err)
	}
	return got
}

func mustLen(t *testing.T, store RecencyStore) int64 {
	t.Helper()
	n, err := store.Len(context.Background())
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	return n
}

func TestRecencyStoreOrdersByScore(t *testing.T) {
	for name, store := range recencyBackends(t) {
		t.Run(name, func(t *testing.T) {
			mustAdd(t, store, "cat", 1)
			mustAdd(t, store, "car", 2)
			mustAdd(t, store, "dog", 3)

			if got := mustNewest(t, store, 10); !slices.Equal(got, []string{"dog", "car", "cat"}) {
				t.Fatalf("unexpected order: %v", got)
			}

			// re-adding moves the member to the front
			mustAdd(t, store, "cat", 4)
			if got := mustNewest(t, store, 2); !slices.Equal(got, []string{"cat", "dog"}) {
				t.Fatalf("unexpected order after re-add: %v", got)
			}

			if err := store.Remove(context.Background(), "dog"); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if n := mustLen(t, store); n != 2 {
				t.Fatalf("expected 2 members, got %d", n)
			}
		})
	}
}

func TestRecencyStoreTrimKeepsNewest(t *testing.T) {
	for name, store := range recencyBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 1; i <= 12; i++ {
				mustAdd(t, store, fmt.Sprintf("term%02d", i), float64(i))
			}
			if err := store.TrimTo(ctx, 5); err != nil {
				t.Fatalf("TrimTo(5): %v", err)
			}

			want := []string{"term12", "term11", "term10", "term09", "term08"}
			if got := mustNewest(t, store, 100); !slices.Equal(got, want) {
				t.Fatalf("unexpected members after trim: %v", got)
			}

			if err := store.TrimTo(ctx, 0); err != nil {
				t.Fatalf("TrimTo(0): %v", err)
			}
			if n := mustLen(t, store); n != 0 {
				t.Fatalf("expected empty store, got %d members", n)
			}
		})
	}
}

func TestRecencyStoreEmpty(t *testing.T) {
	for name, store := range recencyBackends(t) {
		t.Run(name, func(t *testing.T) {
			got := mustNewest(t, store, 10)
			if got == nil || len(got) != 0 {
				t.Fatalf("expected non-nil empty slice, got %#v", got)
			}
		})
	}
}
