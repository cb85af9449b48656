package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestQueryCacheFetchAndInvalidate(t *testing.T) {
	cache := NewQueryCache(time.Minute)
	loads := 0
	load := func() ([]string, error) {
		loads++
		return []string{"r1"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Fetch(cache, CacheGroupMyReports, "u1", load)
		if err != nil || len(got) != 1 {
			t.Fatalf("Unexpected result %v, %v", got, err)
		}
	}
	if loads != 1 {
		t.Errorf("Expected 1 load, got %d", loads)
	}

	cache.Set(CacheGroupRecentCertificates, "u1", "recent")
	if err := cache.Invalidate(context.Background(), CacheGroupMyReports); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	Fetch(cache, CacheGroupMyReports, "u1", load)
	if loads != 2 {
		t.Errorf("Expected reload after invalidation, got %d loads", loads)
	}
	if _, ok := cache.Get(CacheGroupRecentCertificates, "u1"); !ok {
		t.Error("Expected other groups to survive invalidation")
	}
}

func TestQueryCacheExpiry(t *testing.T) {
	cache := NewQueryCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Set("g", "k", 1)
	if _, ok := cache.Get("g", "k"); !ok {
		t.Fatal("Expected cached value")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get("g", "k"); ok {
		t.Error("Expected value to expire")
	}
}

func TestQueryCacheDoesNotCacheErrors(t *testing.T) {
	cache := NewQueryCache(time.Minute)
	calls := 0
	load := func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("db down")
		}
		return 42, nil
	}

	if _, err := Fetch(cache, "g", "k", load); err == nil {
		t.Fatal("Expected load error")
	}
	if v, err := Fetch(cache, "g", "k", load); err != nil || v != 42 {
		t.Errorf("Expected 42 after retry, got %v, %v", v, err)
	}
}

func TestQueryCacheDisabled(t *testing.T) {
	cache := NewQueryCache(0)
	cache.Set("g", "k", 1)
	if _, ok := cache.Get("g", "k"); ok {
		t.Error("Expected zero TTL to disable caching")
	}
}

func TestDispatcherCollectsWarnings(t *testing.T) {
	var order []string
	d := &Dispatcher{}
	d.Enqueue(Task{Stage: "first", Run: func(context.Context) error {
		order = append(order, "first")
		return errors.New("boom")
	}})
	d.Enqueue(Task{Stage: "second", Run: func(context.Context) error {
		order = append(order, "second")
		panic("unexpected")
	}})
	d.Enqueue(Task{Stage: "third", Run: func(context.Context) error {
		order = append(order, "third")
		return nil
	}})

	warnings := d.Run(context.Background())

	if len(order) != 3 || order[2] != "third" {
		t.Errorf("Expected every task to run in order, got %v", order)
	}
	if len(warnings) != 2 || warnings[0].Stage != "first" || warnings[1].Stage != "second" {
		t.Errorf("Unexpected warnings %v", warnings)
	}
	if d.Len() != 0 {
		t.Error("Expected queue to be emptied")
	}
}
