package store

import (
	"testing"
	"time"
)

func TestMemorySetGet(t *testing.T) {
	m := NewMemory[string](0, 0)

	if _, ok := m.Get("missing"); ok {
		t.Fatal("unexpected hit for missing key")
	}

	m.Set("a", "alpha")
	v, ok := m.Get("a")
	if !ok || v != "alpha" {
		t.Fatalf("got %q ok=%v", v, ok)
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	now := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)
	m := NewMemory[int](0, 10*time.Minute)
	m.now = func() time.Time { return now }

	m.Set("k", 42)
	if _, ok := m.Get("k"); !ok {
		t.Fatal("fresh entry must be readable")
	}

	now = now.Add(11 * time.Minute)
	if _, ok := m.Get("k"); ok {
		t.Fatal("expired entry must not be returned")
	}

	if dropped := m.Prune(); dropped != 1 {
		t.Fatalf("Prune dropped %d entries, want 1", dropped)
	}
	if m.Len() != 0 {
		t.Fatalf("expected empty cache after prune, got %d entries", m.Len())
	}
}

func TestMemoryEvictsOldestAtSizeBound(t *testing.T) {
	now := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)
	m := NewMemory[int](2, 0)
	m.now = func() time.Time { return now }

	m.Set("first", 1)
	now = now.Add(time.Second)
	m.Set("second", 2)
	now = now.Add(time.Second)
	m.Set("third", 3)

	if m.Len() != 2 {
		t.Fatalf("size bound not enforced, got %d entries", m.Len())
	}
	if _, ok := m.Get("first"); ok {
		t.Fatal("oldest entry should have been evicted")
	}
	if _, ok := m.Get("third"); !ok {
		t.Fatal("newest entry should survive eviction")
	}
}
