package tools

import (
	"testing"
	"time"

	"github.com/nullshift/vocalops/pkg/types"
)

func TestCache_HitWithinCooldown(t *testing.T) {
	c := NewCache(time.Minute)
	c.set("k", "value")
	v, ok := c.get("k", time.Minute)
	if !ok || v != "value" {
		t.Fatalf("get() = %v, %v, want %q, true", v, ok, "value")
	}
}

func TestCache_MissAfterCooldownButWithinTTL(t *testing.T) {
	c := NewCache(time.Minute)
	c.mu.Lock()
	c.entries["k"] = cacheEntry{value: "value", storedAt: time.Now().Add(-2 * time.Second)}
	c.mu.Unlock()

	_, ok := c.get("k", time.Second)
	if ok {
		t.Fatal("expected cooldown-expired miss, got hit")
	}
	// Entry should still be present (within TTL), just not replay-eligible.
	c.mu.Lock()
	_, stillStored := c.entries["k"]
	c.mu.Unlock()
	if !stillStored {
		t.Fatal("entry was evicted despite being within TTL")
	}
}

func TestCache_EvictsAfterTTL(t *testing.T) {
	c := NewCache(time.Second)
	c.mu.Lock()
	c.entries["k"] = cacheEntry{value: "value", storedAt: time.Now().Add(-2 * time.Second)}
	c.mu.Unlock()

	_, ok := c.get("k", time.Hour)
	if ok {
		t.Fatal("expected TTL-expired miss, got hit")
	}
	c.mu.Lock()
	_, stillStored := c.entries["k"]
	c.mu.Unlock()
	if stillStored {
		t.Fatal("expected entry to be evicted after TTL")
	}
}

func TestCache_ZeroCooldownDisablesReplay(t *testing.T) {
	c := NewCache(time.Minute)
	c.set("k", "value")
	if _, ok := c.get("k", 0); ok {
		t.Fatal("expected zero cooldown to disable replay, got hit")
	}
}

func TestCanonicalKey_IsOrderIndependent(t *testing.T) {
	a := map[string]types.ArgValue{
		"path": {Kind: types.ArgString, Str: "/tmp/x"},
		"n":    {Kind: types.ArgInt, Int: 3},
	}
	b := map[string]types.ArgValue{
		"n":    {Kind: types.ArgInt, Int: 3},
		"path": {Kind: types.ArgString, Str: "/tmp/x"},
	}
	if canonicalKey("tool", a) != canonicalKey("tool", b) {
		t.Error("canonicalKey should be independent of map iteration order")
	}
}

func TestCanonicalKey_DiffersByName(t *testing.T) {
	args := map[string]types.ArgValue{"x": {Kind: types.ArgBool, Bool: true}}
	if canonicalKey("one", args) == canonicalKey("two", args) {
		t.Error("canonicalKey should differ between distinct tool names")
	}
}
