package cache

import (
	"testing"
	"time"
)

func TestKey_DistinctPerContainerAndObject(t *testing.T) {
	a := Key("labels", "x.labels.json")
	b := Key("labels", "y.labels.json")
	c := Key("corrected", "x.labels.json")

	if a == b || a == c || b == c {
		t.Error("expected distinct keys per container/object pair")
	}
	if Key("labels", "x.labels.json") != a {
		t.Error("expected stable keys")
	}
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute)

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	val, ok := c.Get("k")
	if !ok || string(val) != "v" {
		t.Errorf("expected v, got %q (ok=%v)", val, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestDiskCache_PayloadStoredVerbatim(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	payload := []byte(`{"document": "a.pdf"}`)
	if err := c.Set("k", payload, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	val, ok := c.Get("k")
	if !ok || string(val) != string(payload) {
		t.Errorf("expected payload back, got %q (ok=%v)", val, ok)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set("k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Minute)

	if err := c.disk.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set disk: %v", err)
	}

	if val, ok := c.Get("k"); !ok || string(val) != "v" {
		t.Fatalf("expected disk hit, got %q (ok=%v)", val, ok)
	}

	// Now present in memory as well.
	if _, ok := c.memory.Get("k"); !ok {
		t.Error("expected promotion to memory layer")
	}
}
