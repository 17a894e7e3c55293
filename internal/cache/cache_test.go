package cache

import (
	"bytes"
	"testing"
	"time"
)

func TestKeysDifferByKind(t *testing.T) {
	if TranscriptKey("abc123") == ReportKey("abc123") {
		t.Error("transcript and report keys should differ for the same video")
	}
	if TranscriptKey("abc123") != TranscriptKey("abc123") {
		t.Error("keys should be deterministic")
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	key := ReportKey("dQw4w9WgXcQ")
	want := []byte(`{"conclusion":"ok"}`)

	if err := c.Set(key, want, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found := c.Get(key)
	if !found {
		t.Fatal("expected cache hit")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("expected miss after delete")
	}
}

func TestDiskCacheExpiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	key := TranscriptKey("expired")
	if err := c.Set(key, []byte("stale"), -time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, found := c.Get(key); found {
		t.Error("expected expired entry to miss")
	}
}

func TestLayeredCachePromotes(t *testing.T) {
	dir := t.TempDir()

	// Seed only the disk layer, then read through a fresh layered cache.
	disk := NewDiskCache(dir, time.Hour)
	key := TranscriptKey("promoted")
	if err := disk.Set(key, []byte("[00:10] hello"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	layered := NewLayeredCache(time.Hour, dir, time.Hour)
	if _, found := layered.Get(key); !found {
		t.Fatal("expected disk hit through layered cache")
	}

	mem, ok := layered.memory.(*MemoryCache)
	if !ok {
		t.Fatal("memory layer has unexpected type")
	}
	if _, found := mem.Get(key); !found {
		t.Error("expected disk hit to be promoted to memory")
	}
}
