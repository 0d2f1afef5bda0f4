package cache

import (
	"testing"
	"time"
)

func TestStore_SetGet(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	store.Set("k", "v")

	got, ok := store.Get("k")
	if !ok {
		t.Fatal("expected key to be present")
	}
	if got != "v" {
		t.Fatalf("got %v, want v", got)
	}
}

func TestStore_ExpiredEntryIsDropped(t *testing.T) {
	t.Parallel()

	store := NewStore(10 * time.Millisecond)
	store.Set("k", "v")

	time.Sleep(25 * time.Millisecond)

	if _, ok := store.Get("k"); ok {
		t.Fatal("expected entry to have expired")
	}
	if store.Len() != 0 {
		t.Fatalf("expired entry not removed, len=%d", store.Len())
	}
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	store.Set("k", 42)

	time.Sleep(15 * time.Millisecond)

	if _, ok := store.Get("k"); !ok {
		t.Fatal("entry with zero TTL should not expire")
	}
}

func TestStore_EmptyKeyIgnored(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	store.Set("", "v")

	if _, ok := store.Get(""); ok {
		t.Fatal("empty key should never be stored")
	}
}
