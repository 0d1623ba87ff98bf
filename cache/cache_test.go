package cache

import (
	"testing"
	"time"
)

func TestCache_PutAndGet(t *testing.T) {
	c := New(1 * time.Second)

	c.Put("key1", "value1")

	val, found := c.Get("key1")
	if !found {
		t.Error("Expected to find key1")
	}
	if val != "value1" {
		t.Errorf("Expected value1, got %v", val)
	}
}

func TestCache_ExpiryCheckedAtRead(t *testing.T) {
	c := New(50 * time.Millisecond)

	c.Put("key1", "value1")

	if _, found := c.Get("key1"); !found {
		t.Error("Expected to find key1 immediately")
	}

	time.Sleep(80 * time.Millisecond)

	// The sweep loop runs on a long interval; the read path alone must
	// report the entry as gone.
	if _, found := c.Get("key1"); found {
		t.Error("Expected key1 to be expired at read time")
	}
}

func TestCache_PutTTL(t *testing.T) {
	c := New(10 * time.Millisecond)

	c.PutTTL("key1", "value1", 1*time.Second)

	time.Sleep(50 * time.Millisecond)

	if _, found := c.Get("key1"); !found {
		t.Error("Expected custom TTL to outlive the default TTL")
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := New(1 * time.Second)

	c.Put("key1", "value1")
	c.Invalidate("key1")

	if _, found := c.Get("key1"); found {
		t.Error("Expected key1 to be invalidated")
	}
}
