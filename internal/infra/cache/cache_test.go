package cache_test

import (
	"testing"
	"time"

	"receiptvault/internal/domain"
	"receiptvault/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "value1" {
		t.Errorf("expected 'value1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_ReceiptSlices(t *testing.T) {
	c := cache.New[[]domain.Receipt](5 * time.Minute)

	receipts := []domain.Receipt{
		{ID: "r-1", UserID: "u-1", Amount: -12.50, Vendor: "STARBUCKS"},
		{ID: "r-2", UserID: "u-1", Amount: 100, Vendor: "ACME"},
	}
	c.Set("receipts:u-1", receipts)

	got, ok := c.Get("receipts:u-1")
	if !ok {
		t.Fatal("expected cached receipt list")
	}
	if len(got) != 2 || got[0].ID != "r-1" {
		t.Errorf("unexpected cached value: %+v", got)
	}
}
