package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", false},
		{"valid-with-db", "redis://localhost:6379/0", false},
		{"empty", "", true},
		{"wrong-scheme", "http://localhost:6379", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	ctx := t.Context()
	_, err := New(ctx, "redis://localhost:59999", 0)
	if err == nil {
		t.Fatal("New() should return error for unreachable host")
	}
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	c, err := New(t.Context(), "redis://"+server.Addr(), ttl)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, server
}

func testFingerprints(t *testing.T, store Fingerprints) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "/projects/flooding"); err != nil || ok {
		t.Fatalf("Get() on an empty store = %v, %v, want no fingerprint", ok, err)
	}
	if err := store.Set(ctx, "/projects/flooding", "abc"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Set(ctx, "/projects/flooding", "def"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	digest, ok, err := store.Get(ctx, "/projects/flooding")
	if err != nil || !ok || digest != "def" {
		t.Errorf("Get() = %q, %v, %v, want the latest fingerprint", digest, ok, err)
	}
	if _, ok, _ := store.Get(ctx, "/projects/smoke"); ok {
		t.Error("Get() returned a fingerprint for another project")
	}
}

func TestCache_Fingerprints(t *testing.T) {
	c, _ := newTestCache(t, 0)
	testFingerprints(t, c)

	if err := c.HealthCheck(t.Context()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestCache_TTL(t *testing.T) {
	c, server := newTestCache(t, time.Hour)
	ctx := t.Context()

	if err := c.Set(ctx, "/projects/flooding", "abc"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if ttl := server.TTL(keyPrefix + "/projects/flooding"); ttl != time.Hour {
		t.Errorf("TTL = %v, want 1h", ttl)
	}

	server.FastForward(2 * time.Hour)
	if _, ok, _ := c.Get(ctx, "/projects/flooding"); ok {
		t.Error("Get() returned an expired fingerprint")
	}
}

func TestCache_Unavailable(t *testing.T) {
	c, server := newTestCache(t, 0)
	server.Close()

	if _, _, err := c.Get(t.Context(), "/projects/flooding"); err == nil {
		t.Error("Get() should fail when the server is gone")
	}
}

func TestMemory_Fingerprints(t *testing.T) {
	testFingerprints(t, NewMemory())
}
