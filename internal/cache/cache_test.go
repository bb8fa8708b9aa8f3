package cache

import (
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New(true, time.Minute)
	defer c.Close()

	etag := c.Set("match:1", []byte(`{"match_id":1}`), time.Minute)
	data, got, ok := c.Get("match:1")
	if !ok || string(data) != `{"match_id":1}` || got != etag {
		t.Fatalf("Get = %q, %q, %v", data, got, ok)
	}
	if _, _, ok := c.Get("match:2"); ok {
		t.Error("unexpected hit for a missing key")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New(true, time.Minute)
	defer c.Close()

	c.Set("k", []byte("v"), -time.Second)
	if _, _, ok := c.Get("k"); ok {
		t.Error("expired entry was served")
	}
	c.evict()
	if n := c.Stats()["total_keys"]; n != 0 {
		t.Errorf("total_keys after evict = %v", n)
	}
}

func TestCache_Disabled(t *testing.T) {
	c := New(false, time.Minute)
	defer c.Close()

	etag := c.Set("k", []byte("v"), time.Minute)
	if etag != ComputeETag([]byte("v")) {
		t.Errorf("etag = %q", etag)
	}
	if _, _, ok := c.Get("k"); ok {
		t.Error("disabled cache served a value")
	}
}

func TestTTLs(t *testing.T) {
	c := New(false, 10*time.Minute)
	if c.MatchTTL() != 10*time.Minute || c.LeaderTTL() != 2*time.Minute {
		t.Errorf("ttls = %v/%v", c.MatchTTL(), c.LeaderTTL())
	}
}

func TestCheckETagMatch(t *testing.T) {
	etag := ComputeETag([]byte("x"))
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"*", true},
		{etag, true},
		{`W/"other"`, false},
	}
	for _, tt := range tests {
		if got := CheckETagMatch(tt.header, etag); got != tt.want {
			t.Errorf("CheckETagMatch(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestCache_Purge(t *testing.T) {
	c := New(true, time.Minute)
	defer c.Close()

	c.Set("a", []byte("1"), time.Minute)
	c.Set("b", []byte("2"), time.Minute)
	if n := c.Purge(); n != 2 {
		t.Errorf("Purge = %d, want 2", n)
	}
	if _, _, ok := c.Get("a"); ok {
		t.Error("purged entry was served")
	}
}
