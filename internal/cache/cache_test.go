package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/buergerwerk/klartext/internal/model"
)

func result(model_ string) *model.AnalysisResult {
	return &model.AnalysisResult{Meta: model.Meta{Model: model_}}
}

func TestKey_ContentAddressed(t *testing.T) {
	a := Key("some text", "v1")
	b := Key("some text", "v1")
	if a != b {
		t.Error("Expected identical inputs to produce identical keys")
	}
	if Key("some text", "v2") == a {
		t.Error("Expected a model version change to change the key")
	}
	if Key("other text", "v1") == a {
		t.Error("Expected a text change to change the key")
	}
}

func TestCache_PutGetIdempotence(t *testing.T) {
	c := New(time.Minute, 8)

	c.Put("k", result("m1"))
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Expected a hit immediately after Put")
	}
	if got.Meta.Model != "m1" {
		t.Errorf("Expected stored value back, got model %q", got.Meta.Model)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New(time.Minute, 8)

	// Simulated clock
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put("k", result("m1"))

	now = now.Add(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Error("Expected a hit before the TTL elapsed")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("Expected a miss after the TTL elapsed")
	}
	if c.Len() != 0 {
		t.Errorf("Expected the expired entry purged, got %d live entries", c.Len())
	}
}

func TestCache_FIFOEviction(t *testing.T) {
	c := New(time.Minute, 3)

	for i := 0; i < 4; i++ {
		c.Put(fmt.Sprintf("k%d", i), result(fmt.Sprintf("m%d", i)))
	}

	if _, ok := c.Get("k0"); ok {
		t.Error("Expected the oldest inserted entry to be evicted")
	}
	for i := 1; i < 4; i++ {
		if _, ok := c.Get(fmt.Sprintf("k%d", i)); !ok {
			t.Errorf("Expected k%d to survive eviction", i)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Expected the cap to hold at 3, got %d", c.Len())
	}
}

func TestCache_OverwriteDoesNotGrow(t *testing.T) {
	c := New(time.Minute, 3)

	c.Put("k", result("m1"))
	c.Put("k", result("m2"))

	if c.Len() != 1 {
		t.Errorf("Expected overwrite to keep one entry, got %d", c.Len())
	}
	got, _ := c.Get("k")
	if got.Meta.Model != "m2" {
		t.Errorf("Expected the newer value, got %q", got.Meta.Model)
	}
}
