package gateway

import (
	"testing"
	"time"
)

func TestCooldownRegistry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewCooldownRegistry(func() time.Time { return now })

	if _, ok := r.Active("adzuna"); ok {
		t.Fatal("fresh registry should have no cooldowns")
	}

	until := r.Trip("adzuna", time.Minute)
	if !until.Equal(now.Add(time.Minute)) {
		t.Errorf("expected until %v, got %v", now.Add(time.Minute), until)
	}
	if _, ok := r.Active("adzuna"); !ok {
		t.Error("expected adzuna cooling down")
	}
	if _, ok := r.Active("serpapi"); ok {
		t.Error("cooldown must be per provider")
	}

	// shorter trip keeps the later deadline
	if got := r.Trip("adzuna", time.Second); !got.Equal(until) {
		t.Errorf("expected deadline kept at %v, got %v", until, got)
	}

	now = now.Add(time.Minute)
	if _, ok := r.Active("adzuna"); ok {
		t.Error("cooldown should expire at its deadline")
	}
}

func TestCooldownRegistry_Reset(t *testing.T) {
	r := NewCooldownRegistry(nil)
	r.Trip("remotive", time.Hour)
	r.Reset("remotive")
	if _, ok := r.Active("remotive"); ok {
		t.Error("expected cooldown cleared")
	}
}
