package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(1, 2)

	// Burst of 2 allowed immediately, third must be throttled.
	if !l.Allow("labels") {
		t.Error("first request should be allowed")
	}
	if !l.Allow("labels") {
		t.Error("second request should be allowed (burst)")
	}
	if l.Allow("labels") {
		t.Error("third request should be throttled")
	}
}

func TestLimiter_PerContainer(t *testing.T) {
	l := NewLimiter(1, 1)

	if !l.Allow("labels") {
		t.Error("labels: first request should be allowed")
	}
	if !l.Allow("corrected") {
		t.Error("corrected: separate container has its own budget")
	}
	if l.Allow("labels") {
		t.Error("labels: second request should be throttled")
	}
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	l := NewLimiter(0.001, 1)

	// Drain the burst.
	if err := l.Wait(context.Background(), "labels"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "labels"); err == nil {
		t.Error("expected wait to fail when context expires first")
	}
}

func TestLimiter_SetContainerRate(t *testing.T) {
	l := NewLimiter(1, 1)
	l.SetContainerRate("labels", 100, 10)

	allowed := 0
	for i := 0; i < 10; i++ {
		if l.Allow("labels") {
			allowed++
		}
	}
	if allowed != 10 {
		t.Errorf("expected custom burst of 10, got %d", allowed)
	}
}
