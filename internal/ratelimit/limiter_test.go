package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_EnforcesQuota(t *testing.T) {
	l := NewMemoryLimiter()

	for i := 0; i < 10; i++ {
		result, err := l.Check(context.Background(), "sess:abc", 10, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	result, err := l.Check(context.Background(), "sess:abc", 10, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Allowed {
		t.Error("11th request in the window should be denied")
	}
	if result.Remaining != 0 {
		t.Errorf("expected remaining=0 on denial, got %d", result.Remaining)
	}
}

func TestMemoryLimiter_DenialDoesNotConsume(t *testing.T) {
	l := NewMemoryLimiter()

	l.Check(context.Background(), "k", 1, time.Minute)
	for i := 0; i < 5; i++ {
		result, _ := l.Check(context.Background(), "k", 1, time.Minute)
		if result.Allowed {
			t.Fatalf("check %d should be denied", i)
		}
	}
}

func TestMemoryLimiter_KeysIndependent(t *testing.T) {
	l := NewMemoryLimiter()

	l.Check(context.Background(), "a", 1, time.Minute)
	result, _ := l.Check(context.Background(), "b", 1, time.Minute)
	if !result.Allowed {
		t.Error("quota for key 'a' should not affect key 'b'")
	}
}

func TestMemoryLimiter_WindowSlides(t *testing.T) {
	l := NewMemoryLimiter()
	window := 20 * time.Millisecond

	result, _ := l.Check(context.Background(), "w", 1, window)
	if !result.Allowed {
		t.Fatal("first request should be allowed")
	}
	result, _ = l.Check(context.Background(), "w", 1, window)
	if result.Allowed {
		t.Fatal("second request inside the window should be denied")
	}

	time.Sleep(window + 5*time.Millisecond)
	result, _ = l.Check(context.Background(), "w", 1, window)
	if !result.Allowed {
		t.Error("request after the window elapsed should be allowed")
	}
}

func TestMemoryLimiter_Remaining(t *testing.T) {
	l := NewMemoryLimiter()

	result, _ := l.Check(context.Background(), "r", 5, time.Minute)
	if result.Remaining != 4 {
		t.Errorf("expected remaining=4 after first request, got %d", result.Remaining)
	}
	result, _ = l.Check(context.Background(), "r", 5, time.Minute)
	if result.Remaining != 3 {
		t.Errorf("expected remaining=3 after second request, got %d", result.Remaining)
	}
}

func TestNewLimiter_NilRedisSelectsMemory(t *testing.T) {
	l := NewLimiter(nil)
	if _, ok := l.(*MemoryLimiter); !ok {
		t.Fatalf("expected MemoryLimiter for nil redis, got %T", l)
	}
}
