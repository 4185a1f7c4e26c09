package kalshi

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestReconnectManagerSucceedsEventually(t *testing.T) {
	rm := NewReconnectManager(ReconnectConfig{
		InitialDelay:      time.Millisecond,
		MaxDelay:          10 * time.Millisecond,
		BackoffMultiplier: 2,
		JitterPercent:     0,
	}, nil)

	attempts := 0
	err := rm.Reconnect(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestReconnectManagerAbortsOnContextCancel(t *testing.T) {
	rm := NewReconnectManager(ReconnectConfig{
		InitialDelay:      50 * time.Millisecond,
		MaxDelay:          time.Second,
		BackoffMultiplier: 2,
		JitterPercent:     0,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rm.Reconnect(ctx, func(ctx context.Context) error {
		t.Fatal("connectFunc should not be called once context is canceled")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReconnectManagerResetsBackoffOnSuccess(t *testing.T) {
	rm := NewReconnectManager(ReconnectConfig{
		InitialDelay:      time.Millisecond,
		MaxDelay:          time.Second,
		BackoffMultiplier: 2,
		JitterPercent:     0,
	}, nil)

	_ = rm.Reconnect(context.Background(), func(ctx context.Context) error { return nil })
	if rm.currentBackoff != rm.config.InitialDelay {
		t.Errorf("currentBackoff = %v, want reset to %v", rm.currentBackoff, rm.config.InitialDelay)
	}
}
