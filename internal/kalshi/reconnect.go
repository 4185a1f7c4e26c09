package kalshi

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ReconnectConfig controls exponential backoff with jitter between
// WebSocket reconnection attempts.
type ReconnectConfig struct {
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	JitterPercent     float64
}

// ReconnectManager retries a connect function with exponential backoff.
type ReconnectManager struct {
	config         ReconnectConfig
	logger         *zap.Logger
	currentBackoff time.Duration
	mu             sync.Mutex
}

// NewReconnectManager builds a ReconnectManager.
func NewReconnectManager(cfg ReconnectConfig, logger *zap.Logger) *ReconnectManager {
	return &ReconnectManager{config: cfg, logger: logger, currentBackoff: cfg.InitialDelay}
}

// Reconnect retries connectFunc until it succeeds or ctx is canceled.
func (rm *ReconnectManager) Reconnect(ctx context.Context, connectFunc func(context.Context) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		backoff := rm.nextBackoff()
		if rm.logger != nil {
			rm.logger.Info("attempting reconnection", zap.Duration("backoff", backoff))
		}
		ReconnectAttemptsTotal.Inc()

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}

		if err := connectFunc(ctx); err == nil {
			rm.Reset()
			if rm.logger != nil {
				rm.logger.Info("reconnection successful")
			}
			return nil
		} else {
			if rm.logger != nil {
				rm.logger.Warn("reconnection failed", zap.Error(err))
			}
			ReconnectFailuresTotal.Inc()
			rm.incrementBackoff()
		}
	}
}

// Reset returns the backoff to its initial delay.
func (rm *ReconnectManager) Reset() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.currentBackoff = rm.config.InitialDelay
}

func (rm *ReconnectManager) nextBackoff() time.Duration {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	jitter := rand.Float64() * rm.config.JitterPercent
	return time.Duration(float64(rm.currentBackoff) * (1.0 + jitter))
}

func (rm *ReconnectManager) incrementBackoff() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	next := time.Duration(float64(rm.currentBackoff) * rm.config.BackoffMultiplier)
	if next > rm.config.MaxDelay {
		next = rm.config.MaxDelay
	}
	rm.currentBackoff = next
}
