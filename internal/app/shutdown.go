package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	if err := a.wsFeed.Close(); err != nil {
		a.logger.Error("websocket-feed-close-error", zap.Error(err))
	}

	if err := a.journal.Close(); err != nil {
		a.logger.Error("journal-close-error", zap.Error(err))
	}

	a.wg.Wait()

	if a.matchupCache != nil {
		a.matchupCache.Close()
	}

	a.logger.Info("application-shutdown-complete")

	return nil
}
