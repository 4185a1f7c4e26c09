package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown. It returns a
// non-zero-worthy error if startup reconciliation exhausts its retries
// or the exchange rejects the configured credentials, per the operator
// surface's exit-code contract.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("sport", a.sport),
		zap.Bool("dry-run", a.cfg.DryRun),
		zap.String("log-level", a.cfg.LogLevel))

	if err := a.reconciler.Reconcile(a.ctx); err != nil {
		return fmt.Errorf("startup reconciliation: %w", err)
	}

	if err := a.startComponents(); err != nil {
		return err
	}

	a.healthChecker.SetReady(true)
	a.logger.Info("application-ready", zap.String("http-addr", ":"+a.cfg.HTTPPort))

	return a.waitForShutdown()
}

func (a *App) startComponents() error {
	a.wg.Add(1)
	go a.runHTTPServer()

	if err := a.wsFeed.Start(); err != nil {
		return fmt.Errorf("start websocket feed: %w", err)
	}

	a.wg.Add(1)
	go a.runEngine(a.ctx)

	return nil
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
