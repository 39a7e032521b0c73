package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/genson"
)

// settleDelay lets a burst of file events finish before reloading.
const settleDelay = 100 * time.Millisecond

// RunWatch renders once, then reloads the schema and renders again after
// every change the engine's loader reports, until ctx is done.
// A failed reload keeps the previous schema and waits for the next change.
func RunWatch(ctx context.Context, engine *genson.Engine, logger *slog.Logger, status io.Writer, render func() error) error {
	watchCh, err := engine.Watch(ctx)
	if err != nil {
		return err
	}

	// 1. Initial render
	if err := render(); err != nil {
		logger.Error("Render failed", "err", err)
	}
	PrintSystemMessage(status, "Waiting for changes...")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping watcher")
			return nil
		case event, ok := <-watchCh:
			if !ok {
				return nil
			}
			logger.Info("Change detected, triggering reload", "event", event)
			PrintSystemMessage(status, "Change detected in '%s'.", event)

			// 2. Debounce
			drain(ctx, watchCh, settleDelay)

			// 3. Reload & Render
			if err := engine.Reload(); err != nil {
				logger.Error("Reload failed", "err", err)
				PrintSystemMessage(status, "Reload failed, keeping previous schema: %v", err)
				continue
			}
			if err := render(); err != nil {
				logger.Error("Render failed", "err", err)
			}
			PrintSystemMessage(status, "Waiting for changes...")
		}
	}
}

// drain swallows events arriving within d of each other.
func drain(ctx context.Context, ch <-chan string, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			timer.Reset(d)
		}
	}
}
