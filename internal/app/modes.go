package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// MonitorMode runs the scan loop without the HTTP API. Used for headless
// deployments where the bot is managed purely through notifications.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	g, ctx := errgroup.WithContext(ctx)

	deps.Notifier.Startup(ctx, a.cfg.Chain.Network, a.cfg.Chain.DryRun)

	g.Go(func() error {
		return deps.Monitor.Run(ctx)
	})
	a.startArchiver(ctx, g, deps)

	return a.wait(g)
}

// ServerMode runs the HTTP API and websocket hub without scanning. Used to
// inspect recorded opportunities and edit configuration while the scanning
// deployment is elsewhere.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Hub.Run(ctx)
	})
	a.startServer(ctx, g, deps)
	a.startArchiver(ctx, g, deps)

	return a.wait(g)
}

// FullMode runs everything: the scan loop, the HTTP API, the websocket hub,
// and the archive job.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	g, ctx := errgroup.WithContext(ctx)

	deps.Notifier.Startup(ctx, a.cfg.Chain.Network, a.cfg.Chain.DryRun)

	g.Go(func() error {
		return deps.Monitor.Run(ctx)
	})
	g.Go(func() error {
		return deps.Hub.Run(ctx)
	})
	a.startServer(ctx, g, deps)
	a.startArchiver(ctx, g, deps)

	return a.wait(g)
}

// startServer launches the HTTP listener and a companion goroutine that shuts
// it down gracefully when the group context is cancelled.
func (a *App) startServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	g.Go(func() error {
		if err := deps.Server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return deps.Server.Shutdown(shutdownCtx)
	})
}

// startArchiver launches the periodic archive job when one is configured.
func (a *App) startArchiver(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	if deps.Archiver == nil {
		return
	}
	g.Go(func() error {
		return deps.Archiver.RunPeriodic(ctx, deps.ArchiveInterval)
	})
}

// wait blocks until every goroutine in the group returns, translating the
// cancellation that ends a normal shutdown into a nil error.
func (a *App) wait(g *errgroup.Group) error {
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
