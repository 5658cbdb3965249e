package impl

import (
	"context"
	"log/slog"
	"time"

	"dispatch/config"
	"dispatch/internal/usecase"

	"go.uber.org/fx"
)

// TrackingSweeperParams holds dependencies for the registry sweeper, injected by Fx
type TrackingSweeperParams struct {
	fx.In

	Lc       fx.Lifecycle
	Config   *config.Config
	Logger   *slog.Logger
	Tracking usecase.TrackingUsecase
}

// RegisterTrackingSweeper starts a periodic Sweep when tracking.sweepInterval is set.
// Reads keep evicting lazily whether or not the sweeper runs.
func RegisterTrackingSweeper(params TrackingSweeperParams) {
	if params.Config.Tracking == nil || params.Config.Tracking.SweepInterval <= 0 {
		params.Logger.Info("Tracking sweeper disabled, relying on lazy eviction")

		return
	}

	interval := params.Config.Tracking.SweepInterval
	sweepCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	params.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				runSweeper(sweepCtx, params.Tracking, interval, params.Logger)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}

			return nil
		},
	})
}

func runSweeper(ctx context.Context, tracking usecase.TrackingUsecase, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := tracking.Sweep(); evicted > 0 {
				logger.Debug("Swept stale driver locations",
					slog.Int("evicted", evicted),
					slog.Int("remaining", tracking.ActiveCount()),
				)
			}
		}
	}
}
