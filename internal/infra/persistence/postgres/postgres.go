package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"dispatch/config"
	"dispatch/internal/domain/lifecycle"
	"dispatch/internal/errors"
	"dispatch/internal/infra/persistence/model"

	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const (
	poolSampleInterval = 10 * time.Second
	poolContentionWarn = 100 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the audit trail database. A missing postgres section yields a nil
// *gorm.DB and the audit repository degrades to a no-op.
func New(params Params) (*gorm.DB, error) {
	if params.Config.Postgres == nil {
		params.Logger.Info("Postgres not configured, compliance audits will not be persisted")

		return nil, nil
	}

	base, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}
	db := base.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		Logger:                 newQueryLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	watcher := &poolWatcher{db: sqlDB, logger: params.Logger, interval: poolSampleInterval}

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}
			if err := db.WithContext(ctx).AutoMigrate(&model.ComplianceAuditModel{}); err != nil {
				return errors.Wrap(err, "failed to migrate compliance audit table")
			}

			watcher.start()

			return nil
		},
		OnStop: func(_ context.Context) error {
			watcher.stop()

			return sqlDB.Close()
		},
	})

	return db, nil
}

// poolWatcher samples sql.DB stats and reports callers blocked on the pool
type poolWatcher struct {
	db       *sql.DB
	logger   *slog.Logger
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func (w *poolWatcher) start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.run(ctx)
}

func (w *poolWatcher) stop() {
	if w.cancel == nil {
		return
	}

	w.cancel()
	<-w.done
}

func (w *poolWatcher) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := w.db.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := w.db.Stats()
			w.report(ctx, last, current)
			last = current
		}
	}
}

func (w *poolWatcher) report(ctx context.Context, last, current sql.DBStats) {
	waits := current.WaitCount - last.WaitCount
	if waits <= 0 {
		return
	}

	waited := current.WaitDuration - last.WaitDuration
	level := slog.LevelDebug
	if waited >= poolContentionWarn {
		level = slog.LevelWarn
	}

	w.logger.LogAttrs(ctx, level, "Postgres pool contention",
		slog.Int64("waits", waits),
		slog.Duration("waited", waited),
		slog.Duration("avg_wait", waited/time.Duration(waits)),
		slog.Int("open_conns", current.OpenConnections),
		slog.Int("in_use", current.InUse),
		slog.Int("idle", current.Idle),
		slog.Int("max_open", current.MaxOpenConnections),
	)
}
