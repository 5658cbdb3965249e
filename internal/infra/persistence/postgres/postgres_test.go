package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"dispatch/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func TestNew_WithoutPostgres(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	db, err := New(Params{Lifecycle: lc, Config: &config.Config{}, Logger: slog.Default()})
	require.NoError(t, err)
	assert.Nil(t, db)

	lc.RequireStart()
	lc.RequireStop()
}

func TestPoolWatcher_Report(t *testing.T) {
	tests := []struct {
		name      string
		waits     int64
		waited    time.Duration
		wantLevel string
	}{
		{"no contention", 0, 0, ""},
		{"short waits", 3, 30 * time.Millisecond, "DEBUG"},
		{"long waits", 2, 400 * time.Millisecond, "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			watcher := &poolWatcher{
				logger: slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
			}

			last := sql.DBStats{WaitCount: 10, WaitDuration: time.Second}
			current := sql.DBStats{
				WaitCount:    last.WaitCount + tt.waits,
				WaitDuration: last.WaitDuration + tt.waited,
				InUse:        4,
			}
			watcher.report(context.Background(), last, current)

			if tt.wantLevel == "" {
				assert.Empty(t, buf.String())

				return
			}
			assert.Contains(t, buf.String(), `"level":"`+tt.wantLevel+`"`)
			assert.Contains(t, buf.String(), `"waits":`)
			assert.Contains(t, buf.String(), `"in_use":4`)
		})
	}
}

func TestPoolWatcher_StopBeforeStart(t *testing.T) {
	watcher := &poolWatcher{}
	assert.NotPanics(t, watcher.stop)
}
