package snapshotwarm

import (
	"context"
	"time"

	"log/slog"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

func (w *Worker) worker(ctx context.Context) {
	w.warm(ctx)

	ticker := time.NewTicker(w.c.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.warm(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// warm rebuilds each configured preset. One failing period does not stop
// the others.
func (w *Worker) warm(ctx context.Context) {
	for _, p := range w.c.Periods {
		if ctx.Err() != nil {
			return
		}
		snap, err := w.dashboard.Refresh(ctx, entity.SnapshotRequest{Period: p})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.metrics.RecordWarmRun(string(p), "error")
			slog.Default().ErrorContext(ctx, "can't warm snapshot",
				slog.String("err", err.Error()),
				slog.String("period", string(p)),
			)
			continue
		}
		w.metrics.RecordWarmRun(string(p), "ok")
		slog.Default().DebugContext(ctx, "snapshot warmed",
			slog.String("period", string(p)),
			slog.String("snapshot_id", snap.ID),
		)
	}
}
