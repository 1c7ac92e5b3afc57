package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jekabolt/grbpwr-analytics/app"
	"github.com/jekabolt/grbpwr-analytics/config"
	"github.com/jekabolt/grbpwr-analytics/internal/cache"
	"github.com/jekabolt/grbpwr-analytics/internal/dto"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/jekabolt/grbpwr-analytics/internal/store"
	"github.com/jekabolt/grbpwr-analytics/internal/telemetry"
	"github.com/spf13/cobra"
)

var (
	snapshotPeriod string
	snapshotFrom   string
	snapshotTo     string
	snapshotTop    int
)

// snapshot builds one snapshot straight from the database, bypassing the
// cache, and writes it to stdout. Logs go to stderr.
func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("cannot load a config %v", err.Error())
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(cfg.Logger.Level),
	})))

	req, err := snapshotRequest()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := store.New(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("couldn't connect to mysql: %w", err)
	}
	defer db.Close()

	d, err := app.NewDashboard(cfg, db, cache.Nop{}, telemetry.New())
	if err != nil {
		return err
	}
	snap, err := d.Refresh(ctx, req)
	if err != nil {
		return fmt.Errorf("can't build snapshot: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(dto.ConvertEntitySnapshotToDto(snap))
}

func snapshotRequest() (entity.SnapshotRequest, error) {
	req := entity.SnapshotRequest{
		Period: entity.Period(snapshotPeriod),
		TopN:   snapshotTop,
	}
	var err error
	if snapshotFrom != "" {
		if req.From, err = time.Parse(time.DateOnly, snapshotFrom); err != nil {
			return req, fmt.Errorf("bad --from: %w", err)
		}
	}
	if snapshotTo != "" {
		if req.To, err = time.Parse(time.DateOnly, snapshotTo); err != nil {
			return req, fmt.Errorf("bad --to: %w", err)
		}
	}
	return req, nil
}
