package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "grbpwr-analytics",
		Short: "Sales and inventory analytics for the grbpwr admin dashboard",
		RunE:  run,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the grbpwr-analytics service version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	snapshotCmd = &cobra.Command{
		Use:   "snapshot",
		Short: "Build a single metrics snapshot and print it as JSON",
		RunE:  snapshot,
	}

	cfgFile string
	version string
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to configuration file (optional)")

	snapshotCmd.Flags().StringVarP(&snapshotPeriod, "period", "p", "month", "day, week, month, year or custom")
	snapshotCmd.Flags().StringVar(&snapshotFrom, "from", "", "custom range start, 2006-01-02")
	snapshotCmd.Flags().StringVar(&snapshotTo, "to", "", "custom range end, 2006-01-02")
	snapshotCmd.Flags().IntVar(&snapshotTop, "top", 0, "size of ranked lists, 0 uses the configured default")

	rootCmd.AddCommand(versionCmd, snapshotCmd)
	if err := rootCmd.Execute(); err != nil {
		slog.Default().Error("can't start the service", slog.String("err", err.Error()))
		os.Exit(-1)
	}
}
