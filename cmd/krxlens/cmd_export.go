package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seojinpark/krxlens/internal/cache"
	"github.com/seojinpark/krxlens/internal/export"
	"github.com/seojinpark/krxlens/internal/models"
	"github.com/seojinpark/krxlens/internal/services"
	"github.com/seojinpark/krxlens/internal/util"
)

var exportOut string

// exportCmd implements 'krxlens export', the scheduled snapshot job that
// publishes the fundamentals table for static hosting.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the KOSPI fundamentals snapshot as JSON",
	Long: `Fetch the latest KOSPI fundamentals and write them as a dated JSON
snapshot, suitable for serving from a static host. Intended to run
from a daily scheduler.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "docs/kospi.json", "Output file path")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	date := util.LatestBusinessDay(time.Now())

	fmt.Printf("Fetching KOSPI data for %s...\n", date)

	svc := services.NewFundamentalsService(newKRXClient(), cache.NewSnapshotCache())
	rows, err := svc.Load(ctx, date)
	if err != nil {
		return fmt.Errorf("no data returned from KRX: %w", err)
	}

	data := services.SortRows(services.FilterValid(rows), models.SortByMarketCap)

	snap := export.Snapshot{
		Date:  date,
		Total: len(data),
		Data:  data,
	}
	if err := export.WriteJSON(exportOut, snap); err != nil {
		return err
	}

	fmt.Printf("Saved %d stocks to %s\n", len(data), exportOut)
	return nil
}
