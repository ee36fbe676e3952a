package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/seojinpark/krxlens/internal/cache"
	"github.com/seojinpark/krxlens/internal/export"
	"github.com/seojinpark/krxlens/internal/models"
	"github.com/seojinpark/krxlens/internal/services"
	"github.com/seojinpark/krxlens/internal/util"
)

var (
	fundDate   string
	fundSector string
	fundSort   string
	fundTop    int
	fundOutput string
)

// fundamentalsCmd implements 'krxlens fundamentals'
var fundamentalsCmd = &cobra.Command{
	Use:   "fundamentals",
	Short: "List KOSPI stocks with PER, PBR, market cap, and sector",
	Long: `List KOSPI-listed stocks with their valuation ratios and KRX industry
sector, sorted by market cap (descending) or PER/PBR (ascending).

Example usage:
  krxlens fundamentals
  krxlens fundamentals --sector 전기전자
  krxlens fundamentals --sort PBR --top 30
  krxlens fundamentals --output result.csv`,
	RunE: runFundamentals,
}

func init() {
	rootCmd.AddCommand(fundamentalsCmd)

	fundamentalsCmd.Flags().StringVar(&fundDate, "date", "", "Reference date YYYYMMDD (default: latest business day)")
	fundamentalsCmd.Flags().StringVar(&fundSector, "sector", "", "Filter by sector name, e.g. 전기전자 (partial match)")
	fundamentalsCmd.Flags().StringVar(&fundSort, "sort", "marketcap", "Sort metric: marketcap, PER, or PBR")
	fundamentalsCmd.Flags().IntVar(&fundTop, "top", 50, "Show top N results")
	fundamentalsCmd.Flags().StringVar(&fundOutput, "output", "", "Save full results to this CSV file")
}

func runFundamentals(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	date := fundDate
	if date == "" {
		date = util.LatestBusinessDay(time.Now())
	}

	var metric models.SortMetric
	switch fundSort {
	case "marketcap":
		metric = models.SortByMarketCap
	case "PER":
		metric = models.SortByPER
	case "PBR":
		metric = models.SortByPBR
	default:
		return fmt.Errorf("invalid --sort %q: must be marketcap, PER, or PBR", fundSort)
	}

	fmt.Printf("Reference date: %s\n\n", date)

	svc := services.NewFundamentalsService(newKRXClient(), cache.NewSnapshotCache())

	fmt.Println("Loading sector and fundamental data...")
	rows, err := svc.Load(ctx, date)
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			return fmt.Errorf("no data returned for %s (market holiday?)", date)
		}
		return err
	}
	fmt.Printf("  %d stocks loaded.\n\n", len(rows))

	valid := services.FilterValid(rows)

	if fundSector != "" {
		filtered := services.FilterSector(valid, fundSector)
		if len(filtered) == 0 {
			fmt.Printf("No stocks found for sector '%s'.\n", fundSector)
			fmt.Printf("Available sectors: %s\n", strings.Join(services.Sectors(valid), ", "))
			return nil
		}
		valid = filtered
	}

	sorted := services.SortRows(valid, metric)

	display := sorted
	if fundTop > 0 && fundTop < len(display) {
		display = display[:fundTop]
	}

	sectorLabel := ""
	if fundSector != "" {
		sectorLabel = fmt.Sprintf(" | 섹터: %s", fundSector)
	}
	fmt.Printf("KOSPI 종목 (기준일: %s%s) — %s:\n\n", date, sectorLabel, fundSort)
	printFundamentalsTable(display)
	fmt.Printf("\n표시: %d개 / 전체 유효 종목: %d개\n", len(display), len(sorted))

	csvPath := fundOutput
	if csvPath == "" {
		csvPath = fmt.Sprintf("kospi_fundamentals_%s.csv", date)
	}
	if err := writeFundamentalsCSV(csvPath, sorted); err != nil {
		return err
	}
	fmt.Printf("Results saved to: %s\n", csvPath)
	return nil
}

func printFundamentalsTable(rows []models.FundamentalRow) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "순위\t티커\t종목명\t섹터\tPER\tPBR\tEPS\tBPS\t시가총액(억)")
	for i, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%.2f\t%.0f\t%.0f\t%d\n",
			i+1, r.Ticker, r.Name, r.Sector, r.PER, r.PBR, r.EPS, r.BPS, r.MarketCap)
	}
	w.Flush()
}

func writeFundamentalsCSV(path string, rows []models.FundamentalRow) error {
	header := []string{"순위", "티커", "종목명", "섹터", "PER", "PBR", "EPS", "BPS", "시가총액(억)"}
	records := make([][]string, 0, len(rows))
	for i, r := range rows {
		records = append(records, []string{
			strconv.Itoa(i + 1),
			r.Ticker,
			r.Name,
			r.Sector,
			strconv.FormatFloat(r.PER, 'f', 2, 64),
			strconv.FormatFloat(r.PBR, 'f', 2, 64),
			strconv.FormatFloat(r.EPS, 'f', 0, 64),
			strconv.FormatFloat(r.BPS, 'f', 0, 64),
			strconv.FormatInt(r.MarketCap, 10),
		})
	}
	return export.WriteCSV(path, header, records)
}
