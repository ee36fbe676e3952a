package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/seojinpark/krxlens/internal/export"
	"github.com/seojinpark/krxlens/internal/models"
	"github.com/seojinpark/krxlens/internal/services"
	"github.com/seojinpark/krxlens/internal/util"
)

var (
	searchDate    string
	searchTop     int
	searchOutput  string
	searchWorkers int
)

// searchCmd implements 'krxlens search <query>'
var searchCmd = &cobra.Command{
	Use:   "search <stock name or ticker>",
	Short: "Find every ETF holding a stock, ranked by weight",
	Long: `Search all KRX-listed ETFs for exposure to a stock. The query is either
a 6-digit ticker (000660) or a name fragment (SK하이닉스); every fund's
portfolio deposit file is scanned concurrently and matches are ranked by
the stock's weight, descending.

Example usage:
  krxlens search SK하이닉스
  krxlens search 000660 --date 20260825
  krxlens search SK하이닉스 --top 20 --output results.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchDate, "date", "", "Reference date YYYYMMDD (default: latest business day)")
	searchCmd.Flags().IntVar(&searchTop, "top", 0, "Show only the top N ETFs")
	searchCmd.Flags().StringVar(&searchOutput, "output", "", "Save results to this CSV file")
	searchCmd.Flags().IntVar(&searchWorkers, "workers", 0, "Concurrent portfolio fetches (default: SCAN_WORKERS)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := args[0]

	date := searchDate
	if date == "" {
		date = util.LatestBusinessDay(time.Now())
	}
	workers := searchWorkers
	if workers <= 0 {
		workers = cfg.ScanWorkers
	}

	fmt.Printf("Reference date: %s\n", date)

	client := newKRXClient()
	resolver := services.NewResolverService(client)

	fmt.Printf("Resolving '%s'...\n", query)
	target, err := resolver.Resolve(ctx, query, date)
	if err != nil {
		if errors.Is(err, services.ErrUnknownTicker) {
			return fmt.Errorf("ticker '%s' not found on KRX", query)
		}
		if errors.Is(err, services.ErrNoNameMatch) {
			return fmt.Errorf("could not find a stock matching '%s'", query)
		}
		return err
	}
	fmt.Printf("Target stock: %s (%s)\n\n", target.Name, target.Ticker)

	universe, err := client.ETFDirectory(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to fetch ETF directory: %w", err)
	}
	fmt.Printf("Found %d ETFs. Scanning portfolios with %d parallel workers...\n\n", len(universe), workers)

	scanner := services.NewScannerService(client, workers)
	result, err := scanner.Scan(ctx, target, universe, date, func(completed, total int) {
		fmt.Fprintf(os.Stderr, "\r[%d/%d] Scanning...", completed, total)
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	if len(result.Entries) == 0 {
		fmt.Printf("No ETFs found holding '%s'.\n", target.Name)
		return nil
	}

	display := result.Entries
	if searchTop > 0 && searchTop < len(display) {
		display = display[:searchTop]
	}

	fmt.Printf("\nETFs holding %s (%s) — sorted by weight:\n\n", target.Name, target.Ticker)
	printExposureTable(display, target)
	fmt.Printf("\nTotal: %d ETF(s) found.\n", len(result.Entries))

	csvPath := searchOutput
	if csvPath == "" {
		csvPath = fmt.Sprintf("etf_%s_%s.csv", target.Ticker, date)
	}
	if err := writeExposureCSV(csvPath, result, target); err != nil {
		return err
	}
	fmt.Printf("Results saved to: %s\n", csvPath)
	return nil
}

func printExposureTable(entries []models.RankedExposure, target models.Security) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "순위\tETF 티커\tETF 명\t%s 비중 (%%)\n", target.Name)
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f%%\n", e.Rank, e.FundTicker, e.FundName, e.Weight)
	}
	w.Flush()
}

func writeExposureCSV(path string, result models.ScanResult, target models.Security) error {
	header := []string{"순위", "ETF 티커", "ETF 명", fmt.Sprintf("%s 비중 (%%)", target.Name)}
	records := make([][]string, 0, len(result.Entries))
	for _, e := range result.Entries {
		records = append(records, []string{
			strconv.Itoa(e.Rank),
			e.FundTicker,
			e.FundName,
			strconv.FormatFloat(e.Weight, 'f', 2, 64),
		})
	}
	return export.WriteCSV(path, header, records)
}
