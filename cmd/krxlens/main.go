package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/seojinpark/krxlens/config"
	"github.com/seojinpark/krxlens/internal/krx"
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

// rootCmd is the base command for the krxlens CLI
var rootCmd = &cobra.Command{
	Use:   "krxlens",
	Short: "KRX market data toolkit",
	Long: `krxlens fetches Korean exchange (KRX) market data and reshapes it into
small tables: ETF exposure scans, KOSPI fundamentals, JSON snapshots for
static hosting, and a read-only HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = log.InfoLevel
		}
		log.SetLevel(level)
		return nil
	},
}

// newKRXClient builds the portal client, honoring the test/base-URL override.
func newKRXClient() *krx.Client {
	if cfg.KRXBaseURL != "" {
		return krx.NewClientWithBaseURL(cfg.KRXBaseURL, cfg.RateLimit)
	}
	return krx.NewClient(cfg.RateLimit)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
