package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/seojinpark/krxlens/internal/krx"
	"github.com/seojinpark/krxlens/internal/models"
)

// ErrEmptyUniverse means no ETFs are listed for the reference date, so
// there is nothing to scan. Usually the date is a holiday.
var ErrEmptyUniverse = errors.New("no ETFs listed for date")

// PortfolioFetcher is the slice of the market data source the scanner needs.
// Implementations must be safe for concurrent use; an empty portfolio is
// (nil, nil), a transport or parse failure is a non-nil error.
type PortfolioFetcher interface {
	ETFPortfolio(ctx context.Context, fundTicker, date string) ([]krx.Holding, error)
}

// ProgressFunc receives (completed, total) after every finished fetch,
// in completion order. Implementations must be fast; the scanner calls it
// from worker goroutines.
type ProgressFunc func(completed, total int)

// ScannerService finds every ETF whose portfolio deposit file contains a
// target security, querying the whole fund universe through a bounded pool
// of concurrent fetches.
type ScannerService struct {
	fetcher PortfolioFetcher
	workers int
}

// NewScannerService creates a new ScannerService. workers caps the number
// of portfolio fetches in flight at once.
func NewScannerService(fetcher PortfolioFetcher, workers int) *ScannerService {
	if workers < 1 {
		workers = 1
	}
	return &ScannerService{
		fetcher: fetcher,
		workers: workers,
	}
}

// Scan fetches the portfolio of every fund in the universe and collects the
// funds that hold target, ranked by weight descending.
//
// Per-fund failures are absorbed: a fund whose fetch errors simply
// contributes no record, and the scan always covers all N funds before
// returning. Completion order is unconstrained; it only influences the
// relative order of exactly equal weights.
func (s *ScannerService) Scan(ctx context.Context, target models.Security, universe []krx.ListedSecurity, date string, progress ProgressFunc) (models.ScanResult, error) {
	defer TrackTime("Scan", time.Now())

	result := models.ScanResult{
		Target:  target,
		Date:    date,
		Scanned: len(universe),
	}
	if len(universe) == 0 {
		return result, ErrEmptyUniverse
	}

	total := len(universe)
	records := make(chan models.ExposureRecord, total)
	var completed atomic.Int64

	g := &errgroup.Group{}
	g.SetLimit(s.workers)

	for _, fund := range universe {
		fund := fund
		g.Go(func() error {
			rec, found := s.scanFund(ctx, fund, target, date)

			done := completed.Add(1)
			if progress != nil {
				progress(int(done), total)
			}
			if found {
				records <- rec
			}
			return nil
		})
	}

	// Workers never return errors; Wait only fences completion.
	_ = g.Wait()
	close(records)

	var matches []models.ExposureRecord
	for rec := range records {
		matches = append(matches, rec)
	}

	result.Entries = Rank(matches)
	return result, nil
}

// scanFund fetches one fund's portfolio and extracts the target's weight.
// The snapshot is discarded after extraction; nothing is shared across funds.
func (s *ScannerService) scanFund(ctx context.Context, fund krx.ListedSecurity, target models.Security, date string) (models.ExposureRecord, bool) {
	holdings, err := s.fetcher.ETFPortfolio(ctx, fund.Ticker, date)
	if err != nil {
		log.Debugf("skipping ETF %s (%s): %v", fund.Ticker, fund.Name, err)
		return models.ExposureRecord{}, false
	}

	for _, h := range holdings {
		if h.Ticker == target.Ticker {
			return models.ExposureRecord{
				FundTicker: fund.Ticker,
				FundName:   fund.Name,
				Weight:     h.Weight,
			}, true
		}
	}
	return models.ExposureRecord{}, false
}
