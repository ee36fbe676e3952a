package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/seojinpark/krxlens/internal/cache"
	"github.com/seojinpark/krxlens/internal/krx"
	"github.com/seojinpark/krxlens/internal/models"
	"github.com/seojinpark/krxlens/internal/util"
)

// ErrNoData means the portal returned nothing to join for the date,
// typically because it is a market holiday.
var ErrNoData = errors.New("no market data for date")

// MarketData is the slice of the data source the fundamentals pipeline needs.
type MarketData interface {
	SectorClassifications(ctx context.Context, date, market string) ([]krx.SectorRow, error)
	Fundamentals(ctx context.Context, date, market string) ([]krx.FundamentalRow, error)
}

// FundamentalsService builds the KOSPI fundamentals table: sector
// classification joined with valuation ratios, market cap converted to 억원.
type FundamentalsService struct {
	src  MarketData
	snap *cache.SnapshotCache
	now  func() time.Time
}

// NewFundamentalsService creates a new FundamentalsService
func NewFundamentalsService(src MarketData, snap *cache.SnapshotCache) *FundamentalsService {
	return &FundamentalsService{
		src:  src,
		snap: snap,
		now:  time.Now,
	}
}

// Load fetches sector and fundamental reports for a date and inner-joins
// them on ticker. Rows without a counterpart in the other report are dropped.
func (s *FundamentalsService) Load(ctx context.Context, date string) ([]models.FundamentalRow, error) {
	defer TrackTime("Load", time.Now())

	sectors, err := s.src.SectorClassifications(ctx, date, "STK")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sector data: %w", err)
	}

	funds, err := s.src.Fundamentals(ctx, date, "STK")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fundamental data: %w", err)
	}

	byTicker := make(map[string]krx.FundamentalRow, len(funds))
	for _, f := range funds {
		byTicker[f.Ticker] = f
	}

	var rows []models.FundamentalRow
	for _, sec := range sectors {
		f, ok := byTicker[sec.Ticker]
		if !ok {
			continue
		}
		rows = append(rows, models.FundamentalRow{
			Ticker:    sec.Ticker,
			Name:      sec.Name,
			Sector:    sec.Sector,
			PER:       f.PER,
			PBR:       f.PBR,
			EPS:       f.EPS,
			BPS:       f.BPS,
			MarketCap: int64(math.Round(float64(sec.MarketCap) / 1e8)),
		})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, date)
	}
	return rows, nil
}

// Snapshot returns the table for the latest business day, refreshing the
// cache when its date has rolled over. Concurrent refreshes for the same
// date are harmless; the last writer wins with identical data.
func (s *FundamentalsService) Snapshot(ctx context.Context) (string, []models.FundamentalRow, error) {
	date := util.LatestBusinessDay(s.now())

	if rows, ok := s.snap.Get(date); ok {
		return date, rows, nil
	}

	log.Infof("Refreshing fundamentals snapshot for %s...", date)
	rows, err := s.Load(ctx, date)
	if err != nil {
		return "", nil, err
	}
	s.snap.Set(date, rows)
	log.Infof("Snapshot refreshed: %d stocks loaded.", len(rows))

	return date, rows, nil
}

// CachedDate reports the trading date currently held in the snapshot cache,
// or "" before the first refresh.
func (s *FundamentalsService) CachedDate() string {
	return s.snap.Date()
}

// FilterValid drops rows without meaningful valuation ratios: loss-making
// stocks (PER <= 0) and rows the portal had no data for.
func FilterValid(rows []models.FundamentalRow) []models.FundamentalRow {
	var valid []models.FundamentalRow
	for _, r := range rows {
		if r.PER > 0 && r.PBR > 0 {
			valid = append(valid, r)
		}
	}
	return valid
}

// FilterSector keeps rows whose sector name contains the query,
// case-insensitively.
func FilterSector(rows []models.FundamentalRow, sector string) []models.FundamentalRow {
	needle := strings.ToLower(sector)
	var filtered []models.FundamentalRow
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Sector), needle) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// SortRows orders rows by the chosen metric: market cap descending,
// PER and PBR ascending. The input slice is not modified.
func SortRows(rows []models.FundamentalRow, metric models.SortMetric) []models.FundamentalRow {
	sorted := make([]models.FundamentalRow, len(rows))
	copy(sorted, rows)

	switch metric {
	case models.SortByPER:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PER < sorted[j].PER })
	case models.SortByPBR:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PBR < sorted[j].PBR })
	default:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MarketCap > sorted[j].MarketCap })
	}
	return sorted
}

// Sectors returns the distinct sector names in the table, sorted.
func Sectors(rows []models.FundamentalRow) []string {
	seen := make(map[string]struct{})
	var sectors []string
	for _, r := range rows {
		if r.Sector == "" {
			continue
		}
		if _, ok := seen[r.Sector]; ok {
			continue
		}
		seen[r.Sector] = struct{}{}
		sectors = append(sectors, r.Sector)
	}
	sort.Strings(sectors)
	return sectors
}
