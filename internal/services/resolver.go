package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seojinpark/krxlens/internal/krx"
	"github.com/seojinpark/krxlens/internal/models"
)

var (
	ErrUnknownTicker = errors.New("ticker not listed on KRX")
	ErrNoNameMatch   = errors.New("no listed security matches query")
)

// Directory is the slice of the market data source the resolver needs.
type Directory interface {
	ListedSecurities(ctx context.Context, date, market string) ([]krx.ListedSecurity, error)
}

// ResolverService maps a user query (6-digit ticker or name fragment) to a
// canonical listed security.
type ResolverService struct {
	dir Directory
}

// NewResolverService creates a new ResolverService
func NewResolverService(dir Directory) *ResolverService {
	return &ResolverService{dir: dir}
}

// Resolve returns the (ticker, name) pair for a query against the full KRX
// directory on the given date. An all-digit query is treated as a ticker and
// validated against the directory. Anything else is matched as a
// case-sensitive substring of the display name; when several names contain
// the fragment, whichever the directory enumerates first wins — callers that
// need a specific security should pass the ticker.
func (s *ResolverService) Resolve(ctx context.Context, query, date string) (models.Security, error) {
	defer TrackTime("Resolve", time.Now())

	listed, err := s.dir.ListedSecurities(ctx, date, "ALL")
	if err != nil {
		return models.Security{}, fmt.Errorf("failed to fetch KRX directory: %w", err)
	}

	if isAllDigits(query) {
		for _, sec := range listed {
			if sec.Ticker == query {
				return models.Security{Ticker: sec.Ticker, Name: sec.Name}, nil
			}
		}
		return models.Security{}, fmt.Errorf("%w: %s", ErrUnknownTicker, query)
	}

	for _, sec := range listed {
		if strings.Contains(sec.Name, query) {
			return models.Security{Ticker: sec.Ticker, Name: sec.Name}, nil
		}
	}
	return models.Security{}, fmt.Errorf("%w: %q", ErrNoNameMatch, query)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
