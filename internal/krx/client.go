package krx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// The KRX data portal serves every statistics report through a single JSON
// endpoint; the bld parameter selects the report. This is the same backend
// the data.krx.co.kr screens use, so requests must carry the portal Referer.
const (
	defaultBaseURL = "http://data.krx.co.kr/comm/bldAttendant/getJsonData.cmd"
	portalReferer  = "http://data.krx.co.kr/contents/MDC/MDI/mdiLoader"

	bldListedDirectory = "dbms/MDC/STAT/standard/MDCSTAT01901"
	bldFundamentals    = "dbms/MDC/STAT/standard/MDCSTAT03501"
	bldSectors         = "dbms/MDC/STAT/standard/MDCSTAT03901"
	bldETFDirectory    = "dbms/MDC/STAT/standard/MDCSTAT04601"
	bldETFPortfolio    = "dbms/MDC/STAT/standard/MDCSTAT05001"
)

// ErrNoRows signals the portal answered successfully but the report carried
// no data for the requested parameters (holiday date, delisted fund).
var ErrNoRows = errors.New("krx: report returned no rows")

// Client is an HTTP client for the KRX data portal
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new KRX client with the given request rate ceiling.
// The ceiling is shared by all callers, so a 20-worker exposure scan still
// stays under the portal's tolerance.
func NewClient(rps float64) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// NewClientWithBaseURL creates a new KRX client with a custom endpoint (for testing)
func NewClientWithBaseURL(baseURL string, rps float64) *Client {
	c := NewClient(rps)
	c.baseURL = baseURL
	return c
}

// ListedSecurities fetches the full ticker/name directory for a market and date.
func (c *Client) ListedSecurities(ctx context.Context, date, market string) ([]ListedSecurity, error) {
	params := url.Values{}
	params.Set("bld", bldListedDirectory)
	params.Set("trdDd", date)
	params.Set("mktId", market)

	rows, err := c.fetchRows(ctx, params)
	if err != nil {
		return nil, err
	}

	var listed []ListedSecurity
	for _, row := range rows {
		ticker := row["ISU_SRT_CD"]
		if ticker == "" {
			continue
		}
		listed = append(listed, ListedSecurity{
			Ticker: ticker,
			Name:   row["ISU_ABBRV"],
		})
	}
	return listed, nil
}

// TickerName resolves a single short code to its display name via the
// directory report. Returns ErrNoRows when the code is not listed.
func (c *Client) TickerName(ctx context.Context, ticker, date string) (string, error) {
	listed, err := c.ListedSecurities(ctx, date, "ALL")
	if err != nil {
		return "", err
	}
	for _, s := range listed {
		if s.Ticker == ticker {
			return s.Name, nil
		}
	}
	return "", ErrNoRows
}

// ETFDirectory fetches all ETFs listed on the given date.
func (c *Client) ETFDirectory(ctx context.Context, date string) ([]ListedSecurity, error) {
	params := url.Values{}
	params.Set("bld", bldETFDirectory)
	params.Set("trdDd", date)

	rows, err := c.fetchRows(ctx, params)
	if err != nil {
		return nil, err
	}

	var funds []ListedSecurity
	for _, row := range rows {
		ticker := row["ISU_SRT_CD"]
		if ticker == "" {
			continue
		}
		funds = append(funds, ListedSecurity{
			Ticker: ticker,
			Name:   row["ISU_ABBRV"],
		})
	}
	return funds, nil
}

// ETFPortfolio fetches one fund's portfolio deposit file for a date.
// An empty holdings table is not an error: the result is (nil, nil).
func (c *Client) ETFPortfolio(ctx context.Context, fundTicker, date string) ([]Holding, error) {
	params := url.Values{}
	params.Set("bld", bldETFPortfolio)
	params.Set("isuCd", fundTicker)
	params.Set("trdDd", date)

	rows, err := c.fetchRows(ctx, params)
	if err != nil {
		return nil, err
	}

	var holdings []Holding
	for _, row := range rows {
		ticker := row["COMPST_ISU_CD"]
		if ticker == "" {
			continue
		}
		holdings = append(holdings, Holding{
			Ticker: ticker,
			Name:   row["COMPST_ISU_NM"],
			Weight: parseFloat(row["COMPST_RTO"]),
		})
	}
	return holdings, nil
}

// SectorClassifications fetches ticker, name, KRX sector, and market cap
// for every stock in a market.
func (c *Client) SectorClassifications(ctx context.Context, date, market string) ([]SectorRow, error) {
	params := url.Values{}
	params.Set("bld", bldSectors)
	params.Set("trdDd", date)
	params.Set("mktId", market)

	rows, err := c.fetchRows(ctx, params)
	if err != nil {
		return nil, err
	}

	var sectors []SectorRow
	for _, row := range rows {
		ticker := row["ISU_SRT_CD"]
		if ticker == "" {
			continue
		}
		sectors = append(sectors, SectorRow{
			Ticker:    ticker,
			Name:      row["ISU_ABBRV"],
			Sector:    row["IDX_IND_NM"],
			MarketCap: parseInt(row["MKTCAP"]),
		})
	}
	return sectors, nil
}

// Fundamentals fetches PER/PBR/EPS/BPS for every stock in a market.
func (c *Client) Fundamentals(ctx context.Context, date, market string) ([]FundamentalRow, error) {
	params := url.Values{}
	params.Set("bld", bldFundamentals)
	params.Set("trdDd", date)
	params.Set("mktId", market)

	rows, err := c.fetchRows(ctx, params)
	if err != nil {
		return nil, err
	}

	var funds []FundamentalRow
	for _, row := range rows {
		ticker := row["ISU_SRT_CD"]
		if ticker == "" {
			continue
		}
		funds = append(funds, FundamentalRow{
			Ticker: ticker,
			PER:    parseFloat(row["PER"]),
			PBR:    parseFloat(row["PBR"]),
			EPS:    parseFloat(row["EPS"]),
			BPS:    parseFloat(row["BPS"]),
		})
	}
	return funds, nil
}

func (c *Client) fetchRows(ctx context.Context, params url.Values) ([]map[string]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", portalReferer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("KRX portal returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var data dataResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return data.rows(), nil
}

// parseFloat reads the portal's comma-grouped numerics ("1,234.56").
// Missing values arrive as "-" or ""; both parse to zero, keeping the row.
func parseFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
