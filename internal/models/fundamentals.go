package models

// FundamentalRow is one KOSPI stock with its KRX sector classification and
// valuation ratios. JSON keys keep the Korean column names the export and
// API consumers already depend on.
type FundamentalRow struct {
	Ticker    string  `json:"티커"`
	Name      string  `json:"종목명"`
	Sector    string  `json:"섹터"`
	PER       float64 `json:"PER"`
	PBR       float64 `json:"PBR"`
	EPS       float64 `json:"EPS"`
	BPS       float64 `json:"BPS"`
	MarketCap int64   `json:"시가총액(억)"` // KRW 억 (1e8)
}

// SortMetric selects the fundamentals sort column.
type SortMetric string

const (
	SortByMarketCap SortMetric = "marketcap" // descending
	SortByPER       SortMetric = "PER"       // ascending
	SortByPBR       SortMetric = "PBR"       // ascending
)
