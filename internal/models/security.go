package models

// Security is a listed instrument identified by its 6-digit short code
// and Korean display name. Immutable for the duration of a run.
type Security struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// ExposureRecord is one scan hit: an ETF that holds the target security,
// with the target's weight in that fund's portfolio deposit file.
type ExposureRecord struct {
	FundTicker string  `json:"fund_ticker"`
	FundName   string  `json:"fund_name"`
	Weight     float64 `json:"weight"` // percent of fund NAV
}

// RankedExposure is an ExposureRecord with its 1-based position after
// sorting by weight descending.
type RankedExposure struct {
	Rank int `json:"rank"`
	ExposureRecord
}

// ScanResult is the finalized, ranked outcome of an exposure scan.
type ScanResult struct {
	Target  Security         `json:"target"`
	Date    string           `json:"date"` // YYYYMMDD reference date
	Scanned int              `json:"scanned"`
	Entries []RankedExposure `json:"entries"`
}
