package krx

// dataResponse is the envelope the KRX data portal wraps every report in.
// Depending on the bld, rows arrive under either OutBlock_1 or output.
type dataResponse struct {
	OutBlock []map[string]string `json:"OutBlock_1"`
	Output   []map[string]string `json:"output"`
}

func (r *dataResponse) rows() []map[string]string {
	if len(r.OutBlock) > 0 {
		return r.OutBlock
	}
	return r.Output
}

// ListedSecurity is one directory entry: short code and Korean abbreviation.
type ListedSecurity struct {
	Ticker string
	Name   string
}

// Holding is one row of an ETF portfolio deposit file.
type Holding struct {
	Ticker string
	Name   string
	Weight float64 // percent of fund NAV; cash and futures rows can be 0
}

// SectorRow is one row of the sector classification report.
type SectorRow struct {
	Ticker    string
	Name      string
	Sector    string
	MarketCap int64 // KRW
}

// FundamentalRow is one row of the per-stock valuation report.
type FundamentalRow struct {
	Ticker string
	PER    float64
	PBR    float64
	EPS    float64
	BPS    float64
}
