package models

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse reports service liveness and the snapshot date in cache.
type HealthResponse struct {
	Status     string `json:"status"`
	CachedDate string `json:"cached_date"`
}

// SectorsResponse lists the distinct KRX sector names in the snapshot.
type SectorsResponse struct {
	Sectors []string `json:"sectors"`
}

// FundamentalsResponse wraps the filtered fundamentals table.
type FundamentalsResponse struct {
	Date  string           `json:"date"`
	Total int              `json:"total"`
	Data  []FundamentalRow `json:"data"`
}
