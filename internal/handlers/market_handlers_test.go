package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/seojinpark/krxlens/internal/cache"
	"github.com/seojinpark/krxlens/internal/krx"
	"github.com/seojinpark/krxlens/internal/models"
	"github.com/seojinpark/krxlens/internal/services"
)

type fakeMarketData struct {
	err error
}

func (f *fakeMarketData) SectorClassifications(ctx context.Context, date, market string) ([]krx.SectorRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []krx.SectorRow{
		{Ticker: "005930", Name: "삼성전자", Sector: "전기전자", MarketCap: 400_0000_0000_0000},
		{Ticker: "000660", Name: "SK하이닉스", Sector: "전기전자", MarketCap: 150_0000_0000_0000},
		{Ticker: "105560", Name: "KB금융", Sector: "금융업", MarketCap: 35_0000_0000_0000},
	}, nil
}

func (f *fakeMarketData) Fundamentals(ctx context.Context, date, market string) ([]krx.FundamentalRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []krx.FundamentalRow{
		{Ticker: "005930", PER: 12.5, PBR: 1.4},
		{Ticker: "000660", PER: 8.2, PBR: 1.9},
		{Ticker: "105560", PER: 5.1, PBR: 0.5},
	}, nil
}

func newTestRouter(src services.MarketData) *gin.Engine {
	gin.SetMode(gin.TestMode)

	fundSvc := services.NewFundamentalsService(src, cache.NewSnapshotCache())
	h := NewMarketHandler(fundSvc)

	router := gin.New()
	router.GET("/api/health", h.Health)
	router.GET("/api/sectors", h.Sectors)
	router.GET("/api/fundamentals", h.Fundamentals)
	return router
}

func doGet(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&fakeMarketData{})

	rec := doGet(t, router, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp models.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
}

func TestSectors(t *testing.T) {
	router := newTestRouter(&fakeMarketData{})

	rec := doGet(t, router, "/api/sectors")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp models.SectorsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Sectors) != 2 {
		t.Fatalf("expected 2 sectors, got %v", resp.Sectors)
	}
	if resp.Sectors[0] != "금융업" || resp.Sectors[1] != "전기전자" {
		t.Errorf("expected sorted sectors, got %v", resp.Sectors)
	}
}

func TestFundamentals_DefaultSort(t *testing.T) {
	router := newTestRouter(&fakeMarketData{})

	rec := doGet(t, router, "/api/fundamentals")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp models.FundamentalsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Total != 3 {
		t.Fatalf("expected 3 rows, got %d", resp.Total)
	}
	if resp.Data[0].Ticker != "005930" {
		t.Errorf("expected market cap descending, first row %s", resp.Data[0].Ticker)
	}
}

func TestFundamentals_SectorFilter(t *testing.T) {
	router := newTestRouter(&fakeMarketData{})

	rec := doGet(t, router, "/api/fundamentals?sector=금융")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp models.FundamentalsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Total != 1 || resp.Data[0].Ticker != "105560" {
		t.Errorf("expected only KB금융, got %+v", resp.Data)
	}
}

func TestFundamentals_UnknownSector(t *testing.T) {
	router := newTestRouter(&fakeMarketData{})

	rec := doGet(t, router, "/api/fundamentals?sector=제약")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestFundamentals_LimitValidation(t *testing.T) {
	router := newTestRouter(&fakeMarketData{})

	for _, q := range []string{"limit=0", "limit=2001", "limit=abc"} {
		rec := doGet(t, router, "/api/fundamentals?"+q)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, rec.Code)
		}
	}

	rec := doGet(t, router, "/api/fundamentals?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp models.FundamentalsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("expected 1 row with limit=1, got %d", resp.Total)
	}
}

func TestFundamentals_UpstreamError(t *testing.T) {
	router := newTestRouter(&fakeMarketData{err: errors.New("portal down")})

	rec := doGet(t, router, "/api/fundamentals")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}
