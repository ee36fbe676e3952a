package krx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClientWithBaseURL(srv.URL, 1000), srv
}

func TestListedSecurities(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("bad form: %v", err)
			return
		}
		if got := r.PostFormValue("bld"); got != bldListedDirectory {
			t.Errorf("expected bld %s, got %s", bldListedDirectory, got)
		}
		if got := r.PostFormValue("trdDd"); got != "20260825" {
			t.Errorf("expected trdDd 20260825, got %s", got)
		}
		w.Write([]byte(`{"OutBlock_1":[
			{"ISU_SRT_CD":"005930","ISU_ABBRV":"삼성전자"},
			{"ISU_SRT_CD":"000660","ISU_ABBRV":"SK하이닉스"},
			{"ISU_SRT_CD":"","ISU_ABBRV":"ignored"}
		]}`))
	})
	defer srv.Close()

	listed, err := client.ListedSecurities(context.Background(), "20260825", "ALL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 securities, got %d", len(listed))
	}
	if listed[0].Ticker != "005930" || listed[0].Name != "삼성전자" {
		t.Errorf("unexpected first entry: %+v", listed[0])
	}
}

func TestTickerName(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"OutBlock_1":[{"ISU_SRT_CD":"005930","ISU_ABBRV":"삼성전자"}]}`))
	})
	defer srv.Close()

	name, err := client.TickerName(context.Background(), "005930", "20260825")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "삼성전자" {
		t.Errorf("expected 삼성전자, got %s", name)
	}

	if _, err := client.TickerName(context.Background(), "999999", "20260825"); err != ErrNoRows {
		t.Errorf("expected ErrNoRows for unlisted code, got %v", err)
	}
}

func TestETFPortfolio_ParsesWeights(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if got := r.PostFormValue("isuCd"); got != "069500" {
			t.Errorf("expected isuCd 069500, got %s", got)
		}
		// This report answers under "output" rather than "OutBlock_1".
		w.Write([]byte(`{"output":[
			{"COMPST_ISU_CD":"005930","COMPST_ISU_NM":"삼성전자","COMPST_RTO":"31.25"},
			{"COMPST_ISU_CD":"000660","COMPST_ISU_NM":"SK하이닉스","COMPST_RTO":"1,234.56"},
			{"COMPST_ISU_CD":"KRW","COMPST_ISU_NM":"원화현금","COMPST_RTO":"-"}
		]}`))
	})
	defer srv.Close()

	holdings, err := client.ETFPortfolio(context.Background(), "069500", "20260825")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(holdings) != 3 {
		t.Fatalf("expected 3 holdings, got %d", len(holdings))
	}
	if holdings[0].Weight != 31.25 {
		t.Errorf("expected 31.25, got %f", holdings[0].Weight)
	}
	if holdings[1].Weight != 1234.56 {
		t.Errorf("comma-grouped weight: expected 1234.56, got %f", holdings[1].Weight)
	}
	if holdings[2].Weight != 0 {
		t.Errorf("missing weight must parse to 0, got %f", holdings[2].Weight)
	}
}

func TestETFPortfolio_EmptyIsNotAnError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output":[]}`))
	})
	defer srv.Close()

	holdings, err := client.ETFPortfolio(context.Background(), "069500", "20260825")
	if err != nil {
		t.Fatalf("empty portfolio must not error: %v", err)
	}
	if len(holdings) != 0 {
		t.Errorf("expected no holdings, got %d", len(holdings))
	}
}

func TestFundamentals_MissingValues(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"OutBlock_1":[
			{"ISU_SRT_CD":"005930","PER":"12.50","PBR":"1.40","EPS":"5,000","BPS":"45,000"},
			{"ISU_SRT_CD":"000100","PER":"-","PBR":"-","EPS":"-","BPS":"-"}
		]}`))
	})
	defer srv.Close()

	rows, err := client.Fundamentals(context.Background(), "20260825", "STK")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].EPS != 5000 {
		t.Errorf("expected EPS 5000, got %f", rows[0].EPS)
	}
	if rows[1].PER != 0 || rows[1].PBR != 0 {
		t.Errorf("missing ratios must be zero, got %+v", rows[1])
	}
}

func TestSectorClassifications(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"OutBlock_1":[
			{"ISU_SRT_CD":"005930","ISU_ABBRV":"삼성전자","IDX_IND_NM":"전기전자","MKTCAP":"400,000,000,000,000"}
		]}`))
	})
	defer srv.Close()

	rows, err := client.SectorClassifications(context.Background(), "20260825", "STK")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Sector != "전기전자" {
		t.Errorf("expected sector 전기전자, got %s", rows[0].Sector)
	}
	if rows[0].MarketCap != 400_000_000_000_000 {
		t.Errorf("expected market cap 4e14, got %d", rows[0].MarketCap)
	}
}

func TestFetchRows_BadStatus(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	})
	defer srv.Close()

	if _, err := client.ETFDirectory(context.Background(), "20260825"); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestFetchRows_BadJSON(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	})
	defer srv.Close()

	if _, err := client.ETFDirectory(context.Background(), "20260825"); err == nil {
		t.Fatal("expected error on non-JSON body")
	}
}

func TestParseFloat(t *testing.T) {
	cases := map[string]float64{
		"1,234.56": 1234.56,
		"0.05":     0.05,
		"-":        0,
		"":         0,
		" 12.5 ":   12.5,
		"abc":      0,
	}
	for in, want := range cases {
		if got := parseFloat(in); got != want {
			t.Errorf("parseFloat(%q) = %f, want %f", in, got, want)
		}
	}
}
