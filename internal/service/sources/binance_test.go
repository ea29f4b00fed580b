package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestKlineIntervalSelection(t *testing.T) {
	cases := []struct {
		days     int
		interval string
		maxLimit int
	}{
		{1, "15m", binanceMaxCandles},
		{7, "1h", binanceMaxCandles},
		{30, "4h", binanceMaxCandles},
		{90, "4h", binanceMaxCandles},
		{365, "1d", binanceMaxCandles},
		{5000, "1d", binanceMaxCandles},
	}

	for _, c := range cases {
		interval, limit := klineInterval(c.days)
		if interval != c.interval {
			t.Fatalf("days=%d: interval %q, want %q", c.days, interval, c.interval)
		}
		if limit <= 0 || limit > c.maxLimit {
			t.Fatalf("days=%d: limit %d outside (0,%d]", c.days, limit, c.maxLimit)
		}
	}
}

func TestBinanceSymbolMapping(t *testing.T) {
	s := &Binance{}

	if sym, err := s.symbolFor("bitcoin"); err != nil || sym != "BTCUSDT" {
		t.Fatalf("bitcoin -> %q, %v", sym, err)
	}
	if sym, err := s.symbolFor("btc"); err != nil || sym != "BTCUSDT" {
		t.Fatalf("btc -> %q, %v", sym, err)
	}
	if _, err := s.symbolFor("some-unknown-coin"); err == nil {
		t.Fatal("expected error for unmappable identifier")
	}
}

func TestBinanceSpotPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "ETHUSDT" {
			t.Fatalf("unexpected symbol %q", got)
		}
		_, _ = w.Write([]byte(`{"symbol":"ETHUSDT","price":"3050.42"}`))
	}))
	defer srv.Close()

	s := NewBinance(srv.URL, time.Second)
	got, err := s.SpotPrice(context.Background(), "ethereum")
	if err != nil {
		t.Fatalf("spot: %v", err)
	}
	if got != 3050.42 {
		t.Fatalf("got %v, want 3050.42", got)
	}
}

func TestBinanceHistoryParsesKlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("interval"); got != "1h" {
			t.Fatalf("unexpected interval %q for 7 days", got)
		}
		_, _ = w.Write([]byte(`[
			[1700000000000,"100.0","101.0","99.0","100.5",0,0,0,0,0,0,0],
			[1700003600000,"100.5","102.0","100.0","101.5",0,0,0,0,0,0,0]
		]`))
	}))
	defer srv.Close()

	s := NewBinance(srv.URL, time.Second)
	series, err := s.HistorySeries(context.Background(), "bitcoin", 7)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("got %d points, want 2", len(series))
	}
	if series[0].TS != 1700000000000 || series[0].Price != 100.5 {
		t.Fatalf("unexpected first point %+v", series[0])
	}
	if series[1].Price != 101.5 {
		t.Fatalf("unexpected second point %+v", series[1])
	}
}

func TestBinanceNonNumericPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","price":"not-a-number"}`))
	}))
	defer srv.Close()

	s := NewBinance(srv.URL, time.Second)
	if _, err := s.SpotPrice(context.Background(), "bitcoin"); err == nil {
		t.Fatal("expected error for non-numeric price")
	}
}
