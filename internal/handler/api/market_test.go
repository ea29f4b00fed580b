package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"KryptoPulse/internal/domain/models"
	drepo "KryptoPulse/internal/domain/repository"
	"KryptoPulse/internal/usecase"
	"KryptoPulse/pkg/cache"
	applogger "KryptoPulse/pkg/logger"
)

type mapSource struct {
	prices map[string]float64
	series map[string]models.PriceSeries
}

func (s *mapSource) Name() string { return "map" }

func (s *mapSource) SpotPrice(_ context.Context, assetID string) (float64, error) {
	p, ok := s.prices[assetID]
	if !ok {
		return 0, models.NewSourceError("map", "unknown asset", errors.New(assetID))
	}
	return p, nil
}

func (s *mapSource) HistorySeries(_ context.Context, assetID string, days int) (models.PriceSeries, error) {
	sr, ok := s.series[assetID]
	if !ok {
		return nil, models.NewSourceError("map", "unknown asset", errors.New(assetID))
	}
	return sr, nil
}

type fixedRate struct{ rate float64 }

func (f fixedRate) Rate(_ context.Context, quote string) (float64, error) {
	if strings.ToLower(quote) == models.ReferenceCurrency {
		return 1, nil
	}
	return f.rate, nil
}

func (f fixedRate) Convert(ctx context.Context, amount float64, quote string) (float64, error) {
	r, err := f.Rate(ctx, quote)
	if err != nil {
		return 0, err
	}
	return amount * r, nil
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func risingSeries(n int) models.PriceSeries {
	out := make(models.PriceSeries, n)
	for i := range out {
		out[i] = models.PricePoint{TS: int64(i) * 3600_000, Price: 100 + float64(i)}
	}
	return out
}

func newTestServer(t *testing.T, src drepo.Source, fx drepo.Converter) *echo.Echo {
	t.Helper()
	l := testLogger(t)
	r := usecase.NewResolver([]drepo.Source{src}, cache.NewMemoryCache(), nil, l, time.Minute, time.Minute, 0)
	a := usecase.NewAnalyzer(r, fx, nil, l)
	h := NewMarketHandler(r, a, fx, l, 10*time.Second)

	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, target string, body []byte) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var rd *bytes.Reader
	if body == nil {
		rd = bytes.NewReader(nil)
	} else {
		rd = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var payload map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, payload
}

func TestHealth(t *testing.T) {
	e := newTestServer(t, &mapSource{}, fixedRate{rate: 1})
	rec, payload := doJSON(t, e, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if payload["ok"] != true {
		t.Fatalf("payload %v", payload)
	}
}

func TestPriceRequiresIDs(t *testing.T) {
	e := newTestServer(t, &mapSource{}, fixedRate{rate: 1})
	rec, payload := doJSON(t, e, http.MethodGet, "/api/price", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if payload["ok"] != false {
		t.Fatalf("payload %v", payload)
	}
}

func TestPricePartialFailure(t *testing.T) {
	src := &mapSource{prices: map[string]float64{"bitcoin": 60000}}
	e := newTestServer(t, src, fixedRate{rate: 1})

	rec, payload := doJSON(t, e, http.MethodGet, "/api/price?ids=bitcoin,unknowncoin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	data := payload["data"].(map[string]interface{})

	btc := data["bitcoin"].(map[string]interface{})
	if btc["usd"] != 60000.0 {
		t.Fatalf("bitcoin entry %v", btc)
	}
	bad := data["unknowncoin"].(map[string]interface{})
	if bad["error"] != "unavailable" {
		t.Fatalf("failed asset entry %v", bad)
	}
}

func TestPriceIncludesReferenceWhenConverted(t *testing.T) {
	src := &mapSource{prices: map[string]float64{"bitcoin": 60000}}
	e := newTestServer(t, src, fixedRate{rate: 0.5})

	_, payload := doJSON(t, e, http.MethodGet, "/api/price?ids=bitcoin&vs=eur", nil)
	btc := payload["data"].(map[string]interface{})["bitcoin"].(map[string]interface{})
	if btc["eur"] != 30000.0 {
		t.Fatalf("eur price %v", btc["eur"])
	}
	if btc["usd"] != 60000.0 {
		t.Fatalf("usd price %v", btc["usd"])
	}
}

func TestCompareKeepsFailedSlot(t *testing.T) {
	src := &mapSource{series: map[string]models.PriceSeries{
		"bitcoin": {{TS: 1, Price: 10}, {TS: 2, Price: 11}},
	}}
	e := newTestServer(t, src, fixedRate{rate: 1})

	rec, payload := doJSON(t, e, http.MethodGet, "/api/compare?symbols=bitcoin,ghostcoin&days=7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if payload["days"] != 7.0 || payload["vs"] != "usd" {
		t.Fatalf("envelope %v", payload)
	}

	items := payload["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("%d items", len(items))
	}
	good := items[0].(map[string]interface{})
	if good["id"] != "bitcoin" || len(good["prices"].([]interface{})) != 2 {
		t.Fatalf("good item %v", good)
	}
	bad := items[1].(map[string]interface{})
	if bad["error"] != "unavailable" {
		t.Fatalf("bad item %v", bad)
	}
	// The failed slot must carry an empty array, never null.
	if prices, ok := bad["prices"].([]interface{}); !ok || len(prices) != 0 {
		t.Fatalf("failed slot prices %v", bad["prices"])
	}
}

func TestCompareRejectsBadDays(t *testing.T) {
	e := newTestServer(t, &mapSource{}, fixedRate{rate: 1})
	rec, _ := doJSON(t, e, http.MethodGet, "/api/compare?symbols=bitcoin&days=1000", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestAnalyzeExhaustedChainFailsRequest(t *testing.T) {
	e := newTestServer(t, &mapSource{}, fixedRate{rate: 1})
	rec, payload := doJSON(t, e, http.MethodGet, "/api/krypto/analyze?symbol=bitcoin", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
	if payload["ok"] != false || payload["error"] == "" {
		t.Fatalf("payload %v", payload)
	}
}

func TestAnalyzeHappyPath(t *testing.T) {
	src := &mapSource{series: map[string]models.PriceSeries{"bitcoin": risingSeries(120)}}
	e := newTestServer(t, src, fixedRate{rate: 1})

	rec, payload := doJSON(t, e, http.MethodGet, "/api/krypto/analyze?symbol=bitcoin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %v", rec.Code, payload)
	}
	if payload["ok"] != true || payload["symbol"] != "bitcoin" {
		t.Fatalf("payload %v", payload)
	}
	if payload["signal"] == "" || payload["disclaimer"] == "" {
		t.Fatalf("missing fields in %v", payload)
	}
}

func rawBody(t *testing.T, symbol string, series models.PriceSeries) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"symbol": symbol,
		"vs":     "usd",
		"prices": series,
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return body
}

func TestAnalyzeRawTooFewPoints(t *testing.T) {
	e := newTestServer(t, &mapSource{}, fixedRate{rate: 1})
	rec, payload := doJSON(t, e, http.MethodPost, "/api/krypto/analyze/raw", rawBody(t, "btc", risingSeries(39)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if payload["ok"] != false {
		t.Fatalf("payload %v", payload)
	}
}

func TestAnalyzeRawExactly40Points(t *testing.T) {
	e := newTestServer(t, &mapSource{}, fixedRate{rate: 1})
	rec, payload := doJSON(t, e, http.MethodPost, "/api/krypto/analyze/raw", rawBody(t, "btc", risingSeries(40)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %v", rec.Code, payload)
	}

	if payload["ok"] != true {
		t.Fatalf("payload %v", payload)
	}
	ind := payload["indicators"].(map[string]interface{})
	if ind["sma20"] == nil {
		t.Fatal("sma20 null on a 40-point series")
	}
	if ind["sma50"] != nil {
		t.Fatal("sma50 must be null on a 40-point series")
	}
	conf := payload["confidence"].(float64)
	if conf < 0.1 || conf > 0.95 {
		t.Fatalf("confidence %v out of bounds", conf)
	}
	pred := payload["prediction"].(map[string]interface{})
	band := pred["band"].([]interface{})
	if band[0].(float64) >= band[1].(float64) {
		t.Fatalf("band not ordered: %v", band)
	}
}

func TestAnalyzeRawDirectionFlips(t *testing.T) {
	e := newTestServer(t, &mapSource{}, fixedRate{rate: 1})

	rising := risingSeries(100)
	falling := make(models.PriceSeries, len(rising))
	for i, p := range rising {
		falling[i] = models.PricePoint{TS: p.TS, Price: rising[len(rising)-1-i].Price}
	}

	_, up := doJSON(t, e, http.MethodPost, "/api/krypto/analyze/raw", rawBody(t, "btc", rising))
	_, down := doJSON(t, e, http.MethodPost, "/api/krypto/analyze/raw", rawBody(t, "btc", falling))

	if up["signal"] != models.SignalBullish {
		t.Fatalf("rising series scored %v", up["signal"])
	}
	if down["signal"] != models.SignalBearish {
		t.Fatalf("falling series scored %v", down["signal"])
	}
}

func TestAnalyzeRawAllInvalidPrices(t *testing.T) {
	e := newTestServer(t, &mapSource{}, fixedRate{rate: 1})

	series := make(models.PriceSeries, 40)
	for i := range series {
		series[i] = models.PricePoint{TS: int64(i), Price: -1}
	}
	rec, _ := doJSON(t, e, http.MethodPost, "/api/krypto/analyze/raw", rawBody(t, "btc", series))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestPriceSeriesWireFormat(t *testing.T) {
	src := &mapSource{series: map[string]models.PriceSeries{
		"bitcoin": {{TS: 1700000000000, Price: 42000.5}},
	}}
	e := newTestServer(t, src, fixedRate{rate: 1})

	req := httptest.NewRequest(http.MethodGet, "/api/compare?symbols=bitcoin", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	want := fmt.Sprintf("[%d,%v]", 1700000000000, 42000.5)
	if !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("body %q does not contain point %q", rec.Body.String(), want)
	}
}
