package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"KryptoPulse/internal/domain/models"
	drepo "KryptoPulse/internal/domain/repository"
	"KryptoPulse/internal/usecase"
	xhttp "KryptoPulse/pkg/http"
	applogger "KryptoPulse/pkg/logger"
)

const (
	defaultCompareDays = 7
	maxCompareDays     = 365
)

// MarketHandler serves the public market-data API.
type MarketHandler struct {
	resolver     *usecase.Resolver
	analyzer     *usecase.Analyzer
	fx           drepo.Converter
	logger       *applogger.Logger
	pushInterval time.Duration
}

// NewMarketHandler creates the handler for all market routes.
func NewMarketHandler(
	resolver *usecase.Resolver,
	analyzer *usecase.Analyzer,
	fx drepo.Converter,
	l *applogger.Logger,
	pushInterval time.Duration,
) *MarketHandler {
	return &MarketHandler{
		resolver:     resolver,
		analyzer:     analyzer,
		fx:           fx,
		logger:       l,
		pushInterval: pushInterval,
	}
}

// RegisterRoutes registers all routes on the echo instance.
func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	api := e.Group("/api")
	api.GET("/price", h.Price)
	api.GET("/compare", h.Compare)
	api.GET("/krypto/analyze", h.Analyze)
	api.POST("/krypto/analyze/raw", h.AnalyzeRaw)
	api.GET("/stream", h.Stream)
}

// Health reports liveness.
func (h *MarketHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// Price returns current prices for a batch of assets. A failed asset maps to
// {"error":"unavailable"} instead of failing the batch.
func (h *MarketHandler) Price(c echo.Context) error {
	ids := xhttp.SplitCSV(c.QueryParam("ids"))
	if len(ids) == 0 {
		return xhttp.BadRequestResponse(c, "ids is required")
	}
	vs := quoteCurrency(c)

	ctx := c.Request().Context()
	rate, err := h.fx.Rate(ctx, vs)
	if err != nil {
		return xhttp.InternalErrorResponse(c, err.Error())
	}

	results := h.resolver.ResolveSpotBatch(ctx, ids)
	data := make(map[string]interface{}, len(ids))
	for id, res := range results {
		if res.Err != nil {
			h.logger.Warn("price resolution failed",
				applogger.String("asset", id),
				applogger.Error(res.Err),
			)
			data[id] = map[string]string{"error": "unavailable"}
			continue
		}
		entry := map[string]float64{vs: res.Price * rate}
		if vs != models.ReferenceCurrency {
			entry[models.ReferenceCurrency] = res.Price
		}
		data[id] = entry
	}

	return xhttp.SuccessResponse(c, models.PriceResponse{OK: true, Data: data})
}

// Compare returns historical series for a batch of assets, converted to the
// quote currency. A failed asset keeps its slot with an error marker and an
// empty prices array.
func (h *MarketHandler) Compare(c echo.Context) error {
	ids := xhttp.SplitCSV(c.QueryParam("symbols"))
	if len(ids) == 0 {
		return xhttp.BadRequestResponse(c, "symbols is required")
	}
	days := xhttp.ParseIntDefault(c.QueryParam("days"), defaultCompareDays)
	if days < 1 || days > maxCompareDays {
		return xhttp.BadRequestResponse(c, "days must be between 1 and 365")
	}
	vs := quoteCurrency(c)

	ctx := c.Request().Context()
	rate, err := h.fx.Rate(ctx, vs)
	if err != nil {
		return xhttp.InternalErrorResponse(c, err.Error())
	}

	results := h.resolver.ResolveHistoryBatch(ctx, ids, days)
	items := make([]models.CompareItem, len(ids))
	for i, res := range results {
		if res.Err != nil {
			h.logger.Warn("history resolution failed",
				applogger.String("asset", ids[i]),
				applogger.Error(res.Err),
			)
			items[i] = models.CompareItem{
				ID:     ids[i],
				Error:  "unavailable",
				Prices: models.PriceSeries{},
			}
			continue
		}
		items[i] = models.CompareItem{ID: ids[i], Prices: res.Series.Scale(rate)}
	}

	return xhttp.SuccessResponse(c, models.CompareResponse{
		OK:    true,
		Items: items,
		VS:    vs,
		Days:  days,
	})
}

// Analyze resolves an asset's history and returns a full analysis. A fully
// exhausted chain fails the request.
func (h *MarketHandler) Analyze(c echo.Context) error {
	symbol := strings.ToLower(strings.TrimSpace(c.QueryParam("symbol")))
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol is required")
	}
	vs := quoteCurrency(c)

	res, err := h.analyzer.Analyze(c.Request().Context(), symbol, vs)
	if err != nil {
		h.logger.Error("analysis failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return xhttp.InternalErrorResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, res)
}

// AnalyzeRaw scores a caller-supplied series without touching any upstream.
func (h *MarketHandler) AnalyzeRaw(c echo.Context) error {
	req := new(models.RawAnalyzeRequest)
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationFailResponse(c, verr)
	}

	res, err := h.analyzer.AnalyzeRaw(c.Request().Context(), req.Symbol, req.VS, req.Prices)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, res)
}

func quoteCurrency(c echo.Context) string {
	vs := strings.ToLower(strings.TrimSpace(c.QueryParam("vs")))
	if vs == "" {
		return models.ReferenceCurrency
	}
	return vs
}
