package models

// PriceResponse is the batch spot-price payload. Each entry is either a
// currency→price map or {"error":"unavailable"} for a degraded asset.
type PriceResponse struct {
	OK   bool                   `json:"ok"`
	Data map[string]interface{} `json:"data"`
}

// CompareItem is one asset's series in a compare response. A failed asset
// carries the error and an empty (never null) prices array.
type CompareItem struct {
	ID     string      `json:"id"`
	Error  string      `json:"error,omitempty"`
	Prices PriceSeries `json:"prices"`
}

// CompareResponse is the multi-asset history payload.
type CompareResponse struct {
	OK    bool          `json:"ok"`
	Items []CompareItem `json:"items"`
	VS    string        `json:"vs"`
	Days  int           `json:"days"`
}

// RawAnalyzeRequest is the body of the raw-analysis endpoint. The caller
// supplies the series directly, bypassing the resolver.
type RawAnalyzeRequest struct {
	Symbol string      `json:"symbol" validate:"required"`
	VS     string      `json:"vs" default:"usd"`
	Prices PriceSeries `json:"prices" validate:"required,min=40"`
}

// StreamSnapshot is one push frame on the ticker WebSocket.
type StreamSnapshot struct {
	TS     int64                  `json:"ts"`
	VS     string                 `json:"vs"`
	Prices map[string]interface{} `json:"prices"`
}
