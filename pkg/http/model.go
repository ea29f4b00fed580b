package http

// ErrorBody is the wire shape for failed requests.
type ErrorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty"`
	Field   string                 `json:"field,omitempty"`
	Message string                 `json:"message,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
