package models

import "fmt"

// SourceError reports a failure of a single upstream provider. It is
// recoverable: the resolver swallows it and moves to the next source.
type SourceError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("source %s: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("source %s: %s", e.Provider, e.Reason)
}

func (e *SourceError) Unwrap() error { return e.Err }

// NewSourceError builds a SourceError for a provider.
func NewSourceError(provider, reason string, err error) *SourceError {
	return &SourceError{Provider: provider, Reason: reason, Err: err}
}

// ExhaustedError means every source in the fallback chain failed for an asset.
type ExhaustedError struct {
	Asset string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all sources exhausted for %q", e.Asset)
}

// ConversionError means the FX rate for a quote currency could not be
// resolved. Conversion is mandatory when quote differs from the reference
// currency, so this fails the whole request.
type ConversionError struct {
	Quote string
	Err   error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fx rate for %q unavailable: %v", e.Quote, e.Err)
	}
	return fmt.Sprintf("fx rate for %q unavailable", e.Quote)
}

func (e *ConversionError) Unwrap() error { return e.Err }
