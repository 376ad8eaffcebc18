package rest

import (
	"time"

	"github.com/brendan.keane/adminrest/internal/errors"
	"github.com/brendan.keane/adminrest/pkg/fetch"
)

// DefaultScheme is used when ClientConfig.Scheme is empty.
const DefaultScheme = "https"

var (
	// ErrConfiguration matches errors returned by NewClient.
	ErrConfiguration = errors.Sentinel(errors.ErrorTypeConfig)
	// ErrValidation matches errors raised before a request is sent.
	ErrValidation = errors.Sentinel(errors.ErrorTypeValidation)
)

// ClientConfig is copied by NewClient and never read again.
type ClientConfig struct {
	StoreDomain     string
	APIVersion      string
	AccessToken     string `validate:"required"`
	UserAgentPrefix string

	// Logger receives structured events from the fetcher. Optional.
	Logger fetch.Logger
	// CustomFetchAPI replaces the default transport.
	CustomFetchAPI fetch.Doer

	// Retries is the default retry budget per call.
	Retries int    `validate:"gte=0,lte=3"`
	Scheme  string `validate:"omitempty,alpha"`
	// DefaultRetryTime is the wait between retries when the server sends no Retry-After.
	DefaultRetryTime time.Duration `validate:"gte=0"`
	// DisablePathFormatting sends paths verbatim instead of shaping them
	// into admin/api/<version>/<path>.json.
	DisablePathFormatting bool

	// RateLimit caps requests per second across all calls. Zero disables it.
	RateLimit float64 `validate:"gte=0"`
	RateBurst int     `validate:"gte=0"`
	Metrics   *fetch.Metrics
}

// RequestOptions carries the per-call inputs. The method is bound by the
// client method being called.
type RequestOptions struct {
	SearchParams *SearchParams
	Headers      Headers
	// Data is sent verbatim when it is a string and JSON-encoded otherwise.
	// A nil Data sends no body.
	Data any
	// Retries overrides ClientConfig.Retries when set.
	Retries *int
	// APIVersion overrides ClientConfig.APIVersion when set.
	APIVersion string
}

// Retries is a convenience for setting RequestOptions.Retries.
func Retries(n int) *int {
	return &n
}
