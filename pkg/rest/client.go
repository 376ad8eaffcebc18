// Package rest is a typed client for the versioned admin REST API hosted on
// each store's own domain.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/brendan.keane/adminrest/internal/errors"
	"github.com/brendan.keane/adminrest/internal/validation"
	"github.com/brendan.keane/adminrest/pkg/fetch"
	"github.com/brendan.keane/adminrest/pkg/transport"
	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"
)

var structValidator = validator.New()

// Client issues requests against a single store. It holds no mutable state
// and is safe for concurrent use.
type Client struct {
	accessToken     string
	userAgentPrefix string
	retries         int
	logger          fetch.Logger
	now             func() time.Time

	urls  *urlFormatter
	fetch fetch.Func
}

// Option customizes a Client beyond its ClientConfig.
type Option func(*clientOptions)

type clientOptions struct {
	now   func() time.Time
	fetch fetch.Func
}

// WithClock sets the clock used to compute the supported API versions.
func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) {
		o.now = now
	}
}

// WithFetchFunc replaces the fetch-with-retry implementation. CustomFetchAPI,
// DefaultRetryTime, RateLimit and Metrics are ignored when it is set.
func WithFetchFunc(fn fetch.Func) Option {
	return func(o *clientOptions) {
		o.fetch = fn
	}
}

// NewClient validates cfg and returns a client bound to it. Every error
// matches ErrConfiguration.
func NewClient(cfg ClientConfig, opts ...Option) (*Client, error) {
	o := clientOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	if err := validation.ValidateServerSideUsage(ClientName); err != nil {
		return nil, configError(err)
	}
	if err := structValidator.Struct(cfg); err != nil {
		return nil, configError(fieldError(err, cfg))
	}

	host, err := validation.ValidateDomain(ClientName, cfg.StoreDomain)
	if err != nil {
		return nil, configError(err)
	}

	supported := validation.SupportedAPIVersions(o.now())
	if err := validation.ValidateAPIVersion(ClientName, cfg.APIVersion, supported, cfg.Logger); err != nil {
		return nil, configError(err)
	}

	scheme := cfg.Scheme
	if scheme == "" {
		scheme = DefaultScheme
	}

	c := &Client{
		accessToken:     cfg.AccessToken,
		userAgentPrefix: cfg.UserAgentPrefix,
		retries:         cfg.Retries,
		logger:          cfg.Logger,
		now:             o.now,
		fetch:           o.fetch,
	}
	c.urls = &urlFormatter{
		scheme:          scheme,
		host:            host,
		defaultVersion:  cfg.APIVersion,
		formatPaths:     !cfg.DisablePathFormatting,
		validateVersion: c.validateVersion,
	}

	if c.fetch == nil {
		doer := cfg.CustomFetchAPI
		if doer == nil {
			doer = transport.DefaultClient()
		}
		c.fetch = fetch.New(doer,
			fetch.WithLogger(cfg.Logger),
			fetch.WithClientName(ClientName),
			fetch.WithRetryWait(cfg.DefaultRetryTime),
			fetch.WithRateLimit(rate.Limit(cfg.RateLimit), cfg.RateBurst),
			fetch.WithMetrics(cfg.Metrics),
		).Fetch
	}

	return c, nil
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string, opts *RequestOptions) (*http.Response, error) {
	return c.Request(ctx, http.MethodGet, path, opts)
}

// Put sends a PUT request.
func (c *Client) Put(ctx context.Context, path string, opts *RequestOptions) (*http.Response, error) {
	return c.Request(ctx, http.MethodPut, path, opts)
}

// Post sends a POST request.
func (c *Client) Post(ctx context.Context, path string, opts *RequestOptions) (*http.Response, error) {
	return c.Request(ctx, http.MethodPost, path, opts)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts *RequestOptions) (*http.Response, error) {
	return c.Request(ctx, http.MethodDelete, path, opts)
}

// Request builds the request and hands it to the fetcher with the effective
// retry budget. The fetcher's response and error are returned unchanged.
func (c *Client) Request(ctx context.Context, method, path string, opts *RequestOptions) (*http.Response, error) {
	req, retries, err := c.build(method, path, opts)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, req, 1, retries)
}

// BuildRequest returns the request Request would send, without sending it.
func (c *Client) BuildRequest(method, path string, opts *RequestOptions) (fetch.Request, error) {
	req, _, err := c.build(method, path, opts)
	return req, err
}

func (c *Client) build(method, path string, opts *RequestOptions) (fetch.Request, int, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	retries := c.retries
	if opts.Retries != nil {
		retries = *opts.Retries
		if err := validation.ValidateRetries(ClientName, retries); err != nil {
			return fetch.Request{}, 0, err
		}
	}

	url, err := c.urls.Format(path, opts.APIVersion, opts.SearchParams)
	if err != nil {
		return fetch.Request{}, 0, err
	}

	body, err := encodeBody(opts.Data)
	if err != nil {
		return fetch.Request{}, 0, err
	}

	return fetch.Request{
		Method: method,
		URL:    url,
		Header: ComposeHeaders(opts.Headers, c.accessToken, c.userAgentPrefix),
		Body:   body,
	}, retries, nil
}

func (c *Client) validateVersion(version string) error {
	return validation.ValidateAPIVersion(ClientName, version, validation.SupportedAPIVersions(c.now()), c.logger)
}

func encodeBody(data any) (*string, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, ClientName+": request data could not be encoded as JSON").
			WithContext("field", "data")
	}
	body := string(encoded)
	return &body, nil
}

func configError(err error) error {
	wrapped := errors.Wrap(err, errors.ErrorTypeConfig, "invalid client configuration")
	if field, ok := errors.GetContext(err)["field"]; ok {
		wrapped.WithContext("field", field)
	}
	return wrapped
}

// fieldError turns the first struct tag failure into the matching validation error.
func fieldError(err error, cfg ClientConfig) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.Wrap(err, errors.ErrorTypeValidation, ClientName+": invalid configuration")
	}

	fe := fieldErrs[0]
	switch fe.StructField() {
	case "AccessToken":
		return errors.New(errors.ErrorTypeValidation, ClientName+": an access token must be provided").
			WithContext("field", "accessToken")
	case "Retries":
		return validation.ValidateRetries(ClientName, cfg.Retries)
	default:
		return errors.Newf(errors.ErrorTypeValidation, "%s: invalid %s (failed %q check)", ClientName, fe.Field(), fe.Tag()).
			WithContext("field", fe.Field())
	}
}
