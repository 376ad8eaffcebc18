package fetch

import (
	"context"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/brendan.keane/adminrest/internal/errors"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// DefaultClientName prefixes errors raised by the fetcher.
	DefaultClientName = "Admin API Client"
	// DefaultRetryWait is used when a retriable response carries no Retry-After.
	DefaultRetryWait = time.Second
	// DeprecationHeader is set by the API when the requested resource is deprecated.
	DeprecationHeader = "X-Shopify-API-Deprecated-Reason"
)

// RetriableStatusCodes are retried while the retry budget allows it.
var RetriableStatusCodes = []int{http.StatusTooManyRequests, http.StatusServiceUnavailable}

// ErrNetwork matches every error returned by Fetch via errors.Is.
var ErrNetwork = errors.Sentinel(errors.ErrorTypeNetwork)

// Fetcher issues one logical request, retrying retriable failures.
// It is safe for concurrent use.
type Fetcher struct {
	client         Doer
	logger         Logger
	clientName     string
	retryWait      time.Duration
	retriableCodes []int
	limiter        *rate.Limiter
	metrics        *Metrics
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the structured log sink.
func WithLogger(logger Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithClientName sets the name used in error messages.
func WithClientName(name string) Option {
	return func(f *Fetcher) {
		if name != "" {
			f.clientName = name
		}
	}
}

// WithRetryWait sets the wait between attempts when the server gives no Retry-After.
func WithRetryWait(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.retryWait = d
		}
	}
}

// WithRetriableCodes replaces the retriable status code table.
func WithRetriableCodes(codes ...int) Option {
	return func(f *Fetcher) {
		f.retriableCodes = slices.Clone(codes)
	}
}

// WithRateLimit throttles attempts client-side. A zero limit disables throttling.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(f *Fetcher) {
		if limit <= 0 {
			f.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithMetrics records request, retry and latency metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = metrics
	}
}

// New creates a Fetcher sending through client. A nil client uses http.DefaultClient.
func New(client Doer, opts ...Option) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}

	f := &Fetcher{
		client:         client,
		clientName:     DefaultClientName,
		retryWait:      DefaultRetryWait,
		retriableCodes: slices.Clone(RetriableStatusCodes),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch sends req and retries network failures and retriable status codes
// until maxRetries retries have been spent. Non-retriable responses, including
// non-2xx ones, are returned as-is. A retriable response that exhausts the
// budget is returned too; only a network failure that exhausts it is an error.
func (f *Fetcher) Fetch(ctx context.Context, req Request, attempt, maxRetries int) (*http.Response, error) {
	ctx, requestID := ensureRequestID(ctx)
	nextAttempt := attempt + 1
	maxTries := maxRetries + 1

	start := time.Now()
	resp, err := f.do(ctx, req)
	if err == nil {
		f.metrics.ObserveResponse(req.Method, resp.StatusCode, time.Since(start))
		f.logger.Log(LogContent{
			Type:      LogTypeResponse,
			RequestID: requestID,
			Request:   &req,
			Response:  resp,
		})

		if !(f.isRetriable(resp.StatusCode) && nextAttempt <= maxTries) {
			if notice := resp.Header.Get(DeprecationHeader); notice != "" {
				f.logger.Log(LogContent{
					Type:              LogTypeDeprecationNotice,
					RequestID:         requestID,
					Request:           &req,
					DeprecationNotice: notice,
				})
			}
			return resp, nil
		}
	} else {
		f.metrics.ObserveError(req.Method)
		if nextAttempt > maxTries {
			return nil, f.exhausted(err, req, maxRetries)
		}
	}

	wait := f.retryWait
	if resp != nil {
		if retryAfter, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
			wait = retryAfter
		}
		drain(resp)
	}

	if err := sleep(ctx, wait); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeNetwork, f.clientName+": request cancelled while waiting to retry").
			WithContext("url", req.URL)
	}

	f.logger.Log(LogContent{
		Type:         LogTypeRetry,
		RequestID:    requestID,
		Request:      &req,
		Response:     resp,
		RetryAttempt: attempt,
		MaxRetries:   maxRetries,
	})
	f.metrics.ObserveRetry(req.Method)

	return f.Fetch(ctx, req, nextAttempt, maxRetries)
}

func (f *Fetcher) do(ctx context.Context, req Request) (*http.Response, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	httpReq, err := req.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}
	return f.client.Do(httpReq)
}

func (f *Fetcher) isRetriable(status int) bool {
	return slices.Contains(f.retriableCodes, status)
}

func (f *Fetcher) exhausted(cause error, req Request, maxRetries int) error {
	message := f.clientName + ": request failed"
	if maxRetries > 0 {
		message = f.clientName + ": Attempted maximum number of " + strconv.Itoa(maxRetries) + " network retries. Last message"
	}
	return errors.Wrap(cause, errors.ErrorTypeNetwork, message).
		WithContext("url", req.URL).
		WithContext("method", req.Method)
}

// parseRetryAfter reads a Retry-After value in (possibly fractional) seconds.
func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

func drain(resp *http.Response) {
	if resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type requestIDKey struct{}

// RequestIDFromContext returns the id Fetch assigned to the logical call.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

func ensureRequestID(ctx context.Context) (context.Context, string) {
	if id, ok := RequestIDFromContext(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return context.WithValue(ctx, requestIDKey{}, id), id
}
