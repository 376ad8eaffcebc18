package fetch

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// Doer is the transport primitive the fetcher sends requests through.
// *http.Client and transport.Client both satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request is the descriptor produced for every call. It is owned by the call
// that built it and never retained.
type Request struct {
	Method string
	URL    string
	Header http.Header
	// Body is nil when the call carries no payload.
	Body *string
}

// HTTPRequest materializes the descriptor. A fresh *http.Request is built for
// every attempt so the body can be replayed.
func (r Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if r.Body != nil {
		body = strings.NewReader(*r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, err
	}
	if r.Header != nil {
		req.Header = r.Header.Clone()
	}
	return req, nil
}

// Func is the fetch-with-retry contract consumed by the REST client. attempt
// starts at 1; maxRetries is the retry budget for this logical call.
type Func func(ctx context.Context, req Request, attempt, maxRetries int) (*http.Response, error)

// LogType names a structured log event.
type LogType string

const (
	LogTypeResponse              LogType = "HTTP-Response"
	LogTypeRetry                 LogType = "HTTP-Retry"
	LogTypeDeprecationNotice     LogType = "HTTP-Response-Deprecation-Notice"
	LogTypeUnsupportedAPIVersion LogType = "Unsupported_Api_Version"
)

// LogContent is the payload handed to a Logger. Which fields are set depends on Type.
type LogContent struct {
	Type      LogType
	RequestID string

	Request  *Request
	Response *http.Response

	RetryAttempt int
	MaxRetries   int

	DeprecationNotice string

	APIVersion           string
	SupportedAPIVersions []string
}

// Logger receives structured log events. A nil Logger is a no-op.
type Logger func(content LogContent)

// Log calls l when it is set.
func (l Logger) Log(content LogContent) {
	if l != nil {
		l(content)
	}
}
