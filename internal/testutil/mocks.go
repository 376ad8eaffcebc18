package testutil

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/brendan.keane/adminrest/pkg/rest"
)

// MockResponse describes one canned reply. A non-nil Err is returned instead
// of a response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Err        error
}

// HTTPResponse builds a fresh *http.Response for the canned reply
func (r MockResponse) HTTPResponse() *http.Response {
	status := r.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	resp := &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(r.Body)),
	}
	for key, value := range r.Headers {
		resp.Header.Set(key, value)
	}
	return resp
}

// RecordedRequest is a snapshot of a request taken before its body is consumed
type RecordedRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   string
}

func record(req *http.Request) RecordedRequest {
	rec := RecordedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
	}
	if req.Body != nil {
		body, _ := io.ReadAll(req.Body)
		rec.Body = string(body)
	}
	return rec
}

// MockHTTPClient replays queued responses in order and records every request.
// Once the queue is down to one entry that entry is repeated.
type MockHTTPClient struct {
	mu        sync.Mutex
	responses []MockResponse
	requests  []RecordedRequest
}

// NewMockHTTPClient creates a mock client that answers with responses in order
func NewMockHTTPClient(responses ...MockResponse) *MockHTTPClient {
	if len(responses) == 0 {
		responses = []MockResponse{{StatusCode: http.StatusOK, Body: `{}`}}
	}
	return &MockHTTPClient{responses: responses}
}

// Do implements fetch.Doer
func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, record(req))

	next := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	if next.Err != nil {
		return nil, next.Err
	}
	resp := next.HTTPResponse()
	resp.Request = req
	return resp, nil
}

// Requests returns the requests seen so far
func (m *MockHTTPClient) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedRequest(nil), m.requests...)
}

// RequesterCall is one call made through MockRequester
type RequesterCall struct {
	Method  string
	Path    string
	Options *rest.RequestOptions
}

// MockRequester stands in for *rest.Client wherever a Requester is accepted
type MockRequester struct {
	mu       sync.Mutex
	Response MockResponse
	Calls    []RequesterCall
}

// NewMockRequester creates a requester that always answers with resp
func NewMockRequester(resp MockResponse) *MockRequester {
	return &MockRequester{Response: resp}
}

// Request records the call and returns the canned response
func (m *MockRequester) Request(_ context.Context, method, path string, opts *rest.RequestOptions) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, RequesterCall{Method: method, Path: path, Options: opts})
	if m.Response.Err != nil {
		return nil, m.Response.Err
	}
	return m.Response.HTTPResponse(), nil
}

// LastCall returns the most recent call, or false when there was none
func (m *MockRequester) LastCall() (RequesterCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return RequesterCall{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}
