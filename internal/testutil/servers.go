package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// AdminServer is an httptest server that replays canned admin API responses
// and records what it received.
type AdminServer struct {
	*httptest.Server

	mu        sync.Mutex
	responses []MockResponse
	requests  []RecordedRequest
}

// NewAdminServer starts a server answering with responses in order. The last
// response repeats once the queue runs out. The server closes with the test.
func NewAdminServer(t testing.TB, responses ...MockResponse) *AdminServer {
	t.Helper()

	if len(responses) == 0 {
		responses = []MockResponse{{StatusCode: http.StatusOK, Body: ProductsJSON}}
	}

	s := &AdminServer{responses: responses}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *AdminServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, record(r))
	next := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	s.mu.Unlock()

	for key, value := range next.Headers {
		w.Header().Set(key, value)
	}
	status := next.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(next.Body))
}

// Requests returns the requests received so far
func (s *AdminServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// ProductsJSON is a small products listing in the admin API's shape
const ProductsJSON = `{"products":[{"id":632910392,"title":"IPod Nano - 8GB","status":"active"},{"id":921728736,"title":"IPod Touch 8GB","status":"draft"}]}`
