package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/medipredict/forecast-dashboard/pkg/constants"
)

// Request is one multipart request received by a Backend.
type Request struct {
	Method   string
	Path     string
	Files    map[string]string // field name → file name
	Contents map[string][]byte // field name → file content
}

// Backend is a fake forecasting backend answering every request with a fixed
// status and body.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	status   int
	body     string
	requests []Request
}

// NewBackend starts a fake backend closed at the end of the test.
func NewBackend(t *testing.T, status int, body string) *Backend {
	t.Helper()

	b := &Backend{status: status, body: body}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the base URL of the backend.
func (b *Backend) URL() string {
	return b.Server.URL
}

// Respond changes the answer for subsequent requests.
func (b *Backend) Respond(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
	b.body = body
}

// Calls returns the number of requests received.
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

// LastRequest returns the most recent request.
func (b *Backend) LastRequest() Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return Request{}
	}
	return b.requests[len(b.requests)-1]
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	req := Request{
		Method:   r.Method,
		Path:     r.URL.Path,
		Files:    make(map[string]string),
		Contents: make(map[string][]byte),
	}
	if err := r.ParseMultipartForm(constants.DefaultMaxUploadSizeBytes); err == nil && r.MultipartForm != nil {
		for field, headers := range r.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}
			req.Files[field] = headers[0].Filename
			if f, err := headers[0].Open(); err == nil {
				req.Contents[field], _ = io.ReadAll(f)
				_ = f.Close()
			}
		}
	}

	b.mu.Lock()
	b.requests = append(b.requests, req)
	status, body := b.status, b.body
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
