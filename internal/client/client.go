// Package client talks to the forecasting backend.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/medipredict/forecast-dashboard/internal/pipeline"
	"github.com/medipredict/forecast-dashboard/internal/result"
	"github.com/medipredict/forecast-dashboard/pkg/constants"
	"go.uber.org/zap"
)

// maxResponseBytes bounds how much of a backend response is read.
const maxResponseBytes = 64 << 20

// Client posts the selected files to the forecasting endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client for the backend at baseURL. A non-positive timeout
// falls back to the default backend timeout.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = constants.DefaultBackendTimeout
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = constants.DefaultBackendURL
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Endpoint returns the URL that Process posts to.
func (c *Client) Endpoint() string {
	return c.baseURL + constants.ProcessDataPath
}

// BuildPayload encodes files as a multipart form. Each file becomes one part
// named after its slot; nil files are skipped.
func BuildPayload(files []pipeline.NamedFile) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, f := range files {
		if f.File == nil {
			continue
		}
		part, err := writer.CreateFormFile(string(f.Slot), f.File.Name)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form part for %s: %w", f.Slot, err)
		}
		if _, err := part.Write(f.File.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write form part for %s: %w", f.Slot, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// Process sends files in a single POST and decodes the response. Failures to
// get a usable response are returned as *pipeline.TransportError and errors
// reported by the backend as *pipeline.ServerReportedError.
func (c *Client) Process(ctx context.Context, files []pipeline.NamedFile) (*result.ForecastResult, error) {
	body, contentType, err := BuildPayload(files)
	if err != nil {
		return nil, &pipeline.TransportError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), body)
	if err != nil {
		return nil, &pipeline.TransportError{Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &pipeline.TransportError{Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close response body",
				zap.String("op", "client.Process"),
				zap.Error(closeErr),
			)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &pipeline.TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("backend responded",
		zap.String("op", "client.Process"),
		zap.String("url", c.Endpoint()),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Int("files", len(files)),
		zap.Duration("duration", time.Since(start)),
	)

	res, decodeErr := result.Decode(data)

	// A JSON error body is reported verbatim whatever the status code.
	var serverErr *result.ServerError
	if errors.As(decodeErr, &serverErr) {
		return nil, &pipeline.ServerReportedError{Message: serverErr.Message}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &pipeline.TransportError{Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	if decodeErr != nil {
		return nil, &pipeline.TransportError{Err: decodeErr}
	}
	return res, nil
}
