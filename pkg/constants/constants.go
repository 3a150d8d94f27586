// Package constants provides shared constants for the forecast dashboard.
package constants

import "time"

// DateLabelLayout is the layout of the date labels returned by the forecasting
// backend.
const DateLabelLayout = "2006-01-02"

// Backend constants
const (
	// ProcessDataPath is the forecasting endpoint relative to the backend URL.
	ProcessDataPath = "/api/process-data"

	// DefaultBackendURL is the forecasting backend used when none is configured.
	DefaultBackendURL = "http://127.0.0.1:5000"

	// DefaultBackendTimeout bounds a single forecast request.
	DefaultBackendTimeout = 2 * time.Minute
)

// Chart constants
const (
	// ChartFormatPNG renders charts as PNG images
	ChartFormatPNG = "png"

	// ChartFormatSVG renders charts as SVG documents
	ChartFormatSVG = "svg"

	// DefaultChartWidth is the default chart width in pixels
	DefaultChartWidth = 960

	// DefaultChartHeight is the default chart height in pixels
	DefaultChartHeight = 360
)

// Configuration file constants
const (
	// DefaultConfigFile is the default dashboard configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. DASHBOARD_BACKEND_URL.
	EnvPrefix = "DASHBOARD"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the dashboard
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum size of one uploaded CSV (32 MB)
	DefaultMaxUploadSizeBytes int64 = 32 * 1024 * 1024

	// DefaultSessionTTL is how long an idle page session is kept
	DefaultSessionTTL = 2 * time.Hour

	// SessionCookieName is the cookie carrying the page session id
	SessionCookieName = "forecast_session"
)

// Display messages
const (
	// LoadingMessage is shown while a forecast request is in flight.
	LoadingMessage = "Processing data... This may take a moment."

	// TransportFailureMessage is shown when the request or its decoding fails.
	TransportFailureMessage = "An error occurred while processing the data."

	// SessionClosedMessage ends a request that outlived its page session.
	SessionClosedMessage = "This session has expired. Reload the page to start again."

	// MissingFilesMessage is the blocking notice for a failed readiness check.
	MissingFilesMessage = "Please upload all five core CSV files to proceed."
)
