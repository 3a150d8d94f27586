// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/medipredict/forecast-dashboard/pkg/constants"
)

// ValidateChartFormat checks if the chart format is one of the supported formats.
func ValidateChartFormat(format string) error {
	if format != constants.ChartFormatPNG && format != constants.ChartFormatSVG {
		return fmt.Errorf("expected chart format of %s or %s, got %s",
			constants.ChartFormatPNG, constants.ChartFormatSVG, format)
	}
	return nil
}

// ValidateLogFormat checks if the log format is one zap can be configured with.
func ValidateLogFormat(format string) error {
	switch format {
	case "", "json", "console":
		return nil
	}
	return fmt.Errorf("invalid log format: %s", format)
}
