// Package testutil provides common utility functions for testing.
package testutil

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/medipredict/forecast-dashboard/pkg/constants"
)

// Dates returns n consecutive daily labels starting at 2025-03-01.
func Dates(n int) []string {
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]string, n)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i).Format(constants.DateLabelLayout)
	}
	return dates
}

// Values returns n values rising by step from base.
func Values(n int, base, step float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = base + float64(i)*step
	}
	return values
}

// SeriesJSON encodes a {dates, values} series object.
func SeriesJSON(n int, base float64) string {
	return fmt.Sprintf(`{"dates":%s,"values":%s}`, mustJSON(Dates(n)), mustJSON(Values(n, base, 0.5)))
}

// ResourcesJSON encodes a {dates, beds, staff} object.
func ResourcesJSON(n int) string {
	return fmt.Sprintf(`{"dates":%s,"beds":%s,"staff":%s}`,
		mustJSON(Dates(n)), mustJSON(Values(n, 50, 1)), mustJSON(Values(n, 20, 0)))
}

// ScenarioA is a complete response without optional sections: 30-day
// admissions, an average LOS of 4.2 and one ICU equipment series.
func ScenarioA() string {
	return fmt.Sprintf(`{"admissions":%s,"los":{"avg":4.2},"resources":%s,"icu":{"ventilators":%s}}`,
		SeriesJSON(30, 12), ResourcesJSON(30), SeriesJSON(30, 4))
}

// ScenarioD is a complete response with the emergency section and two
// departments, one of them marked as unavailable.
func ScenarioD() string {
	return fmt.Sprintf(`{"admissions":%s,"los":{"avg":5.125},"resources":%s,"icu":{"ventilators":%s},`+
		`"emergency":%s,"departments":{"cardiology":%s,"radiology":{"error":"insufficient data"}}}`,
		SeriesJSON(30, 12), ResourcesJSON(30), SeriesJSON(30, 4), SeriesJSON(30, 30), SeriesJSON(30, 7))
}

// ErrorJSON encodes a backend-reported error.
func ErrorJSON(message string) string {
	return fmt.Sprintf(`{"error":%s}`, mustJSON(message))
}

func mustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
