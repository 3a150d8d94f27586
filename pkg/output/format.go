// Package output provides utilities for exporting forecast results.
package output

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/medipredict/forecast-dashboard/internal/result"
	"github.com/medipredict/forecast-dashboard/pkg/mathutil"
)

// CsvHeader is the header row of the CSV export.
var CsvHeader = []string{"series", "key", "date", "value"}

// CsvFormat writes every available series of res in long format: one row per
// series point, with the group key for ICU equipment and departments. The LOS
// average is written as a single undated row. Unavailable series are skipped.
func CsvFormat(w io.Writer, res *result.ForecastResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CsvHeader); err != nil {
		return err
	}

	writeSeries := func(series, key string, dates []string, values []float64) error {
		for i, date := range dates {
			if err := cw.Write([]string{series, key, date, formatValue(values[i])}); err != nil {
				return err
			}
		}
		return nil
	}

	if res.Admissions.Available() {
		if err := writeSeries("admissions", "", res.Admissions.Dates, res.Admissions.Values); err != nil {
			return err
		}
	}
	if res.LOS.Available() {
		if err := cw.Write([]string{"los", "avg", "", formatValue(res.LOS.Avg)}); err != nil {
			return err
		}
	}
	if res.Resources.Available() {
		if err := writeSeries("beds", "", res.Resources.Dates, res.Resources.Beds); err != nil {
			return err
		}
		if err := writeSeries("staff", "", res.Resources.Dates, res.Resources.Staff); err != nil {
			return err
		}
	}
	for _, entry := range res.ICU.AvailableEntries() {
		if err := writeSeries("icu", entry.Name, entry.Dates, entry.Values); err != nil {
			return err
		}
	}
	if res.HasEmergency() {
		if err := writeSeries("emergency", "", res.Emergency.Dates, res.Emergency.Values); err != nil {
			return err
		}
	}
	if res.HasDepartments() {
		for _, entry := range res.Departments.AvailableEntries() {
			if err := writeSeries("departments", entry.Name, entry.Dates, entry.Values); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// CsvString returns the CSV export of res as a string.
func CsvString(res *result.ForecastResult) string {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, res); err != nil {
		return ""
	}
	return buf.String()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(mathutil.Round(v), 'f', 2, 64)
}
