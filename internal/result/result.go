// Package result defines the forecast payload returned by the forecasting
// backend and decodes it into typed, marker-aware values.
package result

import (
	"errors"
	"fmt"
)

// Unavailability reasons assigned while decoding.
const (
	ReasonMissing  = "missing from response"
	ReasonMismatch = "series length mismatch"
	ReasonInvalid  = "invalid series payload"
)

// ErrNotJSON is returned when a response body is not a JSON object.
var ErrNotJSON = errors.New("response is not a JSON object")

// ServerError is a pipeline-level error reported by the backend in a
// top-level "error" field.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// SeriesResult is a dated numeric series. Err is non-empty when the backend
// marked the series as unavailable or it failed to decode.
type SeriesResult struct {
	Dates  []string  `json:"dates,omitempty"`
	Values []float64 `json:"values,omitempty"`
	Err    string    `json:"error,omitempty"`
}

// Available reports whether the series can be charted.
func (s SeriesResult) Available() bool {
	return s.Err == ""
}

// LOSResult carries the predicted average length of stay in days.
type LOSResult struct {
	Avg float64 `json:"avg"`
	Err string  `json:"error,omitempty"`
}

// Available reports whether the metric can be displayed.
func (l LOSResult) Available() bool {
	return l.Err == ""
}

// ResourcesResult holds bed and staff needs sharing one date axis.
type ResourcesResult struct {
	Dates []string  `json:"dates,omitempty"`
	Beds  []float64 `json:"beds,omitempty"`
	Staff []float64 `json:"staff,omitempty"`
	Err   string    `json:"error,omitempty"`
}

// Available reports whether the resources chart can be drawn.
func (r ResourcesResult) Available() bool {
	return r.Err == ""
}

// NamedSeries is one keyed entry of a SeriesGroup.
type NamedSeries struct {
	Name string `json:"name"`
	SeriesResult
}

// SeriesGroup is a keyed collection of series (ICU equipment, departments)
// kept in response document order.
type SeriesGroup struct {
	Entries []NamedSeries `json:"entries,omitempty"`
	Err     string        `json:"error,omitempty"`
}

// Available reports whether the group as a whole is usable.
func (g SeriesGroup) Available() bool {
	return g.Err == ""
}

// AvailableEntries returns the entries not carrying an error marker. A group
// that is itself marked has none.
func (g SeriesGroup) AvailableEntries() []NamedSeries {
	if !g.Available() {
		return nil
	}
	entries := make([]NamedSeries, 0, len(g.Entries))
	for _, entry := range g.Entries {
		if entry.Available() {
			entries = append(entries, entry)
		}
	}
	return entries
}

// ForecastResult is the decoded backend response. Emergency and Departments
// are nil when the backend omitted them.
type ForecastResult struct {
	Admissions  SeriesResult    `json:"admissions"`
	LOS         LOSResult       `json:"los"`
	Resources   ResourcesResult `json:"resources"`
	ICU         SeriesGroup     `json:"icu"`
	Emergency   *SeriesResult   `json:"emergency,omitempty"`
	Departments *SeriesGroup    `json:"departments,omitempty"`
}

// HasEmergency reports whether the emergency section should be shown.
func (r *ForecastResult) HasEmergency() bool {
	return r.Emergency != nil && r.Emergency.Available()
}

// HasDepartments reports whether the department section should be shown.
func (r *ForecastResult) HasDepartments() bool {
	return r.Departments != nil && r.Departments.Available()
}

// ChartCount is the number of charts a render pass of r creates.
func (r *ForecastResult) ChartCount() int {
	count := 0
	if r.Admissions.Available() {
		count++
	}
	if r.Resources.Available() {
		count++
	}
	count += len(r.ICU.AvailableEntries())
	if r.HasEmergency() {
		count++
	}
	if r.HasDepartments() {
		count += len(r.Departments.AvailableEntries())
	}
	return count
}

// Gaps lists every unavailable series as "field: reason" or
// "field.key: reason", in render order.
func (r *ForecastResult) Gaps() []string {
	var gaps []string
	add := func(field, reason string) {
		if reason != "" {
			gaps = append(gaps, fmt.Sprintf("%s: %s", field, reason))
		}
	}
	addGroup := func(field string, g SeriesGroup) {
		if !g.Available() {
			add(field, g.Err)
			return
		}
		for _, entry := range g.Entries {
			add(field+"."+entry.Name, entry.Err)
		}
	}

	add("admissions", r.Admissions.Err)
	add("los", r.LOS.Err)
	add("resources", r.Resources.Err)
	addGroup("icu", r.ICU)
	if r.Emergency != nil {
		add("emergency", r.Emergency.Err)
	}
	if r.Departments != nil {
		addGroup("departments", *r.Departments)
	}
	return gaps
}
