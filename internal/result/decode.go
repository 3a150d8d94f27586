package result

import (
	"github.com/tidwall/gjson"
)

// Decode parses a backend response body. It returns ErrNotJSON when body is
// not a JSON object and a *ServerError when the object carries a truthy
// top-level "error". Any other object decodes into a ForecastResult; fields
// that are missing, malformed or error-marked are flagged on the field itself
// and never fail the decode.
func Decode(body []byte) (*ForecastResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrNotJSON
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, ErrNotJSON
	}
	if msg, ok := marker(root); ok {
		return nil, &ServerError{Message: msg}
	}

	res := &ForecastResult{
		Admissions: decodeSeries(root.Get("admissions"), "values"),
		LOS:        decodeLOS(root.Get("los")),
		Resources:  decodeResources(root.Get("resources")),
		ICU:        decodeGroup(root.Get("icu")),
	}

	if emergency := root.Get("emergency"); present(emergency) {
		series := decodeSeries(emergency, "values")
		res.Emergency = &series
	}
	if departments := root.Get("departments"); present(departments) {
		group := decodeGroup(departments)
		res.Departments = &group
	}
	return res, nil
}

// present mirrors a truthiness check on an optional field: absent, null,
// false, zero and empty string all count as not present.
func present(v gjson.Result) bool {
	if !v.Exists() {
		return false
	}
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	}
	return true
}

// marker returns the error marker message of an object, if it has a truthy
// "error" field.
func marker(v gjson.Result) (string, bool) {
	if !v.IsObject() {
		return "", false
	}
	e := v.Get("error")
	if !present(e) {
		return "", false
	}
	switch e.Type {
	case gjson.String:
		return e.Str, true
	case gjson.True:
		return "unavailable", true
	}
	return e.Raw, true
}

func decodeSeries(v gjson.Result, valuesKey string) SeriesResult {
	if !v.Exists() || v.Type == gjson.Null {
		return SeriesResult{Err: ReasonMissing}
	}
	if msg, ok := marker(v); ok {
		return SeriesResult{Err: msg}
	}
	if !v.IsObject() {
		return SeriesResult{Err: ReasonInvalid}
	}

	dates, ok := stringArray(v.Get("dates"))
	if !ok {
		return SeriesResult{Err: ReasonInvalid}
	}
	values, ok := numberArray(v.Get(valuesKey))
	if !ok {
		return SeriesResult{Err: ReasonInvalid}
	}
	if len(dates) != len(values) {
		return SeriesResult{Err: ReasonMismatch}
	}
	return SeriesResult{Dates: dates, Values: values}
}

func decodeLOS(v gjson.Result) LOSResult {
	if !v.Exists() || v.Type == gjson.Null {
		return LOSResult{Err: ReasonMissing}
	}
	if msg, ok := marker(v); ok {
		return LOSResult{Err: msg}
	}
	avg := v.Get("avg")
	if !v.IsObject() || avg.Type != gjson.Number {
		return LOSResult{Err: ReasonInvalid}
	}
	return LOSResult{Avg: avg.Num}
}

func decodeResources(v gjson.Result) ResourcesResult {
	if !v.Exists() || v.Type == gjson.Null {
		return ResourcesResult{Err: ReasonMissing}
	}
	if msg, ok := marker(v); ok {
		return ResourcesResult{Err: msg}
	}
	if !v.IsObject() {
		return ResourcesResult{Err: ReasonInvalid}
	}

	dates, ok := stringArray(v.Get("dates"))
	if !ok {
		return ResourcesResult{Err: ReasonInvalid}
	}
	beds, ok := numberArray(v.Get("beds"))
	if !ok {
		return ResourcesResult{Err: ReasonInvalid}
	}
	staff, ok := numberArray(v.Get("staff"))
	if !ok {
		return ResourcesResult{Err: ReasonInvalid}
	}
	if len(beds) != len(dates) || len(staff) != len(dates) {
		return ResourcesResult{Err: ReasonMismatch}
	}
	return ResourcesResult{Dates: dates, Beds: beds, Staff: staff}
}

func decodeGroup(v gjson.Result) SeriesGroup {
	if !v.Exists() || v.Type == gjson.Null {
		return SeriesGroup{Err: ReasonMissing}
	}
	if msg, ok := marker(v); ok {
		return SeriesGroup{Err: msg}
	}
	if !v.IsObject() {
		return SeriesGroup{Err: ReasonInvalid}
	}

	var group SeriesGroup
	v.ForEach(func(key, value gjson.Result) bool {
		group.Entries = append(group.Entries, NamedSeries{
			Name:         key.String(),
			SeriesResult: decodeSeries(value, "values"),
		})
		return true
	})
	return group
}

func stringArray(v gjson.Result) ([]string, bool) {
	if !v.IsArray() {
		return nil, false
	}
	items := v.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type != gjson.String {
			return nil, false
		}
		out = append(out, item.Str)
	}
	return out, true
}

func numberArray(v gjson.Result) ([]float64, bool) {
	if !v.IsArray() {
		return nil, false
	}
	items := v.Array()
	out := make([]float64, 0, len(items))
	for _, item := range items {
		if item.Type != gjson.Number {
			return nil, false
		}
		out = append(out, item.Num)
	}
	return out, true
}
