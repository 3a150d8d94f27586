package output

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/medipredict/forecast-dashboard/internal/result"
	"github.com/medipredict/forecast-dashboard/pkg/testutil"
)

func decode(t *testing.T, body string) *result.ForecastResult {
	t.Helper()
	res, err := result.Decode([]byte(body))
	if err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	return res
}

func readRows(t *testing.T, out string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	return rows
}

func TestCsvFormat(t *testing.T) {
	res := decode(t, testutil.ScenarioA())

	var sb strings.Builder
	if err := CsvFormat(&sb, res); err != nil {
		t.Fatalf("CsvFormat returned error: %v", err)
	}
	rows := readRows(t, sb.String())

	if strings.Join(rows[0], ",") != "series,key,date,value" {
		t.Fatalf("unexpected header %v", rows[0])
	}

	// 30 admissions + los + 30 beds + 30 staff + 30 ventilators
	if got := len(rows) - 1; got != 121 {
		t.Fatalf("expected 121 data rows, got %d", got)
	}
	if strings.Join(rows[1], ",") != "admissions,,2025-03-01,12.00" {
		t.Errorf("unexpected first admissions row %v", rows[1])
	}
	if strings.Join(rows[31], ",") != "los,avg,,4.20" {
		t.Errorf("unexpected los row %v", rows[31])
	}
	if rows[32][0] != "beds" || rows[32][3] != "50.00" {
		t.Errorf("unexpected first beds row %v", rows[32])
	}
	last := rows[len(rows)-1]
	if last[0] != "icu" || last[1] != "ventilators" || last[2] != "2025-03-30" {
		t.Errorf("unexpected last row %v", last)
	}
}

func TestCsvFormatSkipsUnavailable(t *testing.T) {
	res := decode(t, testutil.ScenarioD())

	rows := readRows(t, CsvString(res))

	var departments []string
	for _, row := range rows[1:] {
		if row[0] == "departments" {
			departments = append(departments, row[1])
		}
	}
	if len(departments) != 30 {
		t.Fatalf("expected 30 department rows, got %d", len(departments))
	}
	for _, key := range departments {
		if key != "cardiology" {
			t.Fatalf("unexpected department %q in export", key)
		}
	}
}

func TestCsvFormatAllUnavailable(t *testing.T) {
	res := decode(t, `{"admissions":{"error":"x"},"los":{"error":"x"},"resources":{"error":"x"},"icu":{"error":"x"}}`)

	out := CsvString(res)
	if strings.TrimSpace(out) != "series,key,date,value" {
		t.Fatalf("expected header only, got %q", out)
	}
}

func TestCsvFormatQuotesKeys(t *testing.T) {
	res := decode(t, `{"admissions":{"error":"x"},"los":{"avg":1},"resources":{"error":"x"},`+
		`"icu":{"beds, surgical":{"dates":["2025-03-01"],"values":[3]}}}`)

	rows := readRows(t, CsvString(res))
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[2][1] != "beds, surgical" {
		t.Fatalf("expected key with comma to round trip, got %q", rows[2][1])
	}
}
