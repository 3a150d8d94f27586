package integration

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/medipredict/forecast-dashboard/internal/chart"
	"github.com/medipredict/forecast-dashboard/internal/pipeline"
	"github.com/medipredict/forecast-dashboard/internal/result"
	"github.com/medipredict/forecast-dashboard/pkg/constants"
	"github.com/medipredict/forecast-dashboard/pkg/output"
	"github.com/medipredict/forecast-dashboard/pkg/testutil"
	"go.uber.org/zap"
)

// TestRunner is a simple test runner for debugging
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// largeResponse builds a response with a year of data, many ICU equipment
// types and departments.
func largeResponse(days, groups int) string {
	var icu, departments []string
	for i := 0; i < groups; i++ {
		icu = append(icu, fmt.Sprintf(`"equipment_%d":%s`, i, testutil.SeriesJSON(days, float64(i))))
		departments = append(departments, fmt.Sprintf(`"dept_%d":%s`, i, testutil.SeriesJSON(days, float64(i+10))))
	}
	return fmt.Sprintf(`{"admissions":%s,"los":{"avg":3.5},"resources":%s,"icu":{%s},"emergency":%s,"departments":{%s}}`,
		testutil.SeriesJSON(days, 20), testutil.ResourcesJSON(days),
		strings.Join(icu, ","), testutil.SeriesJSON(days, 5), strings.Join(departments, ","))
}

// TestPerformance tests performance characteristics of a large render pass
func TestPerformance(t *testing.T) {
	body := []byte(largeResponse(365, 12))

	start := time.Now()
	res, err := result.Decode(body)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	decodeTime := time.Since(start)

	renderer := chart.NewGoChartRenderer(zap.NewNop(), 480, 200, constants.ChartFormatPNG)
	p := pipeline.New(nil, renderer, zap.NewNop())

	start = time.Now()
	p.Render(res)
	renderTime := time.Since(start)

	if p.HandleCount() != res.ChartCount() {
		t.Fatalf("expected %d charts, got %d", res.ChartCount(), p.HandleCount())
	}

	start = time.Now()
	csv := output.CsvString(res)
	exportTime := time.Since(start)
	if csv == "" {
		t.Fatalf("expected CSV export")
	}

	t.Logf("Performance breakdown:")
	t.Logf("  Decode: %v", decodeTime)
	t.Logf("  Render (%d charts): %v", p.HandleCount(), renderTime)
	t.Logf("  Export: %v", exportTime)

	if renderTime > 60*time.Second {
		t.Errorf("Render took too long: %v", renderTime)
	}
}

func BenchmarkDecode(b *testing.B) {
	body := []byte(largeResponse(365, 12))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := result.Decode(body); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRenderPass(b *testing.B) {
	res, err := result.Decode([]byte(testutil.ScenarioD()))
	if err != nil {
		b.Fatal(err)
	}
	p := pipeline.New(nil, chart.NewGoChartRenderer(zap.NewNop(), 480, 200, constants.ChartFormatPNG), zap.NewNop())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Render(res)
	}
}
