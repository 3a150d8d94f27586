package chart

import (
	"bytes"
	"fmt"

	"github.com/medipredict/forecast-dashboard/pkg/constants"
	"github.com/medipredict/forecast-dashboard/pkg/datetime"
	"github.com/medipredict/forecast-dashboard/pkg/mathutil"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"
)

// maxXTicks caps the number of date labels drawn on the X axis.
const maxXTicks = 10

// GoChartRenderer renders line charts with go-chart.
type GoChartRenderer struct {
	Width  int
	Height int
	Format string // png or svg
	logger *zap.Logger
}

// NewGoChartRenderer returns a renderer producing charts of the given size and
// format. Zero or unknown values fall back to the defaults.
func NewGoChartRenderer(logger *zap.Logger, width, height int, format string) *GoChartRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if width <= 0 {
		width = constants.DefaultChartWidth
	}
	if height <= 0 {
		height = constants.DefaultChartHeight
	}
	if format != constants.ChartFormatSVG {
		format = constants.ChartFormatPNG
	}
	return &GoChartRenderer{Width: width, Height: height, Format: format, logger: logger}
}

// Render draws spec and returns a handle holding the encoded image. A spec
// without points yields a handle with no content.
func (r *GoChartRenderer) Render(spec Spec) (Handle, error) {
	contentType := "image/png"
	provider := gochart.PNG
	if r.Format == constants.ChartFormatSVG {
		contentType = "image/svg+xml"
		provider = gochart.SVG
	}

	if len(spec.Labels) == 0 {
		r.logger.Debug("rendering empty chart",
			zap.String("op", "chart.Render"),
			zap.String("chart", spec.ID),
		)
		return NewHandle(spec.ID, contentType, nil), nil
	}

	ch, err := buildChart(spec, r.Width, r.Height)
	if err != nil {
		return nil, err
	}

	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(provider, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart %s: %w", spec.ID, err)
	}

	r.logger.Debug("chart rendered",
		zap.String("op", "chart.Render"),
		zap.String("chart", spec.ID),
		zap.Int("points", len(spec.Labels)),
		zap.Int("series", len(spec.Series)),
		zap.Int("bytes", buf.Len()),
	)
	return NewHandle(spec.ID, contentType, buf.Bytes()), nil
}

// buildChart maps a Spec onto a go-chart line chart. X values are label
// positions; the value axis always starts at zero.
func buildChart(spec Spec, width, height int) (gochart.Chart, error) {
	n := len(spec.Labels)
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	step := datetime.TickStep(n, maxXTicks)
	ticks := make([]gochart.Tick, 0, n/step+1)
	for i := 0; i < n; i += step {
		ticks = append(ticks, gochart.Tick{Value: xs[i], Label: datetime.TickLabel(spec.Labels[i])})
	}

	// A single point still needs a non-zero X range.
	maxX := float64(n - 1)
	if maxX <= 0 {
		maxX = 1
	}

	values := make([][]float64, 0, len(spec.Series))
	series := make([]gochart.Series, 0, len(spec.Series))
	for _, s := range spec.Series {
		if len(s.Values) != n {
			return gochart.Chart{}, fmt.Errorf("chart %s: series %q has %d values for %d labels", spec.ID, s.Name, len(s.Values), n)
		}
		values = append(values, s.Values)
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: s.Values,
			Style: gochart.Style{
				StrokeColor: drawing.Color{R: s.Color.R, G: s.Color.G, B: s.Color.B, A: 255},
				FillColor:   drawing.Color{R: s.Color.R, G: s.Color.G, B: s.Color.B, A: FillAlpha},
				StrokeWidth: 2,
			},
		})
	}
	if len(series) == 0 {
		return gochart.Chart{}, fmt.Errorf("chart %s has no series", spec.ID)
	}

	minY, maxY := mathutil.ZeroBasedRange(values...)

	ch := gochart.Chart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: 0, Max: maxX},
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: minY, Max: maxY},
		},
		Series: series,
	}
	return ch, nil
}
