// Package charts renders voyage series as bar, line and pie images.
package charts

import (
	"errors"
	"io"
	"math"
	"strings"

	"cargodash/internal/common"
	"cargodash/internal/models"

	chart "github.com/wcharczuk/go-chart/v2"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

// Output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// SeriesName labels the plotted measure.
const SeriesName = models.ColIntake

const (
	chartHeight  = 480
	minWidth     = 1000
	barWidth     = 40
	barSpacing   = 20
	chartPadding = 150
)

func renderer(format string) (chart.RendererProvider, error) {
	switch strings.ToLower(format) {
	case FormatPNG, "":
		return chart.PNG, nil
	case FormatSVG:
		return chart.SVG, nil
	}
	return nil, common.NewConfigError("format", "unsupported chart format %q (want %s or %s)", format, FormatPNG, FormatSVG)
}

// ContentType returns the MIME type of a chart format.
func ContentType(format string) (string, error) {
	switch strings.ToLower(format) {
	case FormatPNG, "":
		return "image/png", nil
	case FormatSVG:
		return "image/svg+xml", nil
	}
	return "", common.NewConfigError("format", "unsupported chart format %q", format)
}

// valueRange always includes zero and never collapses to an empty span.
func valueRange(values []float64) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo == 0 {
		hi = 1
	}
	pad := (hi - lo) * 0.1
	if lo < 0 {
		lo -= pad
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + pad}
}

func width(n int) int {
	return max(minWidth, chartPadding+n*(barWidth+barSpacing))
}

// Bar draws one bar per point.
func Bar(w io.Writer, format, title string, points []models.SeriesPoint) error {
	rp, err := renderer(format)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return ErrNoData
	}

	bars := make([]chart.Value, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		bars[i] = chart.Value{Label: p.Label, Value: p.Value}
		values[i] = p.Value
	}

	bc := chart.BarChart{
		Title:      title,
		Width:      width(len(points)),
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			Name:  SeriesName,
			Range: valueRange(values),
		},
		Bars: bars,
	}
	return bc.Render(rp, w)
}

// Line joins the points left to right over categorical ticks.
func Line(w io.Writer, format, title string, points []models.SeriesPoint) error {
	rp, err := renderer(format)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return ErrNoData
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	ticks := make([]chart.Tick, len(points))
	for i, p := range points {
		xs[i] = float64(i)
		ys[i] = p.Value
		ticks[i] = chart.Tick{Value: float64(i), Label: p.Label}
	}
	if len(points) == 1 {
		// The x range is taken from the ticks and must not be empty, so a
		// lone category is drawn as a short level segment around its tick.
		xs = []float64{-0.5, 0.5}
		ys = []float64{ys[0], ys[0]}
		ticks = []chart.Tick{{Value: -1}, ticks[0], {Value: 1}}
	}

	ch := chart.Chart{
		Title:      title,
		Width:      width(len(points)),
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16}},
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: ticks[0].Value, Max: ticks[len(ticks)-1].Value},
		},
		YAxis: chart.YAxis{
			Name:  SeriesName,
			Range: valueRange(ys),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: SeriesName, XValues: xs, YValues: ys},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(rp, w)
}

// Pie draws an aggregate table as slices of the whole. Entries with no
// positive intake are left out.
func Pie(w io.Writer, format, title string, items []models.AggregateItem) error {
	rp, err := renderer(format)
	if err != nil {
		return err
	}

	values := make([]chart.Value, 0, len(items))
	for _, it := range items {
		if it.Intake > 0 {
			values = append(values, chart.Value{Label: it.Label, Value: it.Intake})
		}
	}
	if len(values) == 0 {
		return ErrNoData
	}

	pc := chart.PieChart{
		Title:  title,
		Width:  chartHeight,
		Height: chartHeight,
		Values: values,
	}
	return pc.Render(rp, w)
}
