// Package report renders a filtered voyage view as a PDF dashboard.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"time"

	"cargodash/internal/charts"
	"cargodash/internal/engine"
	"cargodash/internal/models"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// https://godoc.org/github.com/jung-kurt/gofpdf

// Chart is a pre-rendered PNG placed on its own page.
type Chart struct {
	Title string
	PNG   []byte
}

// Input is everything printed in a report.
type Input struct {
	Title     string
	Generated time.Time
	Selection engine.Selection
	Summary   *models.DashboardData
	Charts    []Chart
}

// Options controls which charts Build renders.
type Options struct {
	Title    string
	Axis     string
	TopN     int
	LineRows int
	Now      func() time.Time
}

// Build summarizes the view and renders its bar, line and pie charts.
// Charts with nothing to plot are left out.
func Build(view engine.View, sel engine.Selection, opts Options) (*Input, error) {
	if opts.Axis == "" {
		opts.Axis = models.ColCommodity
	}
	if opts.Title == "" {
		opts.Title = "Cargo voyages"
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	summary, err := view.Summarize(opts.TopN)
	if err != nil {
		return nil, err
	}

	in := &Input{
		Title:     opts.Title,
		Generated: now(),
		Selection: sel,
		Summary:   summary,
	}

	bar, err := view.BarSeries(opts.Axis, engine.StatMean)
	if err != nil {
		return nil, err
	}
	line, err := view.LineSeries(opts.Axis, opts.LineRows)
	if err != nil {
		return nil, err
	}

	renders := []struct {
		title string
		draw  func(io.Writer) error
	}{
		{"Mean intake by " + opts.Axis, func(w io.Writer) error { return charts.Bar(w, charts.FormatPNG, "", bar) }},
		{fmt.Sprintf("Intake by %s, first %d voyages", opts.Axis, opts.LineRows), func(w io.Writer) error { return charts.Line(w, charts.FormatPNG, "", line) }},
		{"Share of intake by " + opts.Axis, func(w io.Writer) error {
			return charts.Pie(w, charts.FormatPNG, "", summary.Breakdown[opts.Axis])
		}},
	}
	for _, r := range renders {
		var buf bytes.Buffer
		if err := r.draw(&buf); err != nil {
			if errors.Is(err, charts.ErrNoData) {
				continue
			}
			return nil, fmt.Errorf("render %q: %w", r.title, err)
		}
		in.Charts = append(in.Charts, Chart{Title: r.title, PNG: buf.Bytes()})
	}
	return in, nil
}

// Write renders the report as a landscape A4 PDF.
func Write(w io.Writer, in *Input) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(in.Title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(in.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, "Generated "+in.Generated.Format(time.RFC1123), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr("Filters: "+describe(in.Selection)), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	s := in.Summary
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("%d voyages, %s t total intake, %d load ports, %d discharge ports, %d commodities",
		s.Voyages, formatTonnes(s.TotalIntake), s.LoadPorts, s.DischPorts, s.Commodities), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// One breakdown table per column, side by side, cut to fit the page.
	const colWidth = 88.0
	top := pdf.GetY()
	_, pageH := pdf.GetPageSize()
	_, bottom := pdf.GetAutoPageBreak()
	maxRows := int((pageH-bottom-top)/rowHeight) - 1
	for i, col := range models.FilterColumns {
		x := 10 + float64(i)*(colWidth+4)
		drawTable(pdf, tr, x, top, colWidth, col, fitRows(s.Breakdown[col], maxRows))
	}

	for i, c := range in.Charts {
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, tr(c.Title), "", 1, "L", false, 0, "")

		name := fmt.Sprintf("chart-%d", i)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(c.PNG))
		pdf.ImageOptions(name, 10, pdf.GetY()+2, 0, 170, false, opts, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return pdf.Output(w)
}

const rowHeight = 6.0

// fitRows keeps the first n-1 items and folds the rest into one line.
func fitRows(items []models.AggregateItem, n int) []models.AggregateItem {
	if n < 1 || len(items) <= n {
		return items
	}
	rest := models.AggregateItem{Label: fmt.Sprintf("... %d more", len(items)-n+1), Other: true}
	for _, it := range items[n-1:] {
		rest.Intake += it.Intake
		rest.Voyages += it.Voyages
	}
	return append(slices.Clone(items[:n-1]), rest)
}

func drawTable(pdf *gofpdf.Fpdf, tr func(string) string, x, y, width float64, title string, items []models.AggregateItem) {
	labelW, intakeW := width*0.55, width*0.3
	countW := width - labelW - intakeW

	pdf.SetXY(x, y)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(220, 226, 240)
	pdf.CellFormat(labelW, rowHeight, tr(title), "1", 0, "L", true, 0, "")
	pdf.CellFormat(intakeW, rowHeight, "intake, t", "1", 0, "R", true, 0, "")
	pdf.CellFormat(countW, rowHeight, "voyages", "1", 0, "R", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for i, it := range items {
		pdf.SetXY(x, y+rowHeight*float64(i+1))
		pdf.CellFormat(labelW, rowHeight, tr(truncate(it.Label, 40)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(intakeW, rowHeight, formatTonnes(it.Intake), "1", 0, "R", false, 0, "")
		pdf.CellFormat(countW, rowHeight, fmt.Sprintf("%d", it.Voyages), "1", 0, "R", false, 0, "")
	}
}

func describe(sel engine.Selection) string {
	if sel.IsEmpty() {
		return "none"
	}
	cols := make([]string, 0, len(sel))
	for col, vals := range sel {
		if len(vals) > 0 {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)

	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = col + " in [" + strings.Join(sel[col], ", ") + "]"
	}
	return strings.Join(parts, "; ")
}

// formatTonnes prints a quantity with thousands separators and no decimals.
func formatTonnes(v float64) string {
	return message.NewPrinter(language.English).Sprintf("%.0f", v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "..."
}
