package reporting

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
	"github.com/xkilldash9x/solarsec-cli/internal/dread"
	"github.com/xkilldash9x/solarsec-cli/internal/economic"
)

// ErrNoChartData is returned when a chart has nothing to plot.
var ErrNoChartData = errors.New("no data to chart")

const (
	chartWidth  = 640
	chartHeight = 400
	chartDPI    = 96
	heatMapRows = 10
	heatRowH    = 32
	maxLabelLen = 20
	heatLevels  = 16
)

var (
	gridColor = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	radarLine = color.RGBA{0x1f, 0x77, 0xb4, 0xff}
	radarFill = color.NRGBA{0x1f, 0x77, 0xb4, 0x40}
)

var seriesColors = []color.RGBA{
	{0x44, 0x01, 0x54, 0xff},
	{0x41, 0x44, 0x87, 0xff},
	{0x2a, 0x78, 0x8e, 0xff},
	{0x22, 0xa8, 0x84, 0xff},
	{0x7a, 0xd1, 0x51, 0xff},
	{0xbd, 0xdf, 0x26, 0xff},
	{0xfd, 0xe7, 0x25, 0xff},
}

// Chart is a titled PNG, base64 encoded.
type Chart struct {
	Title string
	PNG   string
}

func pixels(n int) vg.Length { return vg.Length(n) * vg.Inch / chartDPI }

func encode(p *plot.Plot, w, h int) (string, error) {
	wt, err := p.WriterTo(pixels(w), pixels(h), "png")
	if err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("failed to encode chart: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

type bar struct {
	label   string
	caption string
	value   float64
	color   color.Color
}

// barChart draws one single-valued BarChart per bar so each keeps its own
// colour. Horizontal charts list the first bar at the top.
func barChart(title string, bars []bar, horizontal bool) (string, error) {
	if len(bars) == 0 {
		return "", ErrNoChartData
	}
	p := plot.New()
	p.Title.Text = title

	labels := make([]string, len(bars))
	captions := plotter.XYLabels{XYs: make(plotter.XYs, len(bars)), Labels: make([]string, len(bars))}
	width := pixels((chartWidth - 120) / len(bars) * 6 / 10)
	if horizontal {
		width = pixels((chartHeight - 100) / len(bars) * 6 / 10)
	}

	for i, b := range bars {
		pos := float64(i)
		if horizontal {
			pos = float64(len(bars) - 1 - i)
		}
		bc, err := plotter.NewBarChart(plotter.Values{b.value}, width)
		if err != nil {
			return "", fmt.Errorf("failed to build bar %q: %w", b.label, err)
		}
		bc.Color = b.color
		bc.LineStyle.Width = 0
		bc.XMin = pos
		bc.Horizontal = horizontal
		p.Add(bc)

		labels[int(pos)] = truncate(b.label, maxLabelLen)
		captions.Labels[i] = b.caption
		if horizontal {
			captions.XYs[i] = plotter.XY{X: b.value, Y: pos}
		} else {
			captions.XYs[i] = plotter.XY{X: pos, Y: b.value}
		}
	}

	values, err := plotter.NewLabels(captions)
	if err != nil {
		return "", fmt.Errorf("failed to build chart labels: %w", err)
	}
	if horizontal {
		values.Offset = vg.Point{X: vg.Points(4)}
		p.NominalY(labels...)
		p.X.Min = 0
	} else {
		values.Offset = vg.Point{Y: vg.Points(4)}
		p.NominalX(labels...)
		p.Y.Min = 0
	}
	p.Add(values)
	return encode(p, chartWidth, chartHeight)
}

// SeverityChart plots the DREAD risk-level distribution.
func SeverityChart(dist map[schemas.RiskLevel]int) (string, error) {
	total := 0
	bars := make([]bar, 0, len(schemas.RiskLevels))
	for _, level := range schemas.RiskLevels {
		n := dist[level]
		total += n
		bars = append(bars, bar{
			label:   string(level),
			caption: strconv.Itoa(n),
			value:   float64(n),
			color:   RiskColor(level),
		})
	}
	if total == 0 {
		return "", ErrNoChartData
	}
	return barChart("Threat Distribution by DREAD Risk Level", bars, false)
}

// StrideChart plots threats per STRIDE category.
func StrideChart(breakdown map[schemas.StrideCategory]int) (string, error) {
	total := 0
	bars := make([]bar, 0, len(schemas.StrideCategories))
	for i, cat := range schemas.StrideCategories {
		n := breakdown[cat]
		total += n
		bars = append(bars, bar{
			label:   string(cat),
			caption: strconv.Itoa(n),
			value:   float64(n),
			color:   seriesColors[i%len(seriesColors)],
		})
	}
	if total == 0 {
		return "", ErrNoChartData
	}
	return barChart("STRIDE Threat Category Distribution", bars, true)
}

var heatColumns = []string{"Damage", "Reproducibility", "Exploitability", "Affected Users", "Discoverability"}

// dreadGrid exposes sub-scores as a plotter.GridXYZ. Row 0 is the bottom of
// the plot, so the first score is the last row.
type dreadGrid []schemas.DreadScore

func (g dreadGrid) Dims() (c, r int) { return len(heatColumns), len(g) }

func (g dreadGrid) Z(c, r int) float64 {
	s := g[len(g)-1-r]
	return float64([]int{s.Damage, s.Reproducibility, s.Exploitability, s.AffectedUsers, s.Discoverability}[c])
}

func (g dreadGrid) X(c int) float64 { return float64(c) }

func (g dreadGrid) Y(r int) float64 { return float64(r) }

// HeatMap plots the sub-scores of the first ten threats.
func HeatMap(scores []schemas.DreadScore) (string, error) {
	if len(scores) == 0 {
		return "", ErrNoChartData
	}
	grid := dreadGrid(scores[:min(heatMapRows, len(scores))])
	cols, rows := grid.Dims()

	p := plot.New()
	p.Title.Text = "DREAD Risk Assessment Heat Map"

	hm := plotter.NewHeatMap(grid, palette.Heat(heatLevels, 1))
	hm.Min, hm.Max = schemas.MinDread, schemas.MaxDread
	p.Add(hm)

	cells := plotter.XYLabels{}
	for r := range rows {
		for c := range cols {
			cells.XYs = append(cells.XYs, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			cells.Labels = append(cells.Labels, strconv.Itoa(int(grid.Z(c, r))))
		}
	}
	values, err := plotter.NewLabels(cells)
	if err != nil {
		return "", fmt.Errorf("failed to build heat map labels: %w", err)
	}
	p.Add(values)

	ids := make([]string, rows)
	for i, s := range grid {
		ids[rows-1-i] = truncate(s.ThreatID, maxLabelLen+3)
	}
	p.NominalX(heatColumns...)
	p.NominalY(ids...)
	return encode(p, chartWidth, 120+rows*heatRowH)
}

// EconomicChart plots the total impact of each scenario in AUD thousands.
func EconomicChart(impacts []schemas.EconomicImpact) (string, error) {
	bars := make([]bar, 0, len(impacts))
	for i, impact := range impacts {
		total := impact.Total()
		bars = append(bars, bar{
			label:   economic.ScenarioTitle(impact.Scenario),
			caption: fmt.Sprintf("$%.0fK", total/1000),
			value:   total,
			color:   seriesColors[len(seriesColors)-1-i%len(seriesColors)],
		})
	}
	return barChart("Economic Impact by Cyberattack Scenario", bars, false)
}

// RadarPoint is one labelled 0-100 axis of the compliance radar.
type RadarPoint struct {
	Label string
	Score float64
}

// ring returns the closed outline through every axis at radius r, where 1
// is the 100% ring.
func ring(axes int, r func(i int) float64) plotter.XYs {
	xys := make(plotter.XYs, 0, axes+1)
	for i := range axes + 1 {
		theta := math.Pi/2 - 2*math.Pi*float64(i%axes)/float64(axes)
		xys = append(xys, plotter.XY{X: r(i%axes) * math.Cos(theta), Y: r(i%axes) * math.Sin(theta)})
	}
	return xys
}

// ComplianceRadar plots requirement scores as a polygon.
func ComplianceRadar(points []RadarPoint) (string, error) {
	if len(points) == 0 {
		return "", ErrNoChartData
	}
	p := plot.New()
	p.Title.Text = "Regulatory Compliance Assessment"
	p.HideAxes()

	axes := max(len(points), 3)
	for pct := 20; pct <= 100; pct += 20 {
		grid, err := plotter.NewLine(ring(axes, func(int) float64 { return float64(pct) / 100 }))
		if err != nil {
			return "", fmt.Errorf("failed to build radar ring: %w", err)
		}
		grid.LineStyle.Color = gridColor
		p.Add(grid)
	}

	scores := ring(axes, func(i int) float64 {
		if i >= len(points) {
			return 0
		}
		return max(0, min(100, points[i].Score)) / 100
	})
	area, err := plotter.NewPolygon(scores[:axes])
	if err != nil {
		return "", fmt.Errorf("failed to build radar polygon: %w", err)
	}
	area.Color = radarFill
	area.LineStyle.Color = radarLine
	area.LineStyle.Width = vg.Points(1.5)
	p.Add(area)

	marks, err := plotter.NewScatter(scores[:axes])
	if err != nil {
		return "", fmt.Errorf("failed to build radar markers: %w", err)
	}
	marks.GlyphStyle.Color = radarLine
	marks.GlyphStyle.Shape = draw.CircleGlyph{}
	marks.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(marks)

	outer := ring(axes, func(int) float64 { return 1.15 })
	axisLabels := plotter.XYLabels{}
	for i, pt := range points {
		axisLabels.XYs = append(axisLabels.XYs, outer[i])
		axisLabels.Labels = append(axisLabels.Labels, pt.Label)
	}
	names, err := plotter.NewLabels(axisLabels)
	if err != nil {
		return "", fmt.Errorf("failed to build radar labels: %w", err)
	}
	p.Add(names)

	p.X.Min, p.X.Max = -1.4, 1.4
	p.Y.Min, p.Y.Max = -1.3, 1.3
	return encode(p, chartWidth, chartHeight+40)
}

// Charts renders every chart the bundle has data for, in display order.
func Charts(b *Bundle, logger *zap.Logger) []Chart {
	var radar []RadarPoint
	for _, a := range b.Compliance.Assessments() {
		radar = append(radar, RadarPoint{Label: a.RequirementID, Score: a.ComplianceScore})
	}

	builders := []struct {
		title string
		draw  func() (string, error)
	}{
		{"Vulnerability Severity", func() (string, error) { return SeverityChart(dread.RiskDistribution(b.Scores())) }},
		{"STRIDE Threat Matrix", func() (string, error) { return StrideChart(b.ThreatModel.StrideBreakdown) }},
		{"DREAD Risk Heat Map", func() (string, error) { return HeatMap(b.Scores()) }},
		{"Economic Impact", func() (string, error) { return EconomicChart(b.Economic.Impacts) }},
		{"Compliance Radar", func() (string, error) { return ComplianceRadar(radar) }},
	}

	charts := make([]Chart, 0, len(builders))
	for _, cb := range builders {
		img, err := cb.draw()
		switch {
		case errors.Is(err, ErrNoChartData):
			logger.Debug("Chart skipped; no data.", zap.String("chart", cb.title))
		case err != nil:
			logger.Error("Failed to render chart.", zap.String("chart", cb.title), zap.Error(err))
		default:
			charts = append(charts, Chart{Title: cb.title, PNG: img})
		}
	}
	return charts
}
