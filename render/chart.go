// Package render draws chart configs as SVG or PNG images and renders the
// dashboard page.
package render

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/launchdash/launchdash/engine"
)

// Format is an image format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// Content types written by Render.
const (
	ContentTypeSVG = "image/svg+xml"
	ContentTypePNG = "image/png"
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown image format")

// ParseFormat accepts "svg" and "png" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatSVG, FormatPNG:
		return f, nil
	default:
		return "", errors.Wrap(ErrUnknownFormat, s)
	}
}

// Renderer draws charts at a fixed size.
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer returns a Renderer, falling back to 640x480 for non-positive sizes.
func NewRenderer(width, height int) Renderer {
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 480
	}
	return Renderer{Width: width, Height: height}
}

// Render writes cfg to w and returns the content type it wrote. A chart with
// nothing to draw is written as a "No data" SVG whatever the format.
func (r Renderer) Render(w io.Writer, cfg *engine.ChartConfig, format Format) (string, error) {
	provider, contentType := chart.SVG, ContentTypeSVG
	if format == FormatPNG {
		provider, contentType = chart.PNG, ContentTypePNG
	}

	if cfg.IsEmpty() {
		return ContentTypeSVG, r.placeholder(w, cfg)
	}

	var err error
	switch cfg.ChartType {
	case "pie":
		err = r.pie(w, cfg, provider)
	case "scatter":
		err = r.scatter(w, cfg, provider)
	case "bar":
		err = r.bar(w, cfg, provider)
	default:
		return "", errors.Errorf("cannot render %q charts", cfg.ChartType)
	}
	if errors.Is(err, errNothingToDraw) {
		return ContentTypeSVG, r.placeholder(w, cfg)
	}
	if err != nil {
		return "", errors.Wrapf(err, "rendering %s chart", cfg.ChartType)
	}
	return contentType, nil
}

var errNothingToDraw = errors.New("nothing to draw")

func (r Renderer) pie(w io.Writer, cfg *engine.ChartConfig, provider chart.RendererProvider) error {
	var values []chart.Value
	for i, p := range cfg.Series[0].Data {
		if p.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%s)", p.Label, engine.FormatNumber(p.Value)),
			Value: p.Value,
			Style: chart.Style{FillColor: color(cfg.Colors, i)},
		})
	}
	if len(values) == 0 {
		return errNothingToDraw
	}

	pie := chart.PieChart{
		Title:  cfg.Title,
		Width:  r.Width,
		Height: r.Height,
		Values: values,
	}
	return pie.Render(provider, w)
}

func (r Renderer) bar(w io.Writer, cfg *engine.ChartConfig, provider chart.RendererProvider) error {
	var (
		bars []chart.Value
		top  float64
	)
	fill := color(cfg.Colors, 0)
	for _, p := range cfg.Series[0].Data {
		bars = append(bars, chart.Value{
			Label: p.Label,
			Value: p.Value,
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		})
		top = math.Max(top, p.Value)
	}
	if top <= 0 {
		return errNothingToDraw
	}

	bc := chart.BarChart{
		Title:    cfg.Title,
		Width:    r.Width,
		Height:   r.Height,
		BarWidth: r.Width / (2*len(bars) + 1),
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Name:  cfg.YAxis,
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Bars: bars,
	}
	return bc.Render(provider, w)
}

// dotStyle draws points only, with no connecting line.
func dotStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    5,
		DotColor:    col,
	}
}

func (r Renderer) scatter(w io.Writer, cfg *engine.ChartConfig, provider chart.RendererProvider) error {
	minX, maxX := math.Inf(1), math.Inf(-1)
	var series []chart.Series
	for i, s := range cfg.Series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			xs[j], ys[j] = p.X, p.Y
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		}
		col := colorOf(s.Color, cfg.Colors, i)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   dotStyle(col),
		})
	}
	if len(series) == 0 {
		return errNothingToDraw
	}

	// go-chart rejects a zero-width range; a single payload value gets padding.
	pad := (maxX - minX) * 0.05
	if pad == 0 {
		pad = 500
	}

	ch := chart.Chart{
		Title:  cfg.Title,
		Width:  r.Width,
		Height: r.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 12},
		},
		XAxis: chart.XAxis{
			Name:  cfg.XAxis,
			Range: &chart.ContinuousRange{Min: math.Max(0, minX-pad), Max: maxX + pad},
		},
		YAxis: chart.YAxis{
			Name:  cfg.YAxis,
			Range: &chart.ContinuousRange{Min: -0.25, Max: 1.25},
			Ticks: []chart.Tick{{Value: -0.25, Label: ""}, {Value: 0, Label: "0"}, {Value: 1, Label: "1"}, {Value: 1.25, Label: ""}},
		},
		Series: series,
	}
	if cfg.ShowLegend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch.Render(provider, w)
}

func (r Renderer) placeholder(w io.Writer, cfg *engine.ChartConfig) error {
	title := ""
	if cfg != nil {
		title = cfg.Title
	}
	_, err := fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
		`<rect width="100%%" height="100%%" fill="#ffffff"/>`+
		`<text x="50%%" y="32" text-anchor="middle" font-family="sans-serif" font-size="16" fill="#333333">%s</text>`+
		`<text x="50%%" y="50%%" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#999999">No data</text>`+
		`</svg>`,
		r.Width, r.Height, r.Width, r.Height, html.EscapeString(title))
	return errors.Wrap(err, "writing placeholder")
}

func colorOf(hex string, palette []string, i int) drawing.Color {
	if hex != "" {
		return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
	}
	return color(palette, i)
}

func color(palette []string, i int) drawing.Color {
	if len(palette) == 0 {
		return chart.ColorBlue
	}
	return drawing.ColorFromHex(strings.TrimPrefix(palette[i%len(palette)], "#"))
}
