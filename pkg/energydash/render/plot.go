package render

import (
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"math"
	"strconv"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DPI maps surface pixels to plot lengths.
const DPI = 96

func pxToLength(px int) vg.Length {
	return vg.Length(px) * vg.Inch / DPI
}

// newPlot returns a plot styled with the theme and the chart titles.
func newPlot(cfg models.DisplayConfig, theme Theme) *plot.Plot {
	p := plot.New()
	p.BackgroundColor = theme.Background

	p.Title.Text = cfg.Title
	if cfg.Subtitle != "" {
		p.Title.Text += "\n" + cfg.Subtitle
	}
	p.Title.TextStyle.Color = theme.Foreground
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Title.Padding = vg.Points(8)

	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.Color = theme.Foreground
		ax.Label.TextStyle.Color = theme.Foreground
		ax.Tick.Color = theme.Foreground
		ax.Tick.Label.Color = theme.Foreground
	}
	p.X.Label.Text = cfg.XTitle
	p.Y.Label.Text = cfg.YTitle
	if cfg.Horizontal {
		p.X.Label.Text, p.Y.Label.Text = cfg.YTitle, cfg.XTitle
	}

	p.Legend.TextStyle.Color = theme.Foreground
	p.Legend.Top = cfg.LegendOrDefault() != models.LegendBottom
	return p
}

// rasterize draws p onto an exact width x height RGBA image.
func rasterize(p *plot.Plot, theme Theme, width, height int) *image.RGBA {
	c := vgimg.NewWith(
		vgimg.UseWH(pxToLength(width), pxToLength(height)),
		vgimg.UseDPI(DPI),
		vgimg.UseBackgroundColor(theme.Background),
	)
	p.Draw(draw.New(c))
	return toRGBA(c.Image(), width, height)
}

// toRGBA copies src into a new image of exactly the given size.
func toRGBA(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	imagedraw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, imagedraw.Src)
	return dst
}

// suffixTicker appends a unit suffix such as "%" to the default tick labels.
type suffixTicker struct {
	suffix string
}

func (t suffixTicker) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label += t.suffix
		}
	}
	return ticks
}

// applyValueAxis sets bounds and tick labels of the value axis. It must run
// after every plotter is added, since adding recomputes the data range.
func applyValueAxis(p *plot.Plot, cfg models.DisplayConfig) {
	ax := &p.Y
	if cfg.Horizontal {
		ax = &p.X
	}
	if cfg.BeginAtZero {
		ax.Min = math.Min(ax.Min, 0)
	}
	if cfg.Min != nil {
		ax.Min = *cfg.Min
	}
	if cfg.Max != nil {
		ax.Max = *cfg.Max
	}
	if cfg.TickSuffix != "" {
		ax.Tick.Marker = suffixTicker{suffix: cfg.TickSuffix}
	}
}

func addGrid(p *plot.Plot, cfg models.DisplayConfig, theme Theme) {
	g := plotter.NewGrid()
	g.Vertical.Color = theme.Grid
	g.Horizontal.Color = theme.Grid
	if cfg.Horizontal {
		g.Horizontal.Width = 0
	} else {
		g.Vertical.Width = 0
	}
	p.Add(g)
}

func showLegend(cfg models.DisplayConfig) bool {
	return cfg.LegendOrDefault() != models.LegendNone
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// bandWidth returns the plot length available to one category.
func bandWidth(px, categories int) vg.Length {
	if categories < 1 {
		categories = 1
	}
	return pxToLength(px) * 0.75 / vg.Length(categories)
}

func drawBars(ds *models.Dataset, cfg models.DisplayConfig, theme Theme, width, height int) (*image.RGBA, error) {
	p := newPlot(cfg, theme)
	addGrid(p, cfg, theme)

	series := ds.Series()
	categories := ds.Categories()
	colors, err := seriesColors(ds.SeriesNames(), declaredColors(series))
	if err != nil {
		return nil, err
	}

	span := width
	if cfg.Horizontal {
		span = height
	}
	band := bandWidth(span, len(categories))

	// gonum rejects bar charts without values; an empty dataset keeps the
	// titled axes only.
	if ds.Len() == 0 {
		applyValueAxis(p, cfg)
		return rasterize(p, theme, width, height), nil
	}

	if catColors := ds.CategoryColors(); catColors != nil && len(series) == 1 {
		if err := addCategoryBars(p, series[0], catColors, band*0.8, cfg); err != nil {
			return nil, err
		}
	} else {
		barWidth := band * 0.8
		if !cfg.Stacked {
			barWidth /= vg.Length(len(series))
		}
		var below *plotter.BarChart
		for i, s := range series {
			bars, err := plotter.NewBarChart(plotter.Values(s.Values), barWidth)
			if err != nil {
				return nil, fmt.Errorf("series %q: %w", s.Name, err)
			}
			bars.Color = colors[i]
			bars.LineStyle.Width = 0
			bars.Horizontal = cfg.Horizontal
			if cfg.Stacked {
				if below != nil {
					bars.StackOn(below)
				}
			} else {
				bars.Offset = vg.Length(float64(i)-float64(len(series)-1)/2) * barWidth
			}
			p.Add(bars)
			if showLegend(cfg) {
				p.Legend.Add(s.Name, bars)
			}
			below = bars
		}
	}

	if cfg.Horizontal {
		p.NominalY(categories...)
	} else {
		p.NominalX(categories...)
	}
	applyValueAxis(p, cfg)
	return rasterize(p, theme, width, height), nil
}

// addCategoryBars draws a single series with one color per bar.
func addCategoryBars(p *plot.Plot, s models.Series, catColors []string, barWidth vg.Length, cfg models.DisplayConfig) error {
	var first *plotter.BarChart
	for j, v := range s.Values {
		c, err := ParseColor(catColors[j])
		if err != nil {
			return fmt.Errorf("category color %d: %w", j, err)
		}
		bar, err := plotter.NewBarChart(plotter.Values{v}, barWidth)
		if err != nil {
			return err
		}
		bar.XMin = float64(j)
		bar.Color = c
		bar.LineStyle.Width = 0
		bar.Horizontal = cfg.Horizontal
		p.Add(bar)
		if first == nil {
			first = bar
		}
	}
	if first != nil && showLegend(cfg) {
		p.Legend.Add(s.Name, first)
	}
	return nil
}

func drawLines(ds *models.Dataset, cfg models.DisplayConfig, theme Theme, width, height int) (*image.RGBA, error) {
	p := newPlot(cfg, theme)
	addGrid(p, cfg, theme)

	series := ds.Series()
	colors, err := seriesColors(ds.SeriesNames(), declaredColors(series))
	if err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		applyValueAxis(p, cfg)
		return rasterize(p, theme, width, height), nil
	}

	for i, s := range series {
		xys := make(plotter.XYs, len(s.Values))
		for j, v := range s.Values {
			xys[j].X = float64(j)
			xys[j].Y = v
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Name, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(2)
		if cfg.Fill {
			line.FillColor = withAlpha(colors[i], 0.25)
		}
		points.Color = colors[i]
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(2.5)
		p.Add(line, points)
		if showLegend(cfg) {
			p.Legend.Add(s.Name, line, points)
		}

		if cfg.ShowValues && len(xys) > 0 {
			labels, err := valueLabels(xys, theme.Foreground)
			if err != nil {
				return nil, err
			}
			p.Add(labels)
		}
	}

	p.NominalX(ds.Categories()...)
	applyValueAxis(p, cfg)
	return rasterize(p, theme, width, height), nil
}

func valueLabels(xys plotter.XYs, c color.Color) (*plotter.Labels, error) {
	texts := make([]string, len(xys))
	for i, xy := range xys {
		texts[i] = formatValue(xy.Y)
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = c
		labels.TextStyle[i].XAlign = draw.XCenter
	}
	labels.Offset = vg.Point{Y: vg.Points(6)}
	return labels, nil
}

func declaredColors(series []models.Series) []string {
	out := make([]string, len(series))
	for i, s := range series {
		out[i] = s.Color
	}
	return out
}
