package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// tileGap is the share of a grid cell left empty between tiles.
const tileGap = 0.06

// swatch is a legend thumbnail filled with one color.
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, c.ClipPolygonXY(pts))
}

// RegionScale builds the quantize scale over the values of the first series.
func RegionScale(ds *models.Dataset) QuantizeScale {
	colors := make([]color.RGBA, len(Blues))
	for i, spec := range Blues {
		colors[i] = MustColor(spec)
	}
	values := ds.Series()[0].Values
	if len(values) == 0 {
		return NewQuantizeScale(0, 0, colors)
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return NewQuantizeScale(lo, hi, colors)
}

// RegionColors returns the fill of every tile keyed by region name.
// Regions without a value, or with a zero value, get MissingColor.
func RegionColors(ds *models.Dataset, tiles []models.Tile) map[string]color.RGBA {
	scale := RegionScale(ds)
	missing := MustColor(MissingColor)

	values := make(map[string]float64, ds.Len())
	first := ds.Series()[0].Values
	for i, name := range ds.Categories() {
		values[NormalizeRegion(name)] = first[i]
	}

	out := make(map[string]color.RGBA, len(tiles))
	for _, t := range tiles {
		v, ok := values[NormalizeRegion(t.Region)]
		if !ok || v == 0 {
			out[t.Region] = missing
			continue
		}
		out[t.Region] = scale.Color(v)
	}
	return out
}

// drawChoropleth draws one square per tile, colored by its region value,
// with a bucket legend.
func drawChoropleth(ds *models.Dataset, cfg models.DisplayConfig, theme Theme, width, height int) (*image.RGBA, error) {
	p := newPlot(cfg, theme)
	p.HideAxes()

	fills := RegionColors(ds, cfg.Tiles)
	scale := RegionScale(ds)

	maxCol, maxRow := 0, 0
	var centers plotter.XYs
	var names []string
	var textColors []color.Color
	for _, t := range cfg.Tiles {
		x0, y0 := float64(t.Col), -float64(t.Row)
		x1, y1 := x0+1-tileGap, y0-1+tileGap
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
		})
		if err != nil {
			return nil, fmt.Errorf("tile %q: %w", t.Region, err)
		}
		fill := fills[t.Region]
		poly.Color = fill
		poly.LineStyle.Color = theme.Stroke
		poly.LineStyle.Width = vg.Points(0.5)
		p.Add(poly)

		label := t.Abbr
		if label == "" {
			label = t.Region
		}
		centers = append(centers, plotter.XY{X: (x0 + x1) / 2, Y: (y0 + y1) / 2})
		names = append(names, label)
		textColors = append(textColors, labelColor(fill))

		maxCol = max(maxCol, t.Col)
		maxRow = max(maxRow, t.Row)
	}

	if len(centers) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: centers, Labels: names})
		if err != nil {
			return nil, err
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Color = textColors[i]
			labels.TextStyle[i].XAlign = draw.XCenter
			labels.TextStyle[i].YAlign = draw.YCenter
			labels.TextStyle[i].Font.Size = vg.Points(7)
		}
		p.Add(labels)
	}

	if showLegend(cfg) {
		for i := 0; i < scale.Len(); i++ {
			c, lo, hi := scale.Bucket(i)
			p.Legend.Add(fmt.Sprintf("%.0f - %.0f", lo, hi), swatch{color: c})
		}
		p.Legend.Add("No data", swatch{color: MustColor(MissingColor)})
	}

	// Room on the right for the legend.
	p.X.Min, p.X.Max = -0.5, float64(maxCol)+4
	p.Y.Min, p.Y.Max = -float64(maxRow)-1.5, 0.5
	return rasterize(p, theme, width, height), nil
}

// labelColor picks a readable text color for a tile fill.
func labelColor(fill color.RGBA) color.Color {
	luma := 0.299*float64(fill.R) + 0.587*float64(fill.G) + 0.114*float64(fill.B)
	if luma < 140 {
		return color.White
	}
	return color.Black
}
