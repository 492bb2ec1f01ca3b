package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	chart "github.com/wcharczuk/go-chart/v2"
)

// ErrEmptyPie indicates a pie whose slices sum to zero. A dataset without
// categories draws an empty titled chart instead.
var ErrEmptyPie = errors.New("pie values sum to zero")

// drawPie renders the first series as slices, one per category. Slice colors
// come from the dataset category colors, else the series palette.
func drawPie(ds *models.Dataset, cfg models.DisplayConfig, theme Theme, width, height int) (*image.RGBA, error) {
	if ds.Len() == 0 {
		p := newPlot(cfg, theme)
		p.HideAxes()
		return rasterize(p, theme, width, height), nil
	}

	s := ds.Series()[0]
	categories := ds.Categories()
	catColors := ds.CategoryColors()

	var total float64
	values := make([]chart.Value, 0, len(s.Values))
	for j, v := range s.Values {
		if v < 0 {
			return nil, fmt.Errorf("pie slice %q: negative value %g", categories[j], v)
		}
		total += v

		spec := DefaultPalette[j%len(DefaultPalette)]
		if catColors != nil {
			spec = catColors[j]
		}
		fill, err := ParseColor(spec)
		if err != nil {
			return nil, fmt.Errorf("pie slice %q: %w", categories[j], err)
		}

		label := categories[j]
		if cfg.ShowValues {
			label = fmt.Sprintf("%s: %s", label, formatValue(v))
		}
		values = append(values, chart.Value{
			Value: v,
			Label: label,
			Style: chart.Style{
				FillColor:   toDrawing(fill),
				StrokeColor: toDrawing(theme.Background),
				StrokeWidth: 1,
				FontColor:   toDrawing(theme.Foreground),
			},
		})
	}
	if total == 0 {
		return nil, ErrEmptyPie
	}

	title := cfg.Title
	if cfg.Subtitle != "" {
		title = fmt.Sprintf("%s (%s)", title, cfg.Subtitle)
	}
	pie := chart.PieChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: toDrawing(theme.Foreground)},
		Width:      width,
		Height:     height,
		Background: chart.Style{FillColor: toDrawing(theme.Background)},
		Canvas:     chart.Style{FillColor: toDrawing(theme.Background)},
		Values:     values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render pie: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode pie: %w", err)
	}
	return toRGBA(img, width, height), nil
}
