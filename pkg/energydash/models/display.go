package models

import "fmt"

// ChartKind identifies the rendering primitive of a panel.
type ChartKind string

const (
	// KindBar draws vertical (or horizontal) bars, grouped or stacked.
	KindBar ChartKind = "bar"
	// KindLine draws one polyline per series, optionally filled.
	KindLine ChartKind = "line"
	// KindPie draws the first series as pie slices.
	KindPie ChartKind = "pie"
	// KindChoropleth colors map regions by the first series.
	KindChoropleth ChartKind = "choropleth"
)

// Valid reports whether k is a supported chart kind.
func (k ChartKind) Valid() bool {
	switch k {
	case KindBar, KindLine, KindPie, KindChoropleth:
		return true
	}
	return false
}

// LegendPosition places the chart legend.
type LegendPosition string

const (
	LegendTop    LegendPosition = "top"
	LegendBottom LegendPosition = "bottom"
	LegendNone   LegendPosition = "none"
)

// Tile positions one region on the choropleth tile grid.
type Tile struct {
	// Region is the region name as it appears in the dataset categories.
	Region string `json:"region" yaml:"region"`
	// Abbr is the short label drawn inside the tile.
	Abbr string `json:"abbr,omitempty" yaml:"abbr,omitempty"`
	// Col is the zero-based grid column, growing eastwards.
	Col int `json:"col" yaml:"col"`
	// Row is the zero-based grid row, growing southwards.
	Row int `json:"row" yaml:"row"`
}

// DisplayConfig holds the chart options of a panel.
type DisplayConfig struct {
	// Kind is the rendering primitive.
	Kind ChartKind `json:"kind" yaml:"kind"`
	// Stacked stacks bar series per category.
	Stacked bool `json:"stacked,omitempty" yaml:"stacked,omitempty"`
	// Horizontal swaps the category axis to the vertical side.
	Horizontal bool `json:"horizontal,omitempty" yaml:"horizontal,omitempty"`
	// Fill shades the area under line series.
	Fill bool `json:"fill,omitempty" yaml:"fill,omitempty"`
	// Title is drawn above the plot area.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	// Subtitle is drawn under the title.
	Subtitle string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	// XTitle is the category axis title.
	XTitle string `json:"x_title,omitempty" yaml:"x_title,omitempty"`
	// YTitle is the value axis title.
	YTitle string `json:"y_title,omitempty" yaml:"y_title,omitempty"`
	// Min is the lower bound of the value axis, if fixed.
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	// Max is the upper bound of the value axis, if fixed.
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	// BeginAtZero forces the value axis to include zero.
	BeginAtZero bool `json:"begin_at_zero,omitempty" yaml:"begin_at_zero,omitempty"`
	// TickSuffix is appended to value axis tick labels (e.g. "%").
	TickSuffix string `json:"tick_suffix,omitempty" yaml:"tick_suffix,omitempty"`
	// Legend places the legend; empty means top.
	Legend LegendPosition `json:"legend,omitempty" yaml:"legend,omitempty"`
	// ShowValues labels each point or slice with its value.
	ShowValues bool `json:"show_values,omitempty" yaml:"show_values,omitempty"`
	// Tiles lays out the choropleth regions.
	Tiles []Tile `json:"tiles,omitempty" yaml:"tiles,omitempty"`
}

// Validate checks the configuration against what the renderers support.
func (c DisplayConfig) Validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("unsupported chart kind %q", c.Kind)
	}
	if c.Min != nil && c.Max != nil && *c.Min >= *c.Max {
		return fmt.Errorf("axis bounds: min %g must be below max %g", *c.Min, *c.Max)
	}
	if c.Kind == KindChoropleth && len(c.Tiles) == 0 {
		return fmt.Errorf("choropleth needs a tile layout")
	}
	switch c.Legend {
	case "", LegendTop, LegendBottom, LegendNone:
	default:
		return fmt.Errorf("unsupported legend position %q", c.Legend)
	}
	return nil
}

// LegendOrDefault returns the effective legend position.
func (c DisplayConfig) LegendOrDefault() LegendPosition {
	if c.Legend == "" {
		return LegendTop
	}
	return c.Legend
}

// Float returns a pointer to v, for literal axis bounds.
func Float(v float64) *float64 { return &v }
