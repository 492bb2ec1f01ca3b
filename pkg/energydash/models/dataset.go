// Package models defines the data structures shared by the dashboard packages.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// DefaultCategoryLabel is the header of the category column when a dataset
// does not name it.
const DefaultCategoryLabel = "Category"

// ErrNonFiniteValue indicates a NaN or infinite series value.
var ErrNonFiniteValue = errors.New("non-finite series value")

// ErrNoSeries indicates a dataset declared without any series.
var ErrNoSeries = errors.New("dataset has no series")

// ErrUnnamedSeries indicates a series whose name is empty or only white
// space. The name is the spreadsheet header of the series column.
var ErrUnnamedSeries = errors.New("series name is blank")

// DatasetShapeError reports a series (or the category colors) whose length
// does not match the number of categories.
type DatasetShapeError struct {
	Series   string
	Expected int
	Actual   int
}

func (e *DatasetShapeError) Error() string {
	return fmt.Sprintf("dataset shape: series %q has %d values, want %d", e.Series, e.Actual, e.Expected)
}

// Series is one named numeric column of a dataset.
type Series struct {
	// Name is the series display name and its spreadsheet header.
	Name string `json:"name" yaml:"name"`
	// Values holds one value per category, in category order.
	Values []float64 `json:"values" yaml:"values"`
	// Color is an optional CSS color used by the renderer.
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

func (s Series) clone() Series {
	return Series{
		Name:   s.Name,
		Values: append([]float64(nil), s.Values...),
		Color:  s.Color,
	}
}

// Dataset is an immutable table of categories against one or more numeric
// series. Build it with NewDataset; the zero value is empty and invalid.
type Dataset struct {
	label          string
	categories     []string
	series         []Series
	categoryColors []string
	unit           string
}

// DatasetOption customizes a dataset at construction time.
type DatasetOption func(*Dataset)

// WithCategoryColors assigns one display color per category (pie slices,
// per-bar colors).
func WithCategoryColors(colors ...string) DatasetOption {
	return func(d *Dataset) {
		d.categoryColors = append([]string(nil), colors...)
	}
}

// WithUnit records the measurement unit shown next to values.
func WithUnit(unit string) DatasetOption {
	return func(d *Dataset) {
		d.unit = unit
	}
}

// NewDataset validates and copies the given table. It fails with a
// *DatasetShapeError when any series length differs from the category count.
func NewDataset(categoryLabel string, categories []string, series []Series, opts ...DatasetOption) (*Dataset, error) {
	if categoryLabel == "" {
		categoryLabel = DefaultCategoryLabel
	}
	d := &Dataset{
		label:      categoryLabel,
		categories: append([]string(nil), categories...),
		series:     make([]Series, len(series)),
	}
	for i, s := range series {
		d.series[i] = s.clone()
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// MustDataset is like NewDataset but panics on error. Intended for literal
// tables in tests and examples.
func MustDataset(categoryLabel string, categories []string, series ...Series) *Dataset {
	d, err := NewDataset(categoryLabel, categories, series)
	if err != nil {
		panic(err)
	}
	return d
}

// Validate checks series names, the length invariant and value finiteness.
func (d *Dataset) Validate() error {
	if d == nil || len(d.series) == 0 {
		return ErrNoSeries
	}
	n := len(d.categories)
	for i, s := range d.series {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("series %d: %w", i+1, ErrUnnamedSeries)
		}
		if len(s.Values) != n {
			return &DatasetShapeError{Series: s.Name, Expected: n, Actual: len(s.Values)}
		}
		for i, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("series %q at %q: %w", s.Name, d.categories[i], ErrNonFiniteValue)
			}
		}
	}
	if d.categoryColors != nil && len(d.categoryColors) != n {
		return &DatasetShapeError{Series: "category colors", Expected: n, Actual: len(d.categoryColors)}
	}
	return nil
}

// CategoryLabel returns the header of the category column.
func (d *Dataset) CategoryLabel() string { return d.label }

// Unit returns the measurement unit, possibly empty.
func (d *Dataset) Unit() string { return d.unit }

// Len returns the number of categories.
func (d *Dataset) Len() int { return len(d.categories) }

// Categories returns a copy of the category labels in display order.
func (d *Dataset) Categories() []string {
	return append([]string(nil), d.categories...)
}

// CategoryColors returns a copy of the per-category colors, or nil.
func (d *Dataset) CategoryColors() []string {
	if d.categoryColors == nil {
		return nil
	}
	return append([]string(nil), d.categoryColors...)
}

// Series returns a deep copy of every series.
func (d *Dataset) Series() []Series {
	out := make([]Series, len(d.series))
	for i, s := range d.series {
		out[i] = s.clone()
	}
	return out
}

// SeriesNames returns the series names in declaration order.
func (d *Dataset) SeriesNames() []string {
	names := make([]string, len(d.series))
	for i, s := range d.series {
		names[i] = s.Name
	}
	return names
}

// Column returns a copy of the values of the named series.
func (d *Dataset) Column(name string) ([]float64, bool) {
	for _, s := range d.series {
		if s.Name == name {
			return append([]float64(nil), s.Values...), true
		}
	}
	return nil, false
}

// Row returns the values of every series for category index i.
func (d *Dataset) Row(i int) []float64 {
	row := make([]float64, len(d.series))
	for j, s := range d.series {
		row[j] = s.Values[i]
	}
	return row
}

// Bounds returns the smallest and largest value across all series.
func (d *Dataset) Bounds() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range d.series {
		for _, v := range s.Values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}

// StackedBounds returns the range covered when series are stacked per category.
func (d *Dataset) StackedBounds() (lo, hi float64) {
	for i := range d.categories {
		var pos, neg float64
		for _, s := range d.series {
			if v := s.Values[i]; v >= 0 {
				pos += v
			} else {
				neg += v
			}
		}
		lo = math.Min(lo, neg)
		hi = math.Max(hi, pos)
	}
	return lo, hi
}

type datasetJSON struct {
	CategoryLabel  string   `json:"category_label" yaml:"category_label"`
	Categories     []string `json:"categories" yaml:"categories"`
	Series         []Series `json:"series" yaml:"series"`
	CategoryColors []string `json:"category_colors,omitempty" yaml:"category_colors,omitempty"`
	Unit           string   `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// MarshalJSON encodes the dataset as a plain table.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	return json.Marshal(datasetJSON{
		CategoryLabel:  d.label,
		Categories:     d.categories,
		Series:         d.series,
		CategoryColors: d.categoryColors,
		Unit:           d.unit,
	})
}

// UnmarshalJSON decodes and validates a table produced by MarshalJSON.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	var raw datasetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var opts []DatasetOption
	if raw.CategoryColors != nil {
		opts = append(opts, WithCategoryColors(raw.CategoryColors...))
	}
	if raw.Unit != "" {
		opts = append(opts, WithUnit(raw.Unit))
	}
	nd, err := NewDataset(raw.CategoryLabel, raw.Categories, raw.Series, opts...)
	if err != nil {
		return err
	}
	*d = *nd
	return nil
}
