package render

import (
	"image/color"
	"sort"
	"strings"
	"unicode"
)

// Blues is the 9-step sequential palette of the choropleth.
var Blues = []string{
	"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6",
	"#4292c6", "#2171b5", "#08519c", "#08306b",
}

// MissingColor fills regions without a value (absent or zero).
const MissingColor = "#EEEEEE"

// QuantizeScale maps a continuous domain onto a discrete color range by
// splitting the domain into equal-width buckets.
type QuantizeScale struct {
	min, max   float64
	colors     []color.RGBA
	thresholds []float64
}

// NewQuantizeScale builds a scale over [min, max]. colors must not be empty.
func NewQuantizeScale(min, max float64, colors []color.RGBA) QuantizeScale {
	n := len(colors)
	th := make([]float64, n-1)
	for i := range th {
		th[i] = ((float64(i)+1)*max - (float64(i)-float64(n)+1)*min) / float64(n)
	}
	return QuantizeScale{min: min, max: max, colors: colors, thresholds: th}
}

// Domain returns the scale bounds.
func (s QuantizeScale) Domain() (min, max float64) { return s.min, s.max }

// Thresholds returns the n-1 bucket boundaries.
func (s QuantizeScale) Thresholds() []float64 {
	return append([]float64(nil), s.thresholds...)
}

// Index returns the bucket of v. A value on a threshold belongs to the upper
// bucket; a degenerate domain maps every value to the last bucket.
func (s QuantizeScale) Index(v float64) int {
	return sort.Search(len(s.thresholds), func(i int) bool { return s.thresholds[i] > v })
}

// Color returns the color of v.
func (s QuantizeScale) Color(v float64) color.RGBA {
	return s.colors[s.Index(v)]
}

// Len returns the number of buckets.
func (s QuantizeScale) Len() int { return len(s.colors) }

// Bucket returns the color and value range of bucket i.
func (s QuantizeScale) Bucket(i int) (c color.RGBA, lo, hi float64) {
	lo, hi = s.min, s.max
	if i > 0 {
		lo = s.thresholds[i-1]
	}
	if i < len(s.thresholds) {
		hi = s.thresholds[i]
	}
	return s.colors[i], lo, hi
}

// NormalizeRegion folds a region name so spelling variants such as
// "HimachalPradesh", "Himachal Pradesh" and "Jammu & Kashmir" /
// "Jammu and Kashmir" compare equal.
func NormalizeRegion(name string) string {
	name = strings.ReplaceAll(strings.ToLower(name), "&", "and")
	var sb strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
