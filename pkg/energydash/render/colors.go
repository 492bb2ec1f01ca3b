package render

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/colornames"
)

// DefaultPalette colors series that do not declare a color.
var DefaultPalette = []string{
	"#36A2EB", "#FF6384", "#FF9F40", "#FFCD56", "#4BC0C0", "#9966FF", "#C9CBCF",
}

// ParseColor parses a CSS color: a name ("steelblue"), hex ("#4a90e2",
// "#fff"), or functional rgb()/rgba() notation.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.RGBA{}, fmt.Errorf("empty color")
	}
	lower := strings.ToLower(s)

	switch {
	case strings.HasPrefix(lower, "#"):
		hex := lower[1:]
		if (len(hex) != 3 && len(hex) != 6) || !isHex(hex) {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
		}
		c := drawing.ColorFromHex(hex)
		return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}, nil
	case strings.HasPrefix(lower, "rgb"):
		return parseFunctional(lower)
	}

	if c, ok := colornames.Map[lower]; ok {
		return c, nil
	}
	return color.RGBA{}, fmt.Errorf("unknown color %q", s)
}

// MustColor is like ParseColor but panics on error.
func MustColor(s string) color.RGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// colorOr parses s, falling back to def when s is empty.
func colorOr(s string, def color.RGBA) (color.RGBA, error) {
	if s == "" {
		return def, nil
	}
	return ParseColor(s)
}

func isHex(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}

// parseFunctional parses rgb(r, g, b) and rgba(r, g, b, a) with a in [0,1].
// The result is premultiplied, as image/color expects.
func parseFunctional(s string) (color.RGBA, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	fn := strings.TrimSpace(s[:open])
	parts := strings.Split(s[open+1:len(s)-1], ",")
	if (fn == "rgb" && len(parts) != 3) || (fn == "rgba" && len(parts) != 4) {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		ch[i] = uint8(v)
	}
	alpha := 1.0
	if fn == "rgba" {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		alpha = a
	}
	return withAlpha(color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 0xff}, alpha), nil
}

// withAlpha scales an opaque color to the given opacity.
func withAlpha(c color.RGBA, alpha float64) color.RGBA {
	scale := func(v uint8) uint8 { return uint8(math.Round(float64(v) * alpha)) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: uint8(math.Round(255 * alpha))}
}

// toDrawing converts to the go-chart color type, which is not premultiplied.
func toDrawing(c color.RGBA) drawing.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return drawing.Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// seriesColors resolves one color per series, cycling DefaultPalette for
// series without an explicit color.
func seriesColors(names, declared []string) ([]color.RGBA, error) {
	out := make([]color.RGBA, len(names))
	for i := range names {
		spec := DefaultPalette[i%len(DefaultPalette)]
		if declared[i] != "" {
			spec = declared[i]
		}
		c, err := ParseColor(spec)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", names[i], err)
		}
		out[i] = c
	}
	return out, nil
}
