package render

import (
	"fmt"
	"image/color"
	"strings"
)

// Theme holds the colors a chart is drawn with. It is passed explicitly to
// every render; there is no process-wide dark mode.
type Theme struct {
	Name       string
	Background color.RGBA
	Foreground color.RGBA
	Grid       color.RGBA
	Muted      color.RGBA
	// Stroke outlines map regions.
	Stroke color.RGBA
}

// Light is the default theme.
func Light() Theme {
	return Theme{
		Name:       "light",
		Background: MustColor("#ffffff"),
		Foreground: MustColor("#1f2937"),
		Grid:       MustColor("#e5e7eb"),
		Muted:      MustColor("#eeeeee"),
		Stroke:     MustColor("#333333"),
	}
}

// Dark is the dark-mode theme of panels that offer a theme toggle.
func Dark() Theme {
	return Theme{
		Name:       "dark",
		Background: MustColor("#000000"),
		Foreground: MustColor("#f3f4f6"),
		Grid:       MustColor("#374151"),
		Muted:      MustColor("#eeeeee"),
		Stroke:     MustColor("#333333"),
	}
}

// ThemeByName returns the named theme ("light" or "dark").
func ThemeByName(name string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "light":
		return Light(), nil
	case "dark":
		return Dark(), nil
	}
	return Theme{}, fmt.Errorf("unknown theme %q (must be light or dark)", name)
}

// Toggled returns the opposite theme.
func (t Theme) Toggled() Theme {
	if t.Name == "dark" {
		return Light()
	}
	return Dark()
}
