package render

import (
	"image/color"
	"testing"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
)

func bluesScale(lo, hi float64) QuantizeScale {
	colors := make([]color.RGBA, len(Blues))
	for i, s := range Blues {
		colors[i] = MustColor(s)
	}
	return NewQuantizeScale(lo, hi, colors)
}

func TestQuantizeScaleIndex(t *testing.T) {
	s := bluesScale(0, 90)
	tests := []struct {
		v    float64
		want int
	}{
		{-5, 0},
		{0, 0},
		{9.99, 0},
		{10, 1},
		{45, 4},
		{89.9, 8},
		{90, 8},
		{1000, 8},
	}
	for _, tt := range tests {
		if got := s.Index(tt.v); got != tt.want {
			t.Errorf("Index(%g) = %d, want %d", tt.v, got, tt.want)
		}
	}
	if th := s.Thresholds(); len(th) != 8 || th[0] != 10 || th[7] != 80 {
		t.Errorf("Thresholds = %v", th)
	}
}

func TestQuantizeScaleDegenerateDomain(t *testing.T) {
	s := bluesScale(5, 5)
	if got := s.Index(5); got != len(Blues)-1 {
		t.Errorf("Index on degenerate domain = %d, want %d", got, len(Blues)-1)
	}
}

func TestQuantizeScaleBucket(t *testing.T) {
	s := bluesScale(0, 90)
	c, lo, hi := s.Bucket(0)
	if c != MustColor("#f7fbff") || lo != 0 || hi != 10 {
		t.Errorf("Bucket(0) = %v, %g, %g", c, lo, hi)
	}
	_, lo, hi = s.Bucket(8)
	if lo != 80 || hi != 90 {
		t.Errorf("Bucket(8) = %g, %g", lo, hi)
	}
}

func TestNormalizeRegion(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"HimachalPradesh", "Himachal Pradesh"},
		{"Jammu & Kashmir", "Jammu and Kashmir"},
		{"ODISHA", "Odisha"},
		{"Dadra and Nagar Haveli", "Dadra & Nagar Haveli"},
	}
	for _, tt := range tests {
		if NormalizeRegion(tt.a) != NormalizeRegion(tt.b) {
			t.Errorf("NormalizeRegion(%q) != NormalizeRegion(%q)", tt.a, tt.b)
		}
	}
}

func TestRegionColors(t *testing.T) {
	ds := models.MustDataset("State", []string{"Gujarat", "HimachalPradesh", "Goa"},
		models.Series{Name: "MW", Values: []float64{90, 10, 0}})
	tiles := []models.Tile{
		{Region: "Gujarat"}, {Region: "Himachal Pradesh"}, {Region: "Goa"}, {Region: "Kerala"},
	}
	got := RegionColors(ds, tiles)

	missing := MustColor(MissingColor)
	want := map[string]color.RGBA{
		"Gujarat":          MustColor("#08306b"),
		"Himachal Pradesh": MustColor("#deebf7"),
		"Goa":              missing,
		"Kerala":           missing,
	}
	for region, c := range want {
		if got[region] != c {
			t.Errorf("%s = %v, want %v", region, got[region], c)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ff0000", color.RGBA{R: 255, A: 255}, false},
		{"#0f0", color.RGBA{G: 255, A: 255}, false},
		{"steelblue", color.RGBA{R: 70, G: 130, B: 180, A: 255}, false},
		{"SteelBlue", color.RGBA{R: 70, G: 130, B: 180, A: 255}, false},
		{"rgb(10, 20, 30)", color.RGBA{R: 10, G: 20, B: 30, A: 255}, false},
		{"rgba(200, 100, 0, 0.5)", color.RGBA{R: 100, G: 50, B: 0, A: 128}, false},
		{"#12345", color.RGBA{}, true},
		{"#zzzzzz", color.RGBA{}, true},
		{"rgb(300, 0, 0)", color.RGBA{}, true},
		{"rgba(1, 2, 3)", color.RGBA{}, true},
		{"notacolor", color.RGBA{}, true},
		{"", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestThemeByName(t *testing.T) {
	for _, name := range []string{"", "light", "Dark"} {
		if _, err := ThemeByName(name); err != nil {
			t.Errorf("ThemeByName(%q): %v", name, err)
		}
	}
	if _, err := ThemeByName("solarized"); err == nil {
		t.Error("expected error for unknown theme")
	}
	if Light().Toggled().Name != "dark" || Dark().Toggled().Name != "light" {
		t.Error("Toggled does not flip the theme")
	}
}
