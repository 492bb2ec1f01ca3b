package render

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
)

func sampleDataset(t *testing.T) *models.Dataset {
	t.Helper()
	return models.MustDataset("Year", []string{"2020", "2021"},
		models.Series{Name: "Production", Values: []float64{100, 200}},
		models.Series{Name: "Imports", Values: []float64{40, 60}, Color: "rgba(255, 99, 132, 0.8)"},
	)
}

func mountedRenderer(w, h int) *Renderer {
	s := NewSurface(w, h)
	s.Mount()
	return NewRenderer(s)
}

func TestRenderUnmountedIsNoop(t *testing.T) {
	r := NewRenderer(NewSurface(320, 240))
	h, err := r.Render(sampleDataset(t), models.DisplayConfig{Kind: models.KindBar}, Light())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if h != nil {
		t.Fatal("Render on an unmounted surface returned a handle")
	}
	if r.Handle() != nil {
		t.Error("renderer holds a handle after a deferred render")
	}
}

func TestRenderTwiceKeepsOneBinding(t *testing.T) {
	r := mountedRenderer(320, 240)
	ds := sampleDataset(t)
	cfg := models.DisplayConfig{Kind: models.KindBar, Stacked: true}

	first, err := r.Render(ds, cfg, Light())
	if err != nil {
		t.Fatalf("first Render: %v", err)
	}
	second, err := r.Render(ds, cfg, Dark())
	if err != nil {
		t.Fatalf("second Render: %v", err)
	}

	if first.Live() {
		t.Error("first handle still live after re-render")
	}
	if !second.Live() {
		t.Error("second handle not live")
	}
	if got := r.Surface().LiveBindings(); got != 1 {
		t.Errorf("LiveBindings = %d, want 1", got)
	}
	if first.ID() == second.ID() {
		t.Error("handles share an id")
	}
	if r.Handle() != second {
		t.Error("Handle() does not return the latest binding")
	}
}

func TestSecondRendererOnBoundSurfaceIsBusy(t *testing.T) {
	s := NewSurface(200, 150)
	s.Mount()
	a, b := NewRenderer(s), NewRenderer(s)
	cfg := models.DisplayConfig{Kind: models.KindLine}

	if _, err := a.Render(sampleDataset(t), cfg, Light()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := b.Render(sampleDataset(t), cfg, Light()); !errors.Is(err, ErrSurfaceBusy) {
		t.Errorf("err = %v, want ErrSurfaceBusy", err)
	}
}

func TestHandleLifecycle(t *testing.T) {
	r := mountedRenderer(200, 150)
	h, err := r.Render(sampleDataset(t), models.DisplayConfig{Kind: models.KindLine, Fill: true, ShowValues: true}, Light())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if h.Kind() != models.KindLine {
		t.Errorf("Kind = %q", h.Kind())
	}

	var buf bytes.Buffer
	if err := h.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Errorf("PNG size = %v, want 200x150", b)
	}

	h.Destroy()
	h.Destroy()
	if h.Live() {
		t.Error("handle live after Destroy")
	}
	if h.Snapshot() != nil {
		t.Error("Snapshot of destroyed handle is not nil")
	}
	if err := h.EncodePNG(&buf); !errors.Is(err, ErrHandleReleased) {
		t.Errorf("EncodePNG err = %v, want ErrHandleReleased", err)
	}
	if r.Surface().LiveBindings() != 0 {
		t.Error("surface still bound after Destroy")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := mountedRenderer(64, 48)
	h, err := r.Render(sampleDataset(t), models.DisplayConfig{Kind: models.KindBar}, Light())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	snap := h.Snapshot()
	for i := range snap.Pix {
		snap.Pix[i] = 7
	}
	again := h.Snapshot()
	if bytes.Equal(snap.Pix, again.Pix) {
		t.Error("mutating a snapshot changed the surface")
	}
}

func TestUnmountAndResizeReleaseBinding(t *testing.T) {
	r := mountedRenderer(100, 80)
	cfg := models.DisplayConfig{Kind: models.KindBar}

	h, _ := r.Render(sampleDataset(t), cfg, Light())
	r.Surface().Resize(200, 160)
	if h.Live() {
		t.Error("handle live after resize")
	}
	if w, hgt := r.Surface().Size(); w != 200 || hgt != 160 {
		t.Errorf("Size = %dx%d", w, hgt)
	}

	h, _ = r.Render(sampleDataset(t), cfg, Light())
	r.Surface().Unmount()
	if h.Live() || r.Handle() != nil {
		t.Error("binding survived unmount")
	}
}

func TestRenderRejectsInvalidInput(t *testing.T) {
	r := mountedRenderer(100, 80)
	tests := []struct {
		name string
		ds   *models.Dataset
		cfg  models.DisplayConfig
		want error
	}{
		{"unsupported kind", sampleDataset(t), models.DisplayConfig{Kind: "radar"}, ErrUnsupportedKind},
		{"no dataset", nil, models.DisplayConfig{Kind: models.KindBar}, models.ErrNoSeries},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Render(tt.ds, tt.cfg, Light()); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDrawAllKinds(t *testing.T) {
	pieData, err := models.NewDataset("Type", []string{"Proved", "Indicated", "Inferred"},
		[]models.Series{{Name: "Coal", Values: []float64{201, 174, 35}}},
		models.WithCategoryColors("#4a90e2", "steelblue", "rgb(10, 20, 30)"))
	if err != nil {
		t.Fatal(err)
	}
	mapData := models.MustDataset("State", []string{"Gujarat", "HimachalPradesh", "Goa"},
		models.Series{Name: "Potential (MW)", Values: []float64{4376.82, 650.15, 0}})
	tiles := []models.Tile{
		{Region: "Gujarat", Abbr: "GJ", Col: 0, Row: 1},
		{Region: "Himachal Pradesh", Abbr: "HP", Col: 1, Row: 0},
		{Region: "Goa", Abbr: "GA", Col: 1, Row: 2},
		{Region: "Kerala", Abbr: "KL", Col: 2, Row: 3},
	}

	tests := []struct {
		name string
		ds   *models.Dataset
		cfg  models.DisplayConfig
	}{
		{"grouped bar", sampleDataset(t), models.DisplayConfig{Kind: models.KindBar, Max: models.Float(110)}},
		{"horizontal stacked bar", sampleDataset(t), models.DisplayConfig{Kind: models.KindBar, Stacked: true, Horizontal: true}},
		{"percent bar", sampleDataset(t), models.DisplayConfig{Kind: models.KindBar, Stacked: true, Max: models.Float(100), TickSuffix: "%"}},
		{"category colored bar", pieData, models.DisplayConfig{Kind: models.KindBar, Legend: models.LegendNone}},
		{"bounded line", sampleDataset(t), models.DisplayConfig{Kind: models.KindLine, Min: models.Float(0), Max: models.Float(270), BeginAtZero: true}},
		{"pie", pieData, models.DisplayConfig{Kind: models.KindPie, Title: "Coal", Subtitle: "reserves", ShowValues: true}},
		{"choropleth", mapData, models.DisplayConfig{Kind: models.KindChoropleth, Tiles: tiles}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Draw(tt.ds, tt.cfg, Light(), 400, 300)
			if err != nil {
				t.Fatalf("Draw: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
				t.Errorf("size = %v", b)
			}
		})
	}
}

func TestDrawPieRejectsEmpty(t *testing.T) {
	ds := models.MustDataset("", []string{"a", "b"}, models.Series{Name: "x", Values: []float64{0, 0}})
	if _, err := Draw(ds, models.DisplayConfig{Kind: models.KindPie}, Light(), 100, 100); !errors.Is(err, ErrEmptyPie) {
		t.Errorf("err = %v, want ErrEmptyPie", err)
	}
}

func TestRenderEmptyDataset(t *testing.T) {
	empty := models.MustDataset("State", nil, models.Series{Name: "MW"})
	tiles := []models.Tile{{Region: "Rajasthan", Abbr: "RJ"}}
	tests := []struct {
		name string
		cfg  models.DisplayConfig
	}{
		{"bar", models.DisplayConfig{Kind: models.KindBar, Title: "Empty", BeginAtZero: true}},
		{"horizontal stacked bar", models.DisplayConfig{Kind: models.KindBar, Horizontal: true, Stacked: true}},
		{"line", models.DisplayConfig{Kind: models.KindLine, ShowValues: true}},
		{"filled line", models.DisplayConfig{Kind: models.KindLine, Fill: true, Max: models.Float(100)}},
		{"pie", models.DisplayConfig{Kind: models.KindPie, Title: "Empty"}},
		{"choropleth", models.DisplayConfig{Kind: models.KindChoropleth, Tiles: tiles}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mountedRenderer(120, 80)
			h, err := r.Render(empty, tt.cfg, Light())
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if b := h.Snapshot().Bounds(); b.Dx() != 120 || b.Dy() != 80 {
				t.Errorf("bounds = %v", b)
			}
			if r.Surface().LiveBindings() != 1 {
				t.Error("empty chart not bound")
			}
		})
	}
}
