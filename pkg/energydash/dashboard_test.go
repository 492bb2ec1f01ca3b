package energydash

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/energyconsortium/energydash-go/pkg/energydash/catalog"
	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"github.com/energyconsortium/energydash-go/pkg/energydash/panel"
)

func testDashboard(t *testing.T, opts Options) *Dashboard {
	t.Helper()
	opts.Width, opts.Height = 200, 120
	opts.FullscreenWidth, opts.FullscreenHeight = 400, 240
	d, err := Open(catalog.MustLoad(), opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func states(t *testing.T, d *Dashboard, pageID string) []panel.State {
	t.Helper()
	shells, err := d.Panels(pageID)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]panel.State, len(shells))
	for i, s := range shells {
		out[i] = s.State()
	}
	return out
}

func allIn(states []panel.State, want panel.State) bool {
	for _, s := range states {
		if s != want {
			return false
		}
	}
	return true
}

func TestNavigate(t *testing.T) {
	ctx := context.Background()
	d := testDashboard(t, Options{})

	if err := d.Navigate(ctx, "home"); err != nil {
		t.Fatalf("Navigate home: %v", err)
	}
	if d.Current() != "home" || !allIn(states(t, d, "home"), panel.Rendered) {
		t.Fatalf("home not rendered: %v", states(t, d, "home"))
	}
	if !allIn(states(t, d, "production"), panel.Unmounted) {
		t.Error("production mounted before navigation")
	}

	if err := d.Navigate(ctx, "production"); err != nil {
		t.Fatal(err)
	}
	if !allIn(states(t, d, "home"), panel.Unmounted) {
		t.Error("home still mounted after navigating away")
	}
	if !allIn(states(t, d, "production"), panel.Rendered) {
		t.Error("production not rendered")
	}

	if err := d.Navigate(ctx, "nowhere"); !errors.Is(err, ErrUnknownPage) {
		t.Errorf("err = %v, want ErrUnknownPage", err)
	}
	if d.Current() != "production" {
		t.Errorf("failed navigation changed the page to %q", d.Current())
	}
}

func TestEnsureKeepsOtherPages(t *testing.T) {
	ctx := context.Background()
	d := testDashboard(t, Options{})
	if err := d.Ensure(ctx, "home"); err != nil {
		t.Fatal(err)
	}
	if err := d.Ensure(ctx, "availability"); err != nil {
		t.Fatal(err)
	}
	if !allIn(states(t, d, "home"), panel.Rendered) || !allIn(states(t, d, "availability"), panel.Rendered) {
		t.Error("Ensure unmounted a page")
	}
	if d.Current() != "" {
		t.Errorf("Ensure changed the current page to %q", d.Current())
	}
}

func TestLookups(t *testing.T) {
	d := testDashboard(t, Options{})
	if _, err := d.Panel("missing"); !errors.Is(err, ErrUnknownPanel) {
		t.Errorf("Panel err = %v", err)
	}
	if _, err := d.Page("missing"); !errors.Is(err, ErrUnknownPage) {
		t.Errorf("Page err = %v", err)
	}
	if page, err := d.PageByPath("/"); err != nil || page.ID != "home" {
		t.Errorf("PageByPath(/) = %q, %v", page.ID, err)
	}
	if id, err := d.PageOf("coal-washeries"); err != nil || id != "reserves" {
		t.Errorf("PageOf = %q, %v", id, err)
	}
	if n := len(d.Pages()); n != 4 {
		t.Errorf("Pages = %d", n)
	}
}

func TestOpenRejectsBadOptions(t *testing.T) {
	if _, err := Open(catalog.MustLoad(), Options{Theme: "sepia"}); err == nil {
		t.Error("Open accepted an unknown theme")
	}
	pages := catalog.MustLoad()
	pages = append(pages, models.PageSpec{ID: "again", Panels: pages[0].Panels[:1]})
	if _, err := Open(pages, Options{}); err == nil {
		t.Error("Open accepted a duplicate panel")
	}
}

func TestDashboardExport(t *testing.T) {
	ctx := context.Background()
	d := testDashboard(t, Options{})

	tests := []struct {
		req  models.ExportRequest
		want string
	}{
		{models.ExportRequest{PanelID: "energy-growth", Format: models.FormatImage}, "energy_chart.png"},
		{models.ExportRequest{PanelID: "energy-growth", Format: models.FormatSpreadsheet}, "full_energy_data.xlsx"},
		{models.ExportRequest{PanelID: "renewable-map", Format: models.FormatImage}, "renewable_map_2022.png"},
		{models.ExportRequest{PanelID: "renewable-map", Format: models.FormatSpreadsheet}, "renewable_potential_2022.xlsx"},
		{models.ExportRequest{PanelID: "crude-oil-reserves", Format: models.FormatImage}, "Estimated Reserves of Crude Oil in India (2024).png"},
		{models.ExportRequest{PanelID: "coal-reserves", Format: models.FormatSpreadsheet}, "chart_3.xlsx"},
		{models.ExportRequest{PanelID: "sourcewise-share", Format: models.FormatImage}, "ChartF.png"},
	}
	for _, tt := range tests {
		dl, err := d.Export(ctx, tt.req)
		if err != nil {
			t.Fatalf("Export(%+v): %v", tt.req, err)
		}
		if dl == nil || dl.FileName != tt.want {
			t.Errorf("Export(%+v) = %v, want %q", tt.req, dl, tt.want)
		}
	}

	_, err := d.Export(ctx, models.ExportRequest{PanelID: "energy-growth", Format: "gif"})
	var exportErr *ExportError
	if !errors.As(err, &exportErr) || exportErr.PanelID != "energy-growth" {
		t.Errorf("err = %v, want ExportError", err)
	}
	if _, err := d.Export(ctx, models.ExportRequest{PanelID: "nope", Format: models.FormatImage}); !errors.Is(err, ErrUnknownPanel) {
		t.Errorf("err = %v, want ErrUnknownPanel", err)
	}
}

func TestExportPage(t *testing.T) {
	d := testDashboard(t, Options{})
	dl, err := d.ExportPage(context.Background(), "production")
	if err != nil {
		t.Fatalf("ExportPage: %v", err)
	}
	if dl.FileName != "production.zip" {
		t.Errorf("FileName = %q", dl.FileName)
	}
	zr, err := zip.NewReader(bytes.NewReader(dl.Data), int64(len(dl.Data)))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"NaturalGas.png", "NaturalGas.xlsx",
		"CoalProduction.png", "CoalProduction.xlsx",
		"Electricity.png", "Electricity.xlsx",
		"PetroleumProducts.png", "PetroleumProducts.xlsx",
	}
	if len(zr.File) != len(want) {
		t.Fatalf("entries = %d, want %d", len(zr.File), len(want))
	}
	for i, f := range zr.File {
		if f.Name != want[i] {
			t.Errorf("entry %d = %q, want %q", i, f.Name, want[i])
		}
	}
}

func TestReportPage(t *testing.T) {
	d := testDashboard(t, Options{})
	dl, err := d.ReportPage(context.Background(), "home")
	if err != nil {
		t.Fatalf("ReportPage: %v", err)
	}
	if dl.FileName != "home.pdf" || !bytes.HasPrefix(dl.Data, []byte("%PDF")) {
		t.Errorf("report = %q, %d bytes", dl.FileName, len(dl.Data))
	}
	if _, err := d.ReportPage(context.Background(), "missing"); !errors.Is(err, ErrUnknownPage) {
		t.Errorf("err = %v, want ErrUnknownPage", err)
	}
}

func TestSubscribe(t *testing.T) {
	d := testDashboard(t, Options{})
	var mounted []string
	cancel := d.Subscribe(func(e panel.Event) {
		if e.Type == panel.EventMounted {
			mounted = append(mounted, e.PanelID)
		}
	})
	if err := d.Navigate(context.Background(), "home"); err != nil {
		t.Fatal(err)
	}
	if len(mounted) != 2 || mounted[0] != "energy-growth" || mounted[1] != "renewable-map" {
		t.Errorf("mounted = %v", mounted)
	}

	cancel()
	d.Navigate(context.Background(), "production")
	if len(mounted) != 2 {
		t.Errorf("events after unsubscribe: %v", mounted)
	}
}

func TestExportErrorUnwrap(t *testing.T) {
	err := NewExportError("p", models.FormatImage, ErrNoChartHandle)
	if !errors.Is(err, ErrNoChartHandle) {
		t.Error("ExportError does not unwrap")
	}
	if got := err.Error(); got != `export png of panel "p": no live chart to export` {
		t.Errorf("Error() = %q", got)
	}
}

func TestExportCurrentDoesNotMount(t *testing.T) {
	ctx := context.Background()
	img := models.ExportRequest{PanelID: "energy-growth", Format: models.FormatImage}

	d := testDashboard(t, Options{})
	dl, err := d.ExportCurrent(ctx, img)
	if err != nil || dl != nil {
		t.Fatalf("ExportCurrent = %v, %v, want nothing", dl, err)
	}
	if !allIn(states(t, d, "home"), panel.Unmounted) {
		t.Error("ExportCurrent mounted the panel")
	}
	if dl, err := d.ExportCurrent(ctx, models.ExportRequest{PanelID: "energy-growth", Format: models.FormatSpreadsheet}); err != nil || dl == nil {
		t.Errorf("spreadsheet = %v, %v", dl, err)
	}

	strict := testDashboard(t, Options{Strict: true})
	if _, err := strict.ExportCurrent(ctx, img); !errors.Is(err, ErrNoChartHandle) {
		t.Errorf("strict err = %v, want ErrNoChartHandle", err)
	}
	if err := strict.Navigate(ctx, "home"); err != nil {
		t.Fatal(err)
	}
	if dl, err := strict.ExportCurrent(ctx, img); err != nil || dl == nil || dl.FileName != "energy_chart.png" {
		t.Errorf("after navigation = %v, %v", dl, err)
	}
}
