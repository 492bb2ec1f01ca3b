package energydash

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/energyconsortium/energydash-go/pkg/energydash/export"
	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"github.com/energyconsortium/energydash-go/pkg/energydash/panel"
)

// Dashboard owns one Shell per declared panel and tracks the current page.
type Dashboard struct {
	mu      sync.Mutex
	pages   []models.PageSpec
	shells  map[string]*panel.Shell
	pageOf  map[string]string
	current string

	adapter *export.Adapter
	logger  *log.Logger
}

// Open builds a dashboard over pages. No panel is mounted until a page is
// navigated to or ensured.
func Open(pages []models.PageSpec, opts Options) (*Dashboard, error) {
	shellOpts, err := opts.shellOptions()
	if err != nil {
		return nil, err
	}
	d := &Dashboard{
		pages:   pages,
		shells:  make(map[string]*panel.Shell),
		pageOf:  make(map[string]string),
		adapter: export.NewAdapter(opts.exportOptions(), opts.logger()),
		logger:  opts.logger(),
	}
	seen := make(map[string]bool, len(pages))
	for _, page := range pages {
		if seen[page.ID] {
			return nil, fmt.Errorf("duplicate page %q", page.ID)
		}
		seen[page.ID] = true
		for _, spec := range page.Panels {
			if _, ok := d.shells[spec.ID]; ok {
				return nil, fmt.Errorf("duplicate panel %q", spec.ID)
			}
			s, err := panel.New(spec, shellOpts)
			if err != nil {
				return nil, err
			}
			d.shells[spec.ID] = s
			d.pageOf[spec.ID] = page.ID
		}
	}
	return d, nil
}

// Pages returns the declared pages in navigation order.
func (d *Dashboard) Pages() []models.PageSpec {
	return append([]models.PageSpec(nil), d.pages...)
}

// Page returns the page with the given id.
func (d *Dashboard) Page(id string) (models.PageSpec, error) {
	for _, p := range d.pages {
		if p.ID == id {
			return p, nil
		}
	}
	return models.PageSpec{}, fmt.Errorf("%w: %q", ErrUnknownPage, id)
}

// PageByPath returns the page served at an HTTP path.
func (d *Dashboard) PageByPath(path string) (models.PageSpec, error) {
	for _, p := range d.pages {
		if p.Path == path {
			return p, nil
		}
	}
	return models.PageSpec{}, fmt.Errorf("%w: path %q", ErrUnknownPage, path)
}

// Panel returns the shell of a panel.
func (d *Dashboard) Panel(id string) (*panel.Shell, error) {
	s, ok := d.shells[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPanel, id)
	}
	return s, nil
}

// PageOf returns the id of the page declaring a panel.
func (d *Dashboard) PageOf(panelID string) (string, error) {
	id, ok := d.pageOf[panelID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPanel, panelID)
	}
	return id, nil
}

// Panels returns the shells of a page in layout order.
func (d *Dashboard) Panels(pageID string) ([]*panel.Shell, error) {
	page, err := d.Page(pageID)
	if err != nil {
		return nil, err
	}
	out := make([]*panel.Shell, len(page.Panels))
	for i, spec := range page.Panels {
		out[i] = d.shells[spec.ID]
	}
	return out, nil
}

// Current returns the id of the page last navigated to.
func (d *Dashboard) Current() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Subscribe registers l on every shell and returns a function removing it.
func (d *Dashboard) Subscribe(l panel.Listener) (unsubscribe func()) {
	cancels := make([]func(), 0, len(d.shells))
	for _, s := range d.shells {
		cancels = append(cancels, s.Subscribe(l))
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

// Navigate selects a page: the panels of the previous page are unmounted
// and the panels of the target page are mounted.
func (d *Dashboard) Navigate(ctx context.Context, pageID string) error {
	target, err := d.Panels(pageID)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != "" && d.current != pageID {
		previous, _ := d.Panels(d.current)
		for _, s := range previous {
			s.Unmount()
		}
	}
	for _, s := range target {
		if err := s.Mount(ctx); err != nil {
			return err
		}
	}
	d.current = pageID
	d.logger.Printf("navigated to %s", pageID)
	return nil
}

// Ensure mounts the panels of a page without unmounting any other page.
// It serves concurrent clients looking at different pages.
func (d *Dashboard) Ensure(ctx context.Context, pageID string) error {
	shells, err := d.Panels(pageID)
	if err != nil {
		return err
	}
	for _, s := range shells {
		if err := s.Mount(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Export serves a single export request. The panel's page is mounted first
// so image exports find a live chart; a nil download means there was
// nothing to export.
func (d *Dashboard) Export(ctx context.Context, req models.ExportRequest) (*export.Download, error) {
	s, err := d.Panel(req.PanelID)
	if err != nil {
		return nil, err
	}
	if err := s.Mount(ctx); err != nil {
		return nil, NewExportError(req.PanelID, req.Format, err)
	}
	return exportFrom(ctx, s, req)
}

// ExportCurrent serves req from the panel as it is, without mounting it.
// An image export of an unmounted panel finds no live chart: it returns a
// nil download, or ErrNoChartHandle in strict mode.
func (d *Dashboard) ExportCurrent(ctx context.Context, req models.ExportRequest) (*export.Download, error) {
	s, err := d.Panel(req.PanelID)
	if err != nil {
		return nil, err
	}
	return exportFrom(ctx, s, req)
}

func exportFrom(ctx context.Context, s *panel.Shell, req models.ExportRequest) (*export.Download, error) {
	res := <-s.Export(ctx, req)
	if res.Err != nil {
		return nil, NewExportError(req.PanelID, req.Format, res.Err)
	}
	return res.Download, nil
}

// ExportPage zips the PNG and spreadsheet of every panel of a page. The
// panels are exported concurrently.
func (d *Dashboard) ExportPage(ctx context.Context, pageID string) (*export.Download, error) {
	if err := d.Ensure(ctx, pageID); err != nil {
		return nil, err
	}
	shells, _ := d.Panels(pageID)

	producers := make([]export.Producer, 0, 2*len(shells))
	for _, s := range shells {
		producers = append(producers,
			func(ctx context.Context) (*export.Download, error) {
				dl, err := s.ExportImage(ctx)
				if err != nil {
					return nil, NewExportError(s.ID(), models.FormatImage, err)
				}
				return dl, nil
			},
			func(ctx context.Context) (*export.Download, error) {
				dl, err := s.ExportTable(ctx)
				if err != nil {
					return nil, NewExportError(s.ID(), models.FormatSpreadsheet, err)
				}
				return dl, nil
			},
		)
	}
	return d.adapter.ExportArchive(ctx, pageID, producers)
}

// ReportPage renders a page as a PDF: one section per panel with its chart
// and data table.
func (d *Dashboard) ReportPage(ctx context.Context, pageID string) (*export.Download, error) {
	if err := d.Ensure(ctx, pageID); err != nil {
		return nil, err
	}
	page, _ := d.Page(pageID)
	shells, _ := d.Panels(pageID)

	report := export.Report{Title: page.Title, GeneratedAt: time.Now()}
	for _, s := range shells {
		item, err := s.ReportItem()
		if err != nil {
			return nil, NewExportError(s.ID(), models.FormatReport, err)
		}
		report.Items = append(report.Items, item)
	}
	return d.adapter.ExportReport(ctx, report, pageID)
}

// Close unmounts every panel.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.shells {
		s.Unmount()
	}
	d.current = ""
}
