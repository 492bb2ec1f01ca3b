// Package panel composes a dataset, a chart renderer and an export adapter
// into one dashboard panel.
//
// A Shell owns its surface, its chart handle and its selected variant; two
// shells never share state. The lifecycle is
//
//	Unmounted -> Rendering -> Rendered -> (re-render on change) -> Unmounted
//
// with a non-persistent fullscreen sub-state.
package panel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/energyconsortium/energydash-go/pkg/energydash/export"
	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"github.com/energyconsortium/energydash-go/pkg/energydash/render"
)

var (
	// ErrUnknownVariant indicates a selector key the panel does not declare.
	ErrUnknownVariant = errors.New("unknown variant")
	// ErrPanelMismatch indicates an export request addressed to another panel.
	ErrPanelMismatch = errors.New("export request targets another panel")
)

// State is the lifecycle state of a shell.
type State int

const (
	Unmounted State = iota
	Rendering
	Rendered
)

func (s State) String() string {
	switch s {
	case Rendering:
		return "rendering"
	case Rendered:
		return "rendered"
	}
	return "unmounted"
}

// Options sizes and configures a shell.
type Options struct {
	Width            int
	Height           int
	FullscreenWidth  int
	FullscreenHeight int
	Theme            render.Theme
	Export           export.Options
	Logger           *log.Logger
}

// DefaultOptions returns a 800x450 light shell with a 1600x900 fullscreen.
func DefaultOptions() Options {
	return Options{
		Width:            800,
		Height:           450,
		FullscreenWidth:  1600,
		FullscreenHeight: 900,
		Theme:            render.Light(),
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Width <= 0 || o.Height <= 0 {
		o.Width, o.Height = def.Width, def.Height
	}
	if o.FullscreenWidth <= 0 || o.FullscreenHeight <= 0 {
		o.FullscreenWidth, o.FullscreenHeight = def.FullscreenWidth, def.FullscreenHeight
	}
	if o.Theme.Name == "" {
		o.Theme = def.Theme
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	return o
}

// Controls lists the affordances a page shows for a panel.
type Controls struct {
	ExportImage       bool     `json:"export_image"`
	ExportSpreadsheet bool     `json:"export_spreadsheet"`
	Fullscreen        bool     `json:"fullscreen"`
	IsFullscreen      bool     `json:"is_fullscreen"`
	Variants          []string `json:"variants,omitempty"`
	SelectedVariant   string   `json:"selected_variant,omitempty"`
	ThemeToggle       bool     `json:"theme_toggle"`
	Theme             string   `json:"theme"`
}

// Shell is one mounted panel.
type Shell struct {
	mu         sync.Mutex
	spec       models.PanelSpec
	cfg        models.DisplayConfig
	variant    string
	theme      render.Theme
	state      State
	fullscreen bool

	opts     Options
	surface  *render.Surface
	renderer *render.Renderer
	draw     func(*models.Dataset, models.DisplayConfig, render.Theme) (*render.ChartHandle, error)
	adapter  *export.Adapter
	logger   *log.Logger
	events   listeners
}

// New validates spec and returns an unmounted shell.
func New(spec models.PanelSpec, opts Options) (*Shell, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	surface := render.NewSurface(opts.Width, opts.Height)
	s := &Shell{
		spec:     spec,
		cfg:      spec.Display,
		variant:  spec.InitialVariant(),
		theme:    opts.Theme,
		opts:     opts,
		surface:  surface,
		renderer: render.NewRenderer(surface),
		adapter:  export.NewAdapter(opts.Export, opts.Logger),
		logger:   opts.Logger,
	}
	s.draw = s.renderer.Render
	return s, nil
}

// ID returns the panel id.
func (s *Shell) ID() string { return s.spec.ID }

// Spec returns the declaration the shell was built from.
func (s *Shell) Spec() models.PanelSpec { return s.spec }

// Subscribe registers l and returns a function removing it.
func (s *Shell) Subscribe(l Listener) (unsubscribe func()) { return s.events.add(l) }

// State returns the lifecycle state.
func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Config returns the current display configuration.
func (s *Shell) Config() models.DisplayConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Variant returns the selected variant key.
func (s *Shell) Variant() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.variant
}

// Theme returns the current theme.
func (s *Shell) Theme() render.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Fullscreen reports whether the panel is in fullscreen mode.
func (s *Shell) Fullscreen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fullscreen
}

// Dataset returns the dataset of the selected variant.
func (s *Shell) Dataset() *models.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, _ := s.spec.Variant(s.variant)
	return ds
}

// Handle returns the live chart handle, or nil before mount.
func (s *Shell) Handle() *render.ChartHandle { return s.renderer.Handle() }

// Surface returns the drawing target owned by the shell.
func (s *Shell) Surface() *render.Surface { return s.surface }

// Mount attaches the surface and renders the initial chart. Mounting a
// mounted shell does nothing.
func (s *Shell) Mount(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	events, err := s.mount()
	if err != nil || events == nil {
		return err
	}
	s.logger.Printf("panel %s: mounted (%s)", s.spec.ID, events[0].Variant)
	s.events.emit(events...)
	return nil
}

func (s *Shell) mount() ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Unmounted {
		return nil, nil
	}
	s.surface.Mount()
	s.state = Rendering

	rendered := false
	defer func() {
		if !rendered {
			s.surface.Unmount()
			s.state = Unmounted
		}
	}()
	h, err := s.renderLocked(s.cfg, s.variant, s.theme)
	if err != nil {
		return nil, fmt.Errorf("mount panel %s: %w", s.spec.ID, err)
	}
	rendered = true
	s.state = Rendered
	return []Event{s.eventLocked(EventMounted), s.renderedEventLocked(h)}, nil
}

// Unmount destroys the chart handle and detaches the surface. Fullscreen
// mode does not survive an unmount.
func (s *Shell) Unmount() {
	e, ok := s.unmount()
	if !ok {
		return
	}
	s.logger.Printf("panel %s: unmounted", s.spec.ID)
	s.events.emit(e)
}

func (s *Shell) unmount() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Unmounted {
		return Event{}, false
	}
	s.renderer.Release()
	s.surface.Unmount()
	s.state = Unmounted
	if s.fullscreen {
		s.fullscreen = false
		s.surface.Resize(s.opts.Width, s.opts.Height)
	}
	return s.eventLocked(EventUnmounted), true
}

// Configure replaces the display configuration and re-renders a mounted
// panel. On error the previous chart stays bound.
func (s *Shell) Configure(cfg models.DisplayConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return s.update(func() (models.DisplayConfig, string, render.Theme) {
		return cfg, s.variant, s.theme
	})
}

// SelectVariant switches the dataset, e.g. the year of a map.
func (s *Shell) SelectVariant(key string) error {
	if _, ok := s.spec.Variant(key); !ok {
		return fmt.Errorf("%w: %q for panel %s", ErrUnknownVariant, key, s.spec.ID)
	}
	return s.update(func() (models.DisplayConfig, string, render.Theme) {
		return s.cfg, key, s.theme
	})
}

// SetTheme switches the colors the chart is drawn with.
func (s *Shell) SetTheme(theme render.Theme) error {
	return s.update(func() (models.DisplayConfig, string, render.Theme) {
		return s.cfg, s.variant, theme
	})
}

// update applies a change and re-renders when mounted. next runs with the
// lock held.
func (s *Shell) update(next func() (models.DisplayConfig, string, render.Theme)) error {
	events, err := s.apply(next)
	s.events.emit(events...)
	return err
}

func (s *Shell) apply(next func() (models.DisplayConfig, string, render.Theme)) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, variant, theme := next()
	if s.state == Unmounted {
		s.cfg, s.variant, s.theme = cfg, variant, theme
		return nil, nil
	}
	h, err := s.renderLocked(cfg, variant, theme)
	if err != nil {
		return nil, fmt.Errorf("render panel %s: %w", s.spec.ID, err)
	}
	s.cfg, s.variant, s.theme = cfg, variant, theme
	return []Event{s.renderedEventLocked(h)}, nil
}

// ToggleFullscreen switches between the normal and fullscreen surface size
// and re-renders at the new size. It returns the new mode. When the render
// at the new size fails the panel goes back to its previous size and chart.
func (s *Shell) ToggleFullscreen() (bool, error) {
	fullscreen, events, err := s.toggleFullscreen()
	s.events.emit(events...)
	return fullscreen, err
}

func (s *Shell) toggleFullscreen() (bool, []Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resizeLocked(!s.fullscreen)
	if s.state == Unmounted {
		return s.fullscreen, []Event{s.eventLocked(EventFullscreen)}, nil
	}

	h, err := s.renderLocked(s.cfg, s.variant, s.theme)
	if err == nil {
		return s.fullscreen, []Event{s.eventLocked(EventFullscreen), s.renderedEventLocked(h)}, nil
	}
	err = fmt.Errorf("render panel %s: %w", s.spec.ID, err)

	s.resizeLocked(!s.fullscreen)
	h, rerr := s.renderLocked(s.cfg, s.variant, s.theme)
	if rerr != nil {
		s.logger.Printf("panel %s: restore chart: %v", s.spec.ID, rerr)
		return s.fullscreen, nil, err
	}
	return s.fullscreen, []Event{s.renderedEventLocked(h)}, err
}

// resizeLocked sets the fullscreen mode and the matching surface size.
func (s *Shell) resizeLocked(fullscreen bool) {
	s.fullscreen = fullscreen
	if fullscreen {
		s.surface.Resize(s.opts.FullscreenWidth, s.opts.FullscreenHeight)
	} else {
		s.surface.Resize(s.opts.Width, s.opts.Height)
	}
}

// Controls returns the affordances of the panel in its current state.
func (s *Shell) Controls() Controls {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := Controls{
		ExportImage:       true,
		ExportSpreadsheet: true,
		Fullscreen:        s.spec.Fullscreen,
		IsFullscreen:      s.fullscreen,
		ThemeToggle:       s.spec.ThemeToggle,
		Theme:             s.theme.Name,
	}
	if len(s.spec.Variants) > 1 {
		c.Variants = s.spec.VariantKeys()
		c.SelectedVariant = s.variant
	}
	return c
}

// ExportImage downloads the pixels of the live chart. Without a live chart
// it returns a nil download, or export.ErrNoChartHandle in strict mode.
func (s *Shell) ExportImage(ctx context.Context) (*export.Download, error) {
	return s.exportImage(ctx, "")
}

// ExportTable downloads the dataset of the selected variant as a workbook.
func (s *Shell) ExportTable(ctx context.Context) (*export.Download, error) {
	return s.exportTable(ctx, "")
}

// Export serves req on a goroutine. The channel receives exactly one
// Result and is closed.
func (s *Shell) Export(ctx context.Context, req models.ExportRequest) <-chan export.Result {
	done := make(chan export.Result, 1)
	go func() {
		defer close(done)
		var (
			d   *export.Download
			err error
		)
		switch {
		case req.PanelID != "" && req.PanelID != s.spec.ID:
			err = fmt.Errorf("%w: %s", ErrPanelMismatch, req.PanelID)
		case req.Format == models.FormatImage:
			d, err = s.exportImage(ctx, req.SuggestedFileName)
		case req.Format == models.FormatSpreadsheet:
			d, err = s.exportTable(ctx, req.SuggestedFileName)
		case req.Format == models.FormatReport:
			d, err = s.exportReport(ctx, req.SuggestedFileName)
		default:
			_, err = models.ParseExportFormat(string(req.Format))
		}
		done <- export.Result{Download: d, Err: err}
	}()
	return done
}

// ReportItem returns the report section of the panel: its headings, the
// current chart PNG when one is live, and the selected dataset.
func (s *Shell) ReportItem() (export.ReportItem, error) {
	s.mu.Lock()
	ds, _ := s.spec.Variant(s.variant)
	title := s.spec.Title
	if len(s.spec.Variants) > 1 {
		title += " (" + s.variant + ")"
	}
	s.mu.Unlock()

	item := export.ReportItem{
		Title:    title,
		Subtitle: s.spec.Subtitle,
		Source:   s.spec.Source,
		Note:     s.spec.Note,
		Dataset:  ds,
	}
	if h := s.renderer.Handle(); h != nil {
		var buf bytes.Buffer
		if err := h.EncodePNG(&buf); err != nil && !errors.Is(err, render.ErrHandleReleased) {
			return item, err
		}
		item.Image = buf.Bytes()
	}
	return item, nil
}

func (s *Shell) exportImage(ctx context.Context, name string) (*export.Download, error) {
	if name == "" {
		name = s.logicalName(s.spec.ImageName, models.FormatImage)
	}
	d, err := s.adapter.ExportImage(ctx, s.renderer.Handle(), name)
	if err != nil || d == nil {
		return d, err
	}
	s.exported(models.FormatImage, d)
	return d, nil
}

func (s *Shell) exportTable(ctx context.Context, name string) (*export.Download, error) {
	s.mu.Lock()
	ds, _ := s.spec.Variant(s.variant)
	cfg := s.cfg
	s.mu.Unlock()

	if name == "" {
		name = s.logicalName(s.spec.TableName, models.FormatSpreadsheet)
	}
	d, err := s.adapter.ExportTable(ctx, ds, name, s.spec.SheetName, &cfg)
	if err != nil {
		return nil, err
	}
	s.exported(models.FormatSpreadsheet, d)
	return d, nil
}

func (s *Shell) exportReport(ctx context.Context, name string) (*export.Download, error) {
	item, err := s.ReportItem()
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = s.logicalName(s.spec.ID, models.FormatReport)
	}
	d, err := s.adapter.ExportReport(ctx, export.Report{
		Title:       s.spec.Title,
		GeneratedAt: time.Now(),
		Items:       []export.ReportItem{item},
	}, name)
	if err != nil {
		return nil, err
	}
	s.exported(models.FormatReport, d)
	return d, nil
}

// logicalName appends the selected variant when the panel has a selector,
// e.g. renewable_map_2022.
func (s *Shell) logicalName(base string, format models.ExportFormat) string {
	if base == "" {
		base = s.spec.ID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.spec.Variants) > 1 {
		return export.FileName(base, s.variant, format)
	}
	return export.FileName(base, "", format)
}

func (s *Shell) exported(format models.ExportFormat, d *export.Download) {
	s.mu.Lock()
	e := s.eventLocked(EventExported)
	s.mu.Unlock()
	e.Format = format
	e.FileName = d.FileName

	s.logger.Printf("panel %s: exported %s", s.spec.ID, d.FileName)
	s.events.emit(e)
}

// renderLocked draws the given configuration onto the surface.
func (s *Shell) renderLocked(cfg models.DisplayConfig, variant string, theme render.Theme) (*render.ChartHandle, error) {
	ds, ok := s.spec.Variant(variant)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
	return s.draw(ds, cfg, theme)
}

func (s *Shell) eventLocked(t EventType) Event {
	return Event{
		Type:       t,
		PanelID:    s.spec.ID,
		Variant:    s.variant,
		Theme:      s.theme.Name,
		Fullscreen: s.fullscreen,
		Time:       time.Now(),
	}
}

func (s *Shell) renderedEventLocked(h *render.ChartHandle) Event {
	e := s.eventLocked(EventRendered)
	if h != nil {
		e.HandleID = h.ID()
	}
	return e
}
