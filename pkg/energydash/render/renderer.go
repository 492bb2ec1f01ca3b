package render

import (
	"fmt"
	"image"
	"sync"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
)

// Renderer keeps one chart bound to its surface for the lifetime of a panel.
type Renderer struct {
	mu      sync.Mutex
	surface *Surface
	handle  *ChartHandle
}

// NewRenderer returns a renderer drawing onto s.
func NewRenderer(s *Surface) *Renderer {
	return &Renderer{surface: s}
}

// Surface returns the drawing target.
func (r *Renderer) Surface() *Surface { return r.surface }

// Render draws ds with cfg and binds the result to the surface, releasing
// the previous handle first. On an unmounted surface it does nothing and
// returns a nil handle and nil error; the caller renders again once mounted.
func (r *Renderer) Render(ds *models.Dataset, cfg models.DisplayConfig, theme Theme) (*ChartHandle, error) {
	if !cfg.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, cfg.Kind)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.surface.Mounted() {
		return nil, nil
	}

	width, height := r.surface.Size()
	pixels, err := drawRecovered(ds, cfg, theme, width, height)
	if err != nil {
		return nil, err
	}

	r.releaseLocked()
	h := newHandle(cfg.Kind, r.surface)
	if err := r.surface.bind(h, pixels); err != nil {
		return nil, err
	}
	r.handle = h
	return h, nil
}

// Handle returns the live handle, or nil when nothing is bound.
func (r *Renderer) Handle() *ChartHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handle != nil && !r.handle.Live() {
		r.handle = nil
	}
	return r.handle
}

// Release destroys the live handle, if any.
func (r *Renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseLocked()
}

func (r *Renderer) releaseLocked() {
	if r.handle != nil {
		r.handle.Destroy()
		r.handle = nil
	}
}

// drawRecovered turns a panic inside a charting backend into an error, so a
// bad input fails one render instead of the caller.
func drawRecovered(ds *models.Dataset, cfg models.DisplayConfig, theme Theme, width, height int) (img *image.RGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("%w: %s chart: %v", ErrDrawFailed, cfg.Kind, r)
		}
	}()
	return Draw(ds, cfg, theme, width, height)
}

// Draw renders ds into a new image of the given size without binding it
// to any surface.
func Draw(ds *models.Dataset, cfg models.DisplayConfig, theme Theme, width, height int) (*image.RGBA, error) {
	switch cfg.Kind {
	case models.KindBar:
		return drawBars(ds, cfg, theme, width, height)
	case models.KindLine:
		return drawLines(ds, cfg, theme, width, height)
	case models.KindPie:
		return drawPie(ds, cfg, theme, width, height)
	case models.KindChoropleth:
		return drawChoropleth(ds, cfg, theme, width, height)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, cfg.Kind)
}
