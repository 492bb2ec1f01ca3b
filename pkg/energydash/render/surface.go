// Package render draws datasets as charts onto owned pixel surfaces.
//
// A Surface is the drawing target of one panel. A Renderer binds at most one
// live ChartHandle to its surface at a time; re-rendering releases the
// previous handle first. Bar, line and choropleth charts are drawn with
// gonum/plot, pie charts with go-chart.
package render

import (
	"errors"
	"image"
	"image/draw"
	"sync"
)

var (
	// ErrSurfaceBusy indicates a surface already holds a live chart binding.
	ErrSurfaceBusy = errors.New("surface already has a live chart")
	// ErrUnsupportedKind indicates a chart kind no backend can draw.
	ErrUnsupportedKind = errors.New("unsupported chart kind")
	// ErrHandleReleased indicates a handle whose binding was destroyed.
	ErrHandleReleased = errors.New("chart handle released")
	// ErrDrawFailed indicates a charting backend that panicked while drawing.
	ErrDrawFailed = errors.New("chart drawing failed")
)

// Surface is an owned RGBA pixel buffer a chart can be bound to.
type Surface struct {
	mu      sync.Mutex
	img     *image.RGBA
	mounted bool
	bound   *ChartHandle
}

// NewSurface allocates an unmounted surface of the given size in pixels.
func NewSurface(width, height int) *Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Mount makes the surface available for rendering.
func (s *Surface) Mount() {
	s.mu.Lock()
	s.mounted = true
	s.mu.Unlock()
}

// Unmount destroys any live binding and clears the pixels.
func (s *Surface) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = false
	s.bound = nil
	s.clearLocked()
}

// Mounted reports whether the surface accepts renders.
func (s *Surface) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

// Size returns the surface dimensions in pixels.
func (s *Surface) Size() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize reallocates the pixel buffer. A live binding no longer matches the
// new geometry and is destroyed; the owner re-renders.
func (s *Surface) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
	s.bound = nil
}

// LiveBindings returns 1 when a chart is bound, else 0.
func (s *Surface) LiveBindings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound != nil {
		return 1
	}
	return 0
}

// bind attaches h and copies its pixels onto the surface.
func (s *Surface) bind(h *ChartHandle, pixels *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return errors.New("surface is not mounted")
	}
	if s.bound != nil {
		return ErrSurfaceBusy
	}
	s.clearLocked()
	draw.Draw(s.img, s.img.Bounds(), pixels, pixels.Bounds().Min, draw.Src)
	s.bound = h
	return nil
}

// unbind releases h if it is the live binding. It reports whether anything
// was released.
func (s *Surface) unbind(h *ChartHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound != h {
		return false
	}
	s.bound = nil
	s.clearLocked()
	return true
}

func (s *Surface) isBound(h *ChartHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound == h
}

// snapshot copies the pixels if h is the live binding.
func (s *Surface) snapshot(h *ChartHandle) *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound != h {
		return nil
	}
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

func (s *Surface) clearLocked() {
	for i := range s.img.Pix {
		s.img.Pix[i] = 0
	}
}
