package render

import (
	"image"
	"image/png"
	"io"
	"time"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"github.com/google/uuid"
)

// ChartHandle references a chart bound to a surface. It stays live until
// destroyed, the surface is unmounted or resized, or its renderer renders
// again.
type ChartHandle struct {
	id         uuid.UUID
	kind       models.ChartKind
	surface    *Surface
	renderedAt time.Time
}

func newHandle(kind models.ChartKind, s *Surface) *ChartHandle {
	return &ChartHandle{
		id:         uuid.New(),
		kind:       kind,
		surface:    s,
		renderedAt: time.Now(),
	}
}

// ID returns the unique handle id.
func (h *ChartHandle) ID() string { return h.id.String() }

// Kind returns the chart kind drawn.
func (h *ChartHandle) Kind() models.ChartKind { return h.kind }

// RenderedAt returns when the chart was drawn.
func (h *ChartHandle) RenderedAt() time.Time { return h.renderedAt }

// Live reports whether the handle is still bound to its surface.
func (h *ChartHandle) Live() bool {
	return h != nil && h.surface.isBound(h)
}

// Snapshot returns a copy of the surface pixels as currently displayed, or
// nil when the handle is no longer live. It never re-renders.
func (h *ChartHandle) Snapshot() *image.RGBA {
	if h == nil {
		return nil
	}
	return h.surface.snapshot(h)
}

// EncodePNG writes the current pixels as PNG.
func (h *ChartHandle) EncodePNG(w io.Writer) error {
	img := h.Snapshot()
	if img == nil {
		return ErrHandleReleased
	}
	return png.Encode(w, img)
}

// Destroy releases the binding and clears the surface. Calling it more than
// once is harmless.
func (h *ChartHandle) Destroy() {
	if h == nil {
		return
	}
	h.surface.unbind(h)
}
