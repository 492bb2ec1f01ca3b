// Package energydash assembles the panels of the energy dashboard into
// navigable pages, and re-imports exported workbooks.
package energydash

import (
	"io"
	"log"

	"github.com/energyconsortium/energydash-go/pkg/energydash/export"
	"github.com/energyconsortium/energydash-go/pkg/energydash/panel"
	"github.com/energyconsortium/energydash-go/pkg/energydash/render"
)

// Options configures a Dashboard.
type Options struct {
	// Width and Height size every panel surface in pixels.
	Width  int
	Height int
	// FullscreenWidth and FullscreenHeight size a panel in fullscreen mode.
	FullscreenWidth  int
	FullscreenHeight int
	// Theme is the initial theme name of every panel ("light" or "dark").
	Theme string
	// Strict makes image exports without a live chart fail with
	// ErrNoChartHandle instead of producing nothing.
	Strict bool
	// EmbedChart adds a native chart to spreadsheet exports.
	EmbedChart bool
	// Logger receives lifecycle and export messages. Nil discards them.
	Logger *log.Logger
}

// DefaultOptions returns light 800x450 panels without strict exports.
func DefaultOptions() Options {
	def := panel.DefaultOptions()
	return Options{
		Width:            def.Width,
		Height:           def.Height,
		FullscreenWidth:  def.FullscreenWidth,
		FullscreenHeight: def.FullscreenHeight,
		Theme:            def.Theme.Name,
	}
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return o.Logger
}

func (o Options) exportOptions() export.Options {
	return export.Options{Strict: o.Strict, EmbedChart: o.EmbedChart}
}

func (o Options) shellOptions() (panel.Options, error) {
	theme, err := render.ThemeByName(o.Theme)
	if err != nil {
		return panel.Options{}, err
	}
	return panel.Options{
		Width:            o.Width,
		Height:           o.Height,
		FullscreenWidth:  o.FullscreenWidth,
		FullscreenHeight: o.FullscreenHeight,
		Theme:            theme,
		Export:           o.exportOptions(),
		Logger:           o.logger(),
	}, nil
}

// InspectMode selects how much of a workbook Inspect reads.
type InspectMode string

const (
	// InspectLight reads cells and table candidates only.
	InspectLight InspectMode = "light"
	// InspectStandard also reads native charts and print areas.
	InspectStandard InspectMode = "standard"
	// InspectVerbose also reads cell hyperlinks.
	InspectVerbose InspectMode = "verbose"
)

// InspectOptions configures Inspect.
type InspectOptions struct {
	Mode InspectMode
	// IncludeLinks overrides the mode default for cell hyperlinks.
	IncludeLinks *bool
}

// DefaultInspectOptions returns standard inspection options.
func DefaultInspectOptions() InspectOptions {
	return InspectOptions{Mode: InspectStandard}
}

// ShouldIncludeLinks returns whether to include cell hyperlinks.
func (o InspectOptions) ShouldIncludeLinks() bool {
	if o.IncludeLinks != nil {
		return *o.IncludeLinks
	}
	return o.Mode == InspectVerbose
}
