// Package export turns panel datasets and rendered charts into downloads:
// PNG images, one-sheet xlsx workbooks, PDF page reports and zip archives.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"github.com/energyconsortium/energydash-go/pkg/energydash/render"
)

// ErrNoChartHandle indicates an image export without a live chart.
var ErrNoChartHandle = errors.New("no live chart to export")

// Options configures an Adapter.
type Options struct {
	// Strict turns image exports without a live chart into ErrNoChartHandle
	// instead of a silent no-op.
	Strict bool
	// EmbedChart adds a native chart next to the exported table.
	EmbedChart bool
}

// Adapter serializes datasets and chart pixels.
type Adapter struct {
	opts   Options
	logger *log.Logger
}

// NewAdapter returns an adapter. A nil logger discards output.
func NewAdapter(opts Options, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Adapter{opts: opts, logger: logger}
}

// Options returns the adapter configuration.
func (a *Adapter) Options() Options { return a.opts }

// Result is delivered on the completion channel of an async export.
type Result struct {
	Download *Download
	Err      error
}

// ExportImage encodes the pixels currently bound to h as PNG. It never
// re-renders. Without a live handle it returns (nil, nil), or
// ErrNoChartHandle when the adapter is strict.
func (a *Adapter) ExportImage(ctx context.Context, h *render.ChartHandle, fileName string) (*Download, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img := h.Snapshot()
	if img == nil {
		if a.opts.Strict {
			return nil, ErrNoChartHandle
		}
		a.logger.Printf("export %s: no live chart, nothing to download", fileName)
		return nil, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return &Download{
		FileName:    WithExtension(fileName, models.FormatImage),
		ContentType: models.FormatImage.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

// ExportTable writes ds as a one-sheet workbook. cfg is used for the
// embedded chart when the adapter embeds charts; it may be nil.
func (a *Adapter) ExportTable(ctx context.Context, ds *models.Dataset, fileName, sheetName string, cfg *models.DisplayConfig) (*Download, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := WorkbookOptions{SheetName: sheetName, Title: fileName}
	if a.opts.EmbedChart {
		opts.Chart = cfg
	}
	f, err := BuildWorkbook(ds, opts)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return &Download{
		FileName:    WithExtension(fileName, models.FormatSpreadsheet),
		ContentType: models.FormatSpreadsheet.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

// ExportTableAsync runs ExportTable on a goroutine. The channel receives
// exactly one Result and is then closed.
func (a *Adapter) ExportTableAsync(ctx context.Context, ds *models.Dataset, fileName, sheetName string, cfg *models.DisplayConfig) <-chan Result {
	done := make(chan Result, 1)
	go func() {
		defer close(done)
		d, err := a.ExportTable(ctx, ds, fileName, sheetName, cfg)
		done <- Result{Download: d, Err: err}
	}()
	return done
}

// ExportReport renders a page report as PDF.
func (a *Adapter) ExportReport(ctx context.Context, r Report, fileName string) (*Download, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := BuildReport(r)
	if err != nil {
		return nil, err
	}
	return &Download{
		FileName:    WithExtension(fileName, models.FormatReport),
		ContentType: models.FormatReport.ContentType(),
		Data:        data,
	}, nil
}
