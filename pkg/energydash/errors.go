package energydash

import (
	"errors"
	"fmt"

	"github.com/energyconsortium/energydash-go/pkg/energydash/export"
	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"github.com/energyconsortium/energydash-go/pkg/energydash/panel"
	"github.com/energyconsortium/energydash-go/pkg/energydash/render"
)

var (
	// ErrUnknownPage indicates a route that no page declares.
	ErrUnknownPage = errors.New("unknown page")
	// ErrUnknownPanel indicates a panel id that no page declares.
	ErrUnknownPanel = errors.New("unknown panel")
	// ErrFileNotFound indicates the workbook to inspect does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrInvalidFormat indicates the input file is not a valid xlsx workbook.
	ErrInvalidFormat = errors.New("invalid xlsx format")

	ErrUnknownVariant  = panel.ErrUnknownVariant
	ErrUnsupportedKind = render.ErrUnsupportedKind
	ErrSurfaceBusy     = render.ErrSurfaceBusy
	ErrNonFiniteValue  = models.ErrNonFiniteValue
	ErrUnnamedSeries   = models.ErrUnnamedSeries
	ErrDrawFailed      = render.ErrDrawFailed
	ErrNoChartHandle   = export.ErrNoChartHandle
)

// DatasetShapeError reports a series whose length differs from the
// categories.
type DatasetShapeError = models.DatasetShapeError

// ExportError represents a failed export of one panel.
type ExportError struct {
	PanelID string
	Format  models.ExportFormat
	Err     error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s of panel %q: %v", e.Format, e.PanelID, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// NewExportError creates a new ExportError.
func NewExportError(panelID string, format models.ExportFormat, err error) *ExportError {
	return &ExportError{
		PanelID: panelID,
		Format:  format,
		Err:     err,
	}
}
