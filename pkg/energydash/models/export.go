package models

import "fmt"

// ExportFormat selects the serialized output of an export.
type ExportFormat string

const (
	// FormatImage exports the rendered chart as PNG.
	FormatImage ExportFormat = "png"
	// FormatSpreadsheet exports the dataset as an xlsx workbook.
	FormatSpreadsheet ExportFormat = "xlsx"
	// FormatReport exports a page as a PDF document.
	FormatReport ExportFormat = "pdf"
)

// ParseExportFormat maps user input to a format.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch s {
	case "png", "image":
		return FormatImage, nil
	case "xlsx", "excel", "spreadsheet":
		return FormatSpreadsheet, nil
	case "pdf", "report":
		return FormatReport, nil
	}
	return "", fmt.Errorf("invalid export format: %s (must be png, xlsx, or pdf)", s)
}

// Extension returns the file extension including the dot.
func (f ExportFormat) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatImage:
		return "image/png"
	case FormatSpreadsheet:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatReport:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// ExportRequest is a single user export action.
type ExportRequest struct {
	// Format is the requested output.
	Format ExportFormat `json:"format"`
	// PanelID names the panel whose data or chart is exported.
	PanelID string `json:"panel_id"`
	// SuggestedFileName overrides the panel's logical name when set.
	SuggestedFileName string `json:"suggested_file_name,omitempty"`
}
