package models

// CellRow is one non-empty row of an exported sheet.
type CellRow struct {
	// R is the row index (1-based).
	R int `json:"r"`
	// C maps column index (string) to cell value.
	C map[string]interface{} `json:"c"`
	// Links maps column index to hyperlink URL (optional).
	Links map[string]string `json:"links,omitempty"`
}

// ChartSeries is the range metadata of one native chart series.
type ChartSeries struct {
	// Name is the series display name.
	Name string `json:"name"`
	// NameRange is the range reference for the series name.
	NameRange string `json:"name_range,omitempty"`
	// XRange is the range reference for category values.
	XRange string `json:"x_range,omitempty"`
	// YRange is the range reference for series values.
	YRange string `json:"y_range,omitempty"`
}

// Chart describes a native chart embedded in an exported workbook.
type Chart struct {
	// Name is the drawing object name.
	Name string `json:"name"`
	// ChartType is the chart type (e.g., Column, Line, Pie).
	ChartType string `json:"chart_type"`
	// Title is the chart title.
	Title string `json:"title,omitempty"`
	// YAxisTitle is the value axis title.
	YAxisTitle string `json:"y_axis_title,omitempty"`
	// YAxisRange is the value axis range [min, max] when fixed.
	YAxisRange []float64 `json:"y_axis_range,omitempty"`
	// Series is the list of series plotted by the chart.
	Series []ChartSeries `json:"series"`
	// L is the left offset in pixels.
	L int `json:"l"`
	// T is the top offset in pixels.
	T int `json:"t"`
	// W is the chart width in pixels.
	W *int `json:"w,omitempty"`
	// H is the chart height in pixels.
	H *int `json:"h,omitempty"`
}

// PrintArea is a rectangle of 1-based inclusive cell coordinates.
type PrintArea struct {
	R1 int `json:"r1"`
	C1 int `json:"c1"`
	R2 int `json:"r2"`
	C2 int `json:"c2"`
}

// SheetData describes one re-imported sheet.
type SheetData struct {
	// Rows contains the non-empty rows.
	Rows []CellRow `json:"rows,omitempty"`
	// Charts contains the native charts anchored on the sheet.
	Charts []Chart `json:"charts,omitempty"`
	// TableCandidates contains cell ranges likely holding a table.
	TableCandidates []string `json:"table_candidates,omitempty"`
	// PrintAreas contains the defined print areas.
	PrintAreas []PrintArea `json:"print_areas,omitempty"`
}

// WorkbookData is the description of an exported workbook.
type WorkbookData struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// Sheets maps sheet name to SheetData.
	Sheets map[string]SheetData `json:"sheets"`
}

// PrintAreaView is the part of a sheet inside one print area.
type PrintAreaView struct {
	BookName  string    `json:"book_name"`
	SheetName string    `json:"sheet_name"`
	Area      PrintArea `json:"area"`
	// Rows holds the cells inside the area, keyed as in SheetData.
	Rows   []CellRow `json:"rows,omitempty"`
	Charts []Chart   `json:"charts,omitempty"`
	// TableCandidates lists the candidates intersecting the area.
	TableCandidates []string `json:"table_candidates,omitempty"`
}
