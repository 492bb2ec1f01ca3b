package export

import (
	"fmt"
	"time"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"github.com/energyconsortium/energydash-go/pkg/energydash/parser"
	"github.com/energyconsortium/energydash-go/pkg/energydash/render"
	"github.com/xuri/excelize/v2"
)

// WorkbookOptions controls the layout of a spreadsheet export.
type WorkbookOptions struct {
	// SheetName names the single sheet; it is sanitized to Excel rules.
	SheetName string
	// Title is stored in the document properties and used as chart title.
	Title string
	// Chart, when set, embeds a native chart mirroring the panel.
	Chart *models.DisplayConfig
}

// BuildWorkbook lays out ds as a one-sheet workbook: a header row
// [category label, series names...] and one row per category in display
// order. Numeric cells carry the full float64 value.
func BuildWorkbook(ds *models.Dataset, opts WorkbookOptions) (*excelize.File, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	sheet := SanitizeSheetName(opts.SheetName)

	f := excelize.NewFile()
	if sheet != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	if err := writeTable(f, sheet, ds); err != nil {
		f.Close()
		return nil, err
	}
	if err := styleTable(f, sheet, ds); err != nil {
		f.Close()
		return nil, err
	}

	area := tableArea(ds)
	if err := f.SetDefinedName(&excelize.DefinedName{
		Name:     parser.PrintAreaName,
		RefersTo: parser.AbsoluteRange(sheet, area),
		Scope:    sheet,
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set print area: %w", err)
	}

	if opts.Chart != nil && ds.Len() > 0 {
		if chart, ok := nativeChart(sheet, ds, *opts.Chart, opts.Title); ok {
			anchor, _ := excelize.CoordinatesToCellName(area.C2+2, 2)
			if err := f.AddChart(sheet, anchor, chart); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to add chart: %w", err)
			}
		}
	}

	f.SetDocProps(&excelize.DocProperties{
		Created:     time.Now().Format(time.RFC3339),
		Creator:     "energydash",
		Description: "Exported from the energy dashboard",
		Title:       opts.Title,
		Subject:     sheet,
	})
	return f, nil
}

// tableArea returns the cell rectangle of the header plus data rows.
func tableArea(ds *models.Dataset) models.PrintArea {
	return models.PrintArea{R1: 1, C1: 1, R2: ds.Len() + 1, C2: len(ds.SeriesNames()) + 1}
}

func writeTable(f *excelize.File, sheet string, ds *models.Dataset) error {
	header := []interface{}{ds.CategoryLabel()}
	for _, name := range ds.SeriesNames() {
		header = append(header, name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, category := range ds.Categories() {
		row := []interface{}{category}
		for _, v := range ds.Row(i) {
			row = append(row, v)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return nil
}

func styleTable(f *excelize.File, sheet string, ds *models.Dataset) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "FFFFFF", Style: 1},
			{Type: "top", Color: "FFFFFF", Style: 1},
			{Type: "bottom", Color: "FFFFFF", Style: 1},
			{Type: "right", Color: "FFFFFF", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	dataStyle, err := f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "D9D9D9", Style: 1},
			{Type: "top", Color: "D9D9D9", Style: 1},
			{Type: "bottom", Color: "D9D9D9", Style: 1},
			{Type: "right", Color: "D9D9D9", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create data style: %w", err)
	}

	area := tableArea(ds)
	lastCol, _ := excelize.ColumnNumberToName(area.C2)
	if err := f.SetCellStyle(sheet, "A1", fmt.Sprintf("%s1", lastCol), headerStyle); err != nil {
		return err
	}
	if area.R2 > 1 {
		if err := f.SetCellStyle(sheet, "A2", fmt.Sprintf("%s%d", lastCol, area.R2), dataStyle); err != nil {
			return err
		}
	}
	f.SetRowHeight(sheet, 1, 25)

	titles := append([]string{ds.CategoryLabel()}, ds.SeriesNames()...)
	for i, title := range titles {
		width := float64(len(title)) * 1.3
		if width < 12 {
			width = 12
		}
		if width > 50 {
			width = 50
		}
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, colName, colName, width)
	}

	if err := f.AutoFilter(sheet, fmt.Sprintf("A1:%s%d", lastCol, area.R2), []excelize.AutoFilterOptions{}); err != nil {
		return fmt.Errorf("failed to add filter: %w", err)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// nativeChart maps a display config onto an excelize chart reading its
// ranges from the table. Choropleths have no native counterpart.
func nativeChart(sheet string, ds *models.Dataset, cfg models.DisplayConfig, title string) (*excelize.Chart, bool) {
	var typ excelize.ChartType
	switch cfg.Kind {
	case models.KindBar:
		switch {
		case cfg.Horizontal && cfg.Stacked:
			typ = excelize.BarStacked
		case cfg.Horizontal:
			typ = excelize.Bar
		case cfg.Stacked:
			typ = excelize.ColStacked
		default:
			typ = excelize.Col
		}
	case models.KindLine:
		typ = excelize.Line
		if cfg.Fill {
			typ = excelize.Area
		}
	case models.KindPie:
		typ = excelize.Pie
	default:
		return nil, false
	}

	if cfg.Title != "" {
		title = cfg.Title
	}
	lastRow := ds.Len() + 1
	ref := func(col, r1, r2 int) string {
		return parser.AbsoluteRange(sheet, models.PrintArea{R1: r1, C1: col, R2: r2, C2: col})
	}
	categories := ref(1, 2, lastRow)

	names := ds.SeriesNames()
	series := ds.Series()
	if cfg.Kind == models.KindPie {
		names, series = names[:1], series[:1]
	}
	chart := &excelize.Chart{
		Type:   typ,
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: legendPosition(cfg)},
	}
	for i := range names {
		col := i + 2
		nameCell, _ := excelize.CoordinatesToCellName(col, 1, true)
		s := excelize.ChartSeries{
			Name:       parser.QuoteSheet(sheet) + "!" + nameCell,
			Categories: categories,
			Values:     ref(col, 2, lastRow),
		}
		if c, err := render.ParseColor(series[i].Color); err == nil && cfg.Kind != models.KindPie {
			s.Fill = excelize.Fill{Type: "pattern", Color: []string{hexRGB(c.R, c.G, c.B)}, Pattern: 1}
		}
		chart.Series = append(chart.Series, s)
	}
	if cfg.Kind != models.KindPie {
		chart.YAxis = excelize.ChartAxis{Maximum: cfg.Max, Minimum: cfg.Min}
		if cfg.YTitle != "" {
			chart.YAxis.Title = []excelize.RichTextRun{{Text: cfg.YTitle}}
		}
		if cfg.XTitle != "" {
			chart.XAxis.Title = []excelize.RichTextRun{{Text: cfg.XTitle}}
		}
	}
	return chart, true
}

func legendPosition(cfg models.DisplayConfig) string {
	switch cfg.LegendOrDefault() {
	case models.LegendNone:
		return "none"
	case models.LegendBottom:
		return "bottom"
	}
	return "top"
}

func hexRGB(r, g, b uint8) string {
	return fmt.Sprintf("%02X%02X%02X", r, g, b)
}
