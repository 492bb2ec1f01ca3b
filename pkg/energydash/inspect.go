package energydash

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"github.com/energyconsortium/energydash-go/pkg/energydash/parser"
	"github.com/xuri/excelize/v2"
)

// Inspect describes an exported workbook: its cells, table candidates and,
// unless the mode is light, its native charts and print areas.
func Inspect(path string, opts InspectOptions) (*models.WorkbookData, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := make(map[string]models.SheetData)
	for _, sheetName := range f.GetSheetList() {
		rows, err := parser.ExtractCells(f, sheetName, opts.ShouldIncludeLinks())
		if err != nil {
			rows = nil
		}
		tables, err := parser.DetectTables(f, sheetName, parser.DefaultTableParams())
		if err != nil {
			tables = nil
		}
		sheets[sheetName] = models.SheetData{
			Rows:            rows,
			TableCandidates: tables,
		}
	}

	if opts.Mode != InspectLight {
		chartData, err := parser.ExtractCharts(path)
		if err == nil {
			for sheetName, charts := range chartData {
				if sheet, ok := sheets[sheetName]; ok {
					for i := range charts {
						resolveSeriesNames(f, charts[i].Series)
					}
					sheet.Charts = charts
					sheets[sheetName] = sheet
				}
			}
		}

		printAreas, err := parser.ExtractPrintAreas(f)
		if err == nil {
			for sheetName, areas := range printAreas {
				if sheet, ok := sheets[sheetName]; ok {
					sheet.PrintAreas = areas
					sheets[sheetName] = sheet
				}
			}
		}
	}

	return &models.WorkbookData{
		BookName: filepath.Base(path),
		Sheets:   sheets,
	}, nil
}

// ReadDataset recovers the dataset of an exported workbook. An empty sheet
// name reads the first sheet.
func ReadDataset(path, sheet string) (*models.Dataset, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in %s", sheet, filepath.Base(path))
	}
	return parser.ReadDataset(f, sheet)
}

// PrintAreaViews cuts every print area of wb out of its sheet, in sheet
// name order.
func PrintAreaViews(wb *models.WorkbookData) []models.PrintAreaView {
	names := make([]string, 0, len(wb.Sheets))
	for name := range wb.Sheets {
		names = append(names, name)
	}
	sort.Strings(names)

	var views []models.PrintAreaView
	for _, name := range names {
		sheet := wb.Sheets[name]
		for _, area := range sheet.PrintAreas {
			views = append(views, printAreaView(wb.BookName, name, sheet, area))
		}
	}
	return views
}

func printAreaView(bookName, sheetName string, sheet models.SheetData, area models.PrintArea) models.PrintAreaView {
	view := models.PrintAreaView{
		BookName:  bookName,
		SheetName: sheetName,
		Area:      area,
	}

	for _, row := range sheet.Rows {
		if row.R < area.R1 || row.R > area.R2 {
			continue
		}
		cells := make(map[string]interface{})
		for col, v := range row.C {
			if c, err := strconv.Atoi(col); err == nil && c >= area.C1 && c <= area.C2 {
				cells[col] = v
			}
		}
		if len(cells) > 0 {
			view.Rows = append(view.Rows, models.CellRow{R: row.R, C: cells, Links: row.Links})
		}
	}

	for _, chart := range sheet.Charts {
		if chartReadsArea(chart, sheetName, area) {
			view.Charts = append(view.Charts, chart)
		}
	}

	for _, ref := range sheet.TableCandidates {
		if r, ok := parseRange(ref); ok && overlaps(r, area) {
			view.TableCandidates = append(view.TableCandidates, ref)
		}
	}
	return view
}

// chartReadsArea reports whether any series value range lies in area.
func chartReadsArea(chart models.Chart, sheetName string, area models.PrintArea) bool {
	for _, s := range chart.Series {
		i := strings.LastIndex(s.YRange, "!")
		if i < 0 {
			continue
		}
		sheet, _, ok := splitReference(s.YRange)
		if !ok || sheet != sheetName {
			continue
		}
		if r, ok := parseRange(strings.ReplaceAll(s.YRange[i+1:], "$", "")); ok && overlaps(r, area) {
			return true
		}
	}
	return false
}

// parseRange parses "A1:C12" or a single cell into a PrintArea.
func parseRange(ref string) (models.PrintArea, bool) {
	from, to, found := strings.Cut(ref, ":")
	if !found {
		to = from
	}
	c1, r1, err := excelize.CellNameToCoordinates(from)
	if err != nil {
		return models.PrintArea{}, false
	}
	c2, r2, err := excelize.CellNameToCoordinates(to)
	if err != nil {
		return models.PrintArea{}, false
	}
	return models.PrintArea{R1: min(r1, r2), C1: min(c1, c2), R2: max(r1, r2), C2: max(c1, c2)}, true
}

func overlaps(a, b models.PrintArea) bool {
	return a.R1 <= b.R2 && b.R1 <= a.R2 && a.C1 <= b.C2 && b.C1 <= a.C2
}

func openWorkbook(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return f, nil
}

// resolveSeriesNames fills names that were stored only as a cell reference.
func resolveSeriesNames(f *excelize.File, series []models.ChartSeries) {
	for i := range series {
		if series[i].Name != "" || series[i].NameRange == "" {
			continue
		}
		sheet, cell, ok := splitReference(series[i].NameRange)
		if !ok {
			continue
		}
		if v, err := f.GetCellValue(sheet, cell); err == nil {
			series[i].Name = v
		}
	}
}

// splitReference splits 'Sheet Name'!$B$1 into the sheet and a plain cell.
func splitReference(ref string) (sheet, cell string, ok bool) {
	i := strings.LastIndex(ref, "!")
	if i <= 0 {
		return "", "", false
	}
	sheet = ref[:i]
	if len(sheet) >= 2 && strings.HasPrefix(sheet, "'") && strings.HasSuffix(sheet, "'") {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}
	cell = strings.ReplaceAll(ref[i+1:], "$", "")
	if j := strings.Index(cell, ":"); j >= 0 {
		cell = cell[:j]
	}
	return sheet, cell, cell != ""
}
