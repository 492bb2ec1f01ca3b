package parser

import (
	"fmt"
	"strconv"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"github.com/xuri/excelize/v2"
)

// rawRows returns the sheet rows without number formatting applied, so
// numeric cells come back as the exact text stored in the workbook.
func rawRows(f *excelize.File, sheetName string) ([][]string, error) {
	return f.GetRows(sheetName, excelize.Options{RawCellValue: true})
}

// ExtractCells extracts cell data from a sheet.
// It returns a slice of CellRow containing non-empty rows.
func ExtractCells(f *excelize.File, sheetName string, includeLinks bool) ([]models.CellRow, error) {
	rows, err := rawRows(f, sheetName)
	if err != nil {
		return nil, err
	}

	var result []models.CellRow
	for rowIdx, row := range rows {
		rowNum := rowIdx + 1
		cellMap := make(map[string]interface{})
		linkMap := make(map[string]string)

		for colIdx, cellValue := range row {
			if cellValue == "" {
				continue
			}
			colStr := strconv.Itoa(colIdx + 1)
			cellMap[colStr] = parseValue(cellValue)

			if includeLinks {
				cellName, _ := excelize.CoordinatesToCellName(colIdx+1, rowNum)
				hasLink, target, err := f.GetCellHyperLink(sheetName, cellName)
				if err == nil && hasLink && target != "" {
					linkMap[colStr] = target
				}
			}
		}

		if len(cellMap) == 0 {
			continue
		}
		cellRow := models.CellRow{R: rowNum, C: cellMap}
		if len(linkMap) > 0 {
			cellRow.Links = linkMap
		}
		result = append(result, cellRow)
	}

	return result, nil
}

// parseValue returns int64 for integers, float64 for decimals, or the
// original string.
func parseValue(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// ReadDataset recovers a dataset from a sheet laid out by the spreadsheet
// export: a header row [category label, series names...] followed by one
// row per category. Values are parsed from the raw cell text, so a value
// written with full precision reads back bit-for-bit.
func ReadDataset(f *excelize.File, sheetName string) (*models.Dataset, error) {
	rows, err := rawRows(f, sheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheetName)
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("sheet %q: header needs a category column and at least one series", sheetName)
	}

	// Header text is kept verbatim: series names may carry spaces.
	series := make([]models.Series, len(header)-1)
	for i, name := range header[1:] {
		series[i] = models.Series{Name: name}
	}

	var categories []string
	for rowIdx, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rowNum := rowIdx + 2
		categories = append(categories, row[0])
		for i := range series {
			col := i + 1
			if col >= len(row) || row[col] == "" {
				cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
				return nil, fmt.Errorf("sheet %q: missing value at %s", sheetName, cell)
			}
			v, err := strconv.ParseFloat(row[col], 64)
			if err != nil {
				cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
				return nil, fmt.Errorf("sheet %q: value at %s: %w", sheetName, cell, err)
			}
			series[i].Values = append(series[i].Values, v)
		}
	}

	return models.NewDataset(header[0], categories, series)
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
