package parser

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// TableDetectionParams holds parameters for table detection.
type TableDetectionParams struct {
	DensityMin       float64
	MinNonemptyCells int
}

// DefaultTableParams returns default table detection parameters.
func DefaultTableParams() TableDetectionParams {
	return TableDetectionParams{
		DensityMin:       0.04,
		MinNonemptyCells: 3,
	}
}

// DetectTables returns the cell range (e.g. "A1:D10") of the data block of a
// sheet when it is dense enough to be a table.
func DetectTables(f *excelize.File, sheetName string, params TableDetectionParams) ([]string, error) {
	rows, err := rawRows(f, sheetName)
	if err != nil {
		return nil, err
	}

	b, ok := findDataBounds(rows)
	if !ok {
		return nil, nil
	}

	total := (b.maxRow - b.minRow + 1) * (b.maxCol - b.minCol + 1)
	filled := countNonEmptyCells(rows, b)
	if filled < params.MinNonemptyCells {
		return nil, nil
	}
	if float64(filled)/float64(total) < params.DensityMin {
		return nil, nil
	}

	startCell, _ := excelize.CoordinatesToCellName(b.minCol+1, b.minRow+1)
	endCell, _ := excelize.CoordinatesToCellName(b.maxCol+1, b.maxRow+1)
	return []string{fmt.Sprintf("%s:%s", startCell, endCell)}, nil
}

// bounds is a zero-based inclusive cell rectangle.
type bounds struct {
	minRow, maxRow, minCol, maxCol int
}

// findDataBounds finds the bounding box of non-empty cells.
func findDataBounds(rows [][]string) (bounds, bool) {
	b := bounds{minRow: -1, maxRow: -1, minCol: -1, maxCol: -1}
	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell == "" {
				continue
			}
			if b.minRow < 0 {
				b.minRow = rowIdx
			}
			b.maxRow = rowIdx
			if b.minCol < 0 || colIdx < b.minCol {
				b.minCol = colIdx
			}
			if colIdx > b.maxCol {
				b.maxCol = colIdx
			}
		}
	}
	return b, b.minRow >= 0
}

func countNonEmptyCells(rows [][]string, b bounds) int {
	count := 0
	for rowIdx := b.minRow; rowIdx <= b.maxRow && rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		for colIdx := b.minCol; colIdx <= b.maxCol && colIdx < len(row); colIdx++ {
			if row[colIdx] != "" {
				count++
			}
		}
	}
	return count
}
