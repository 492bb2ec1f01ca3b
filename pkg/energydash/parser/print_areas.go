package parser

import (
	"strings"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"github.com/xuri/excelize/v2"
)

// PrintAreaName is the defined name Excel uses for print areas.
const PrintAreaName = "_xlnm.Print_Area"

// ExtractPrintAreas returns the print areas of a workbook keyed by sheet name.
func ExtractPrintAreas(f *excelize.File) (map[string][]models.PrintArea, error) {
	result := make(map[string][]models.PrintArea)
	for _, dn := range f.GetDefinedName() {
		if !strings.EqualFold(dn.Name, PrintAreaName) {
			continue
		}
		sheetName, areas := parsePrintAreaReference(dn.RefersTo)
		if sheetName != "" && len(areas) > 0 {
			result[sheetName] = append(result[sheetName], areas...)
		}
	}
	return result, nil
}

// parsePrintAreaReference parses 'Sheet Name'!$A$1:$D$10[,...].
func parsePrintAreaReference(ref string) (string, []models.PrintArea) {
	var sheetName string
	var areas []models.PrintArea
	for _, part := range strings.Split(ref, ",") {
		idx := strings.LastIndex(part, "!")
		if idx < 0 {
			continue
		}
		sheet := strings.Trim(strings.TrimSpace(part[:idx]), "'")
		if sheetName == "" {
			sheetName = strings.ReplaceAll(sheet, "''", "'")
		}
		if area, ok := parseRangeToArea(part[idx+1:]); ok {
			areas = append(areas, area)
		}
	}
	return sheetName, areas
}

// parseRangeToArea parses a range such as $A$1:$D$10.
func parseRangeToArea(rangeStr string) (models.PrintArea, bool) {
	start, end, found := strings.Cut(strings.ReplaceAll(strings.TrimSpace(rangeStr), "$", ""), ":")
	if !found {
		return models.PrintArea{}, false
	}
	c1, r1, err := excelize.CellNameToCoordinates(start)
	if err != nil {
		return models.PrintArea{}, false
	}
	c2, r2, err := excelize.CellNameToCoordinates(end)
	if err != nil {
		return models.PrintArea{}, false
	}
	return models.PrintArea{R1: r1, C1: c1, R2: r2, C2: c2}, true
}

// AbsoluteRange formats a sheet range as an absolute reference, quoting the
// sheet name the way Excel does.
func AbsoluteRange(sheetName string, area models.PrintArea) string {
	start, _ := excelize.CoordinatesToCellName(area.C1, area.R1, true)
	end, _ := excelize.CoordinatesToCellName(area.C2, area.R2, true)
	return QuoteSheet(sheetName) + "!" + start + ":" + end
}

// QuoteSheet quotes a sheet name for use in a formula reference.
func QuoteSheet(sheetName string) string {
	return "'" + strings.ReplaceAll(sheetName, "'", "''") + "'"
}
