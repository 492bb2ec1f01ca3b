package parser

import (
	"testing"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"github.com/xuri/excelize/v2"
)

func TestResolveRelativePath(t *testing.T) {
	tests := []struct {
		target   string
		baseDir  string
		expected string
	}{
		{"../charts/chart1.xml", "xl/drawings", "xl/charts/chart1.xml"},
		{"../drawings/drawing1.xml", "xl/worksheets", "xl/drawings/drawing1.xml"},
		{"/xl/worksheets/sheet1.xml", "xl", "xl/worksheets/sheet1.xml"},
		{"/drawing1.xml", "xl/drawings", "xl/drawings/drawing1.xml"},
		{"worksheets/sheet1.xml", "xl", "xl/worksheets/sheet1.xml"},
	}

	for _, tt := range tests {
		result := resolveRelativePath(tt.target, tt.baseDir)
		if result != tt.expected {
			t.Errorf("resolveRelativePath(%q, %q) = %q, expected %q",
				tt.target, tt.baseDir, result, tt.expected)
		}
	}
}

func TestRelsPath(t *testing.T) {
	if got := relsPath("xl/drawings/drawing1.xml"); got != "xl/drawings/_rels/drawing1.xml.rels" {
		t.Errorf("relsPath = %q", got)
	}
}

func TestParseChartXML(t *testing.T) {
	data := []byte(`<c:chartSpace xmlns:c="http://schemas.openxmlformats.org/drawingml/2006/chart" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
<c:chart>
  <c:title><c:tx><c:rich><a:p><a:r><a:t>Refinery </a:t></a:r><a:r><a:t>Utilisation</a:t></a:r></a:p></c:rich></c:tx></c:title>
  <c:plotArea>
    <c:layout/>
    <c:barChart>
      <c:barDir val="col"/>
      <c:grouping val="stacked"/>
      <c:ser>
        <c:tx><c:strRef><c:f>'Refinery'!$B$1</c:f><c:strCache><c:pt idx="0"><c:v>Utilisation</c:v></c:pt></c:strCache></c:strRef></c:tx>
        <c:cat><c:strRef><c:f>'Refinery'!$A$2:$A$5</c:f></c:strRef></c:cat>
        <c:val><c:numRef><c:f>'Refinery'!$B$2:$B$5</c:f></c:numRef></c:val>
      </c:ser>
    </c:barChart>
    <c:catAx/>
    <c:valAx>
      <c:scaling><c:max val="110"/><c:min val="0"/></c:scaling>
      <c:title><c:tx><c:rich><a:p><a:r><a:t>%</a:t></a:r></a:p></c:rich></c:tx></c:title>
    </c:valAx>
  </c:plotArea>
</c:chart>
</c:chartSpace>`)

	chart, err := parseChartXML(data)
	if err != nil {
		t.Fatalf("parseChartXML failed: %v", err)
	}
	if chart.ChartType != "ColumnStacked" {
		t.Errorf("ChartType = %q, want ColumnStacked", chart.ChartType)
	}
	if chart.Title != "Refinery Utilisation" {
		t.Errorf("Title = %q", chart.Title)
	}
	if chart.YAxisTitle != "%" {
		t.Errorf("YAxisTitle = %q", chart.YAxisTitle)
	}
	if len(chart.YAxisRange) != 2 || chart.YAxisRange[0] != 0 || chart.YAxisRange[1] != 110 {
		t.Errorf("YAxisRange = %v, want [0 110]", chart.YAxisRange)
	}
	want := models.ChartSeries{
		Name:      "Utilisation",
		NameRange: "'Refinery'!$B$1",
		XRange:    "'Refinery'!$A$2:$A$5",
		YRange:    "'Refinery'!$B$2:$B$5",
	}
	if len(chart.Series) != 1 || chart.Series[0] != want {
		t.Errorf("Series = %+v, want [%+v]", chart.Series, want)
	}
}

func TestChartTypeName(t *testing.T) {
	tests := []struct {
		base     string
		barDir   string
		grouping string
		expected string
	}{
		{"Bar", "col", "clustered", "Column"},
		{"Bar", "bar", "stacked", "BarStacked"},
		{"Bar", "col", "percentStacked", "ColumnPercentStacked"},
		{"Line", "", "standard", "Line"},
		{"Pie", "", "", "Pie"},
	}
	for _, tt := range tests {
		g := plotGroup{BarDir: valAttr{tt.barDir}, Grouping: valAttr{tt.grouping}}
		if got := chartTypeName(tt.base, g); got != tt.expected {
			t.Errorf("chartTypeName(%q, %q, %q) = %q, want %q", tt.base, tt.barDir, tt.grouping, got, tt.expected)
		}
	}
}

func TestExtractChartsAndPrintAreas(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	f.SetSheetRow(sheet, "A1", &[]interface{}{"Year", "Production"})
	f.SetSheetRow(sheet, "A2", &[]interface{}{"2020", 100})
	f.SetSheetRow(sheet, "A3", &[]interface{}{"2021", 200})

	max := 300.0
	if err := f.AddChart(sheet, "D2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       "Sheet1!$B$1",
			Categories: "Sheet1!$A$2:$A$3",
			Values:     "Sheet1!$B$2:$B$3",
		}},
		Title: []excelize.RichTextRun{{Text: "Coal Production"}},
		YAxis: excelize.ChartAxis{Maximum: &max},
	}); err != nil {
		t.Fatalf("AddChart failed: %v", err)
	}
	if err := f.SetDefinedName(&excelize.DefinedName{
		Name:     PrintAreaName,
		RefersTo: AbsoluteRange(sheet, models.PrintArea{R1: 1, C1: 1, R2: 3, C2: 2}),
		Scope:    sheet,
	}); err != nil {
		t.Fatalf("SetDefinedName failed: %v", err)
	}

	f2, path := saveAndOpen(t, f)

	charts, err := ExtractCharts(path)
	if err != nil {
		t.Fatalf("ExtractCharts failed: %v", err)
	}
	got := charts[sheet]
	if len(got) != 1 {
		t.Fatalf("expected 1 chart on %s, got %d", sheet, len(got))
	}
	if got[0].ChartType != "Column" {
		t.Errorf("ChartType = %q, want Column", got[0].ChartType)
	}
	if got[0].Title != "Coal Production" {
		t.Errorf("Title = %q", got[0].Title)
	}
	if len(got[0].Series) != 1 || got[0].Series[0].YRange != "Sheet1!$B$2:$B$3" {
		t.Errorf("Series = %+v", got[0].Series)
	}

	areas, err := ExtractPrintAreas(f2)
	if err != nil {
		t.Fatalf("ExtractPrintAreas failed: %v", err)
	}
	want := models.PrintArea{R1: 1, C1: 1, R2: 3, C2: 2}
	if len(areas[sheet]) != 1 || areas[sheet][0] != want {
		t.Errorf("print areas = %v, want [%v]", areas[sheet], want)
	}
}

func TestParsePrintAreaReference(t *testing.T) {
	tests := []struct {
		ref       string
		wantSheet string
		wantAreas int
	}{
		{"'Coal & Lignite'!$A$1:$C$12", "Coal & Lignite", 1},
		{"Sheet1!$A$1:$B$2,Sheet1!$D$1:$E$2", "Sheet1", 2},
		{"'It''s'!$A$1:$B$2", "It's", 1},
		{"garbage", "", 0},
	}
	for _, tt := range tests {
		sheet, areas := parsePrintAreaReference(tt.ref)
		if sheet != tt.wantSheet || len(areas) != tt.wantAreas {
			t.Errorf("parsePrintAreaReference(%q) = %q, %d areas; want %q, %d",
				tt.ref, sheet, len(areas), tt.wantSheet, tt.wantAreas)
		}
	}
}
