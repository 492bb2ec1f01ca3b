package parser

import (
	"archive/zip"
	"encoding/xml"
	"sort"
	"strconv"
	"strings"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
)

// ChartTypeMap maps OOXML plot elements to chart type names.
var ChartTypeMap = map[string]string{
	"lineChart":      "Line",
	"line3DChart":    "3DLine",
	"barChart":       "Bar",
	"bar3DChart":     "3DBar",
	"areaChart":      "Area",
	"area3DChart":    "3DArea",
	"pieChart":       "Pie",
	"pie3DChart":     "3DPie",
	"doughnutChart":  "Doughnut",
	"scatterChart":   "XYScatter",
	"bubbleChart":    "Bubble",
	"radarChart":     "Radar",
	"surfaceChart":   "Surface",
	"surface3DChart": "3DSurface",
	"stockChart":     "Stock",
	"ofPieChart":     "PieOfPie",
}

type valAttr struct {
	Val string `xml:"val,attr"`
}

type richText struct {
	Paragraphs []struct {
		Runs []struct {
			T string `xml:"t"`
		} `xml:"r"`
	} `xml:"tx>rich>p"`
}

func (rt *richText) text() string {
	if rt == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range rt.Paragraphs {
		for _, r := range p.Runs {
			sb.WriteString(r.T)
		}
	}
	return strings.TrimSpace(sb.String())
}

type dataRef struct {
	StrRef string   `xml:"strRef>f"`
	NumRef string   `xml:"numRef>f"`
	Cached []string `xml:"strRef>strCache>pt>v"`
}

func (d dataRef) formula() string {
	if d.StrRef != "" {
		return strings.TrimSpace(d.StrRef)
	}
	return strings.TrimSpace(d.NumRef)
}

type chartSer struct {
	Tx  dataRef `xml:"tx"`
	Cat dataRef `xml:"cat"`
	Val dataRef `xml:"val"`
}

type plotGroup struct {
	XMLName  xml.Name
	BarDir   valAttr    `xml:"barDir"`
	Grouping valAttr    `xml:"grouping"`
	Series   []chartSer `xml:"ser"`
}

type valAxis struct {
	Title   *richText `xml:"title"`
	Scaling struct {
		Min *valAttr `xml:"min"`
		Max *valAttr `xml:"max"`
	} `xml:"scaling"`
}

type chartSpace struct {
	Chart struct {
		Title    *richText `xml:"title"`
		PlotArea struct {
			ValAx  []valAxis   `xml:"valAx"`
			Groups []plotGroup `xml:",any"`
		} `xml:"plotArea"`
	} `xml:"chart"`
}

type namedAttr struct {
	Name string `xml:"name,attr"`
}

type idAttr struct {
	ID string `xml:"id,attr"`
}

type anchorFrame struct {
	NvPr namedAttr `xml:"nvGraphicFramePr>cNvPr"`
	Xfrm struct {
		Off struct {
			X int64 `xml:"x,attr"`
			Y int64 `xml:"y,attr"`
		} `xml:"off"`
		Ext struct {
			Cx int64 `xml:"cx,attr"`
			Cy int64 `xml:"cy,attr"`
		} `xml:"ext"`
	} `xml:"xfrm"`
	Chart idAttr `xml:"graphic>graphicData>chart"`
}

type drawingPart struct {
	TwoCell []struct {
		Frame *anchorFrame `xml:"graphicFrame"`
	} `xml:"twoCellAnchor"`
	OneCell []struct {
		Frame *anchorFrame `xml:"graphicFrame"`
	} `xml:"oneCellAnchor"`
}

func (d drawingPart) frames() []*anchorFrame {
	var out []*anchorFrame
	for _, a := range d.TwoCell {
		if a.Frame != nil && a.Frame.Chart.ID != "" {
			out = append(out, a.Frame)
		}
	}
	for _, a := range d.OneCell {
		if a.Frame != nil && a.Frame.Chart.ID != "" {
			out = append(out, a.Frame)
		}
	}
	return out
}

// ExtractCharts returns the native charts of an xlsx file keyed by sheet name.
func ExtractCharts(xlsxPath string) (map[string][]models.Chart, error) {
	r, err := zip.OpenReader(xlsxPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	result := make(map[string][]models.Chart)
	for sheetName, sheetPart := range sheetParts(&r.Reader) {
		for _, drawing := range sortedValues(relatedParts(&r.Reader, sheetPart, "drawing")) {
			result[sheetName] = append(result[sheetName], chartsInDrawing(&r.Reader, drawing)...)
		}
	}
	return result, nil
}

func chartsInDrawing(r *zip.Reader, drawing string) []models.Chart {
	var dp drawingPart
	if !readXMLPart(r, drawing, &dp) {
		return nil
	}
	chartParts := relatedParts(r, drawing, "chart")

	var charts []models.Chart
	for _, frame := range dp.frames() {
		part, ok := chartParts[frame.Chart.ID]
		if !ok {
			continue
		}
		data, err := readZipFile(r, part)
		if err != nil || data == nil {
			continue
		}
		chart, err := parseChartXML(data)
		if err != nil {
			continue
		}
		w := EMUToPixels(frame.Xfrm.Ext.Cx)
		h := EMUToPixels(frame.Xfrm.Ext.Cy)
		chart.Name = frame.NvPr.Name
		chart.L = EMUToPixels(frame.Xfrm.Off.X)
		chart.T = EMUToPixels(frame.Xfrm.Off.Y)
		if w > 0 && h > 0 {
			chart.W, chart.H = &w, &h
		}
		charts = append(charts, *chart)
	}
	return charts
}

// parseChartXML reads type, title, series ranges and value axis bounds from
// a chart part.
func parseChartXML(data []byte) (*models.Chart, error) {
	var cs chartSpace
	if err := xml.Unmarshal(data, &cs); err != nil {
		return nil, err
	}

	chart := &models.Chart{
		ChartType: "unknown",
		Title:     cs.Chart.Title.text(),
	}
	for _, g := range cs.Chart.PlotArea.Groups {
		ct, ok := ChartTypeMap[g.XMLName.Local]
		if !ok {
			continue
		}
		if chart.ChartType == "unknown" {
			chart.ChartType = chartTypeName(ct, g)
		}
		for _, s := range g.Series {
			ser := models.ChartSeries{
				NameRange: s.Tx.formula(),
				XRange:    s.Cat.formula(),
				YRange:    s.Val.formula(),
			}
			if len(s.Tx.Cached) > 0 {
				ser.Name = strings.TrimSpace(s.Tx.Cached[0])
			}
			chart.Series = append(chart.Series, ser)
		}
	}

	if len(cs.Chart.PlotArea.ValAx) > 0 {
		ax := cs.Chart.PlotArea.ValAx[0]
		chart.YAxisTitle = ax.Title.text()
		if ax.Scaling.Min != nil && ax.Scaling.Max != nil {
			lo, errLo := strconv.ParseFloat(ax.Scaling.Min.Val, 64)
			hi, errHi := strconv.ParseFloat(ax.Scaling.Max.Val, 64)
			if errLo == nil && errHi == nil {
				chart.YAxisRange = []float64{lo, hi}
			}
		}
	}
	return chart, nil
}

// chartTypeName refines bar charts into Column/Bar and their stacked forms.
func chartTypeName(base string, g plotGroup) string {
	if base != "Bar" && base != "3DBar" {
		return base
	}
	name := base
	if g.BarDir.Val == "col" {
		name = strings.Replace(base, "Bar", "Column", 1)
	}
	switch g.Grouping.Val {
	case "stacked":
		name += "Stacked"
	case "percentStacked":
		name += "PercentStacked"
	}
	return name
}

func sortedValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
