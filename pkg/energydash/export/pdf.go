package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// maxTableColumns is the width of the maroto grid.
const maxTableColumns = 12

var mutedColor = &props.Color{Red: 100, Green: 116, Blue: 139}

// Report is a page-level PDF: one section per panel.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Items       []ReportItem
}

// ReportItem is one panel of a report.
type ReportItem struct {
	Title    string
	Subtitle string
	Source   string
	Note     string
	// Image is the PNG of the rendered chart; sections without one only
	// carry the table.
	Image   []byte
	Dataset *models.Dataset
}

// BuildReport renders r as a PDF document.
func BuildReport(r Report) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithDefaultFont(&props.Font{
			Family: fontfamily.Arial,
			Size:   10,
		}).
		Build()

	m := maroto.New(cfg)
	addReportHeader(m, r)
	for _, item := range r.Items {
		addReportItem(m, item)
	}

	document, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return document.GetBytes(), nil
}

func addReportHeader(m core.Maroto, r Report) {
	m.AddRow(14,
		col.New(12).Add(
			text.New(r.Title, props.Text{
				Size:  18,
				Style: fontstyle.Bold,
				Align: align.Center,
				Color: &props.Color{Red: 59, Green: 130, Blue: 246},
			}),
		),
	)
	generated := r.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	m.AddRow(8,
		col.New(12).Add(
			text.New("Generated: "+generated.Format("2006-01-02 15:04"), props.Text{
				Size:  9,
				Align: align.Center,
				Color: mutedColor,
			}),
		),
	)
	m.AddRow(5)
}

func addReportItem(m core.Maroto, item ReportItem) {
	m.AddRow(9,
		col.New(12).Add(
			text.New(item.Title, props.Text{
				Size:  13,
				Style: fontstyle.Bold,
			}),
		),
	)
	if item.Subtitle != "" {
		m.AddRow(6, col.New(12).Add(text.New(item.Subtitle, props.Text{Size: 9, Color: mutedColor})))
	}
	if len(item.Image) > 0 {
		m.AddRow(90, col.New(12).Add(image.NewFromBytes(item.Image, extension.Png)))
	}
	if item.Dataset != nil {
		addReportTable(m, item.Dataset)
	}
	if item.Source != "" {
		m.AddRow(6, col.New(12).Add(text.New("Source: "+item.Source, props.Text{Size: 7, Style: fontstyle.Italic, Color: mutedColor})))
	}
	if item.Note != "" {
		m.AddRow(6, col.New(12).Add(text.New(item.Note, props.Text{Size: 7, Style: fontstyle.Italic, Color: mutedColor})))
	}
	m.AddRow(6)
}

// addReportTable writes the dataset as one or more tables. Series that do
// not fit beside the category column continue in a further table.
func addReportTable(m core.Maroto, ds *models.Dataset) {
	names := ds.SeriesNames()
	categories := ds.Categories()
	for b, block := range reportTableBlocks(len(names)) {
		if b > 0 {
			m.AddRow(4)
		}
		width := maxTableColumns / (len(block) + 1)

		header := []core.Col{col.New(width).Add(
			text.New(ds.CategoryLabel(), props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center}),
		)}
		for _, j := range block {
			header = append(header, col.New(width).Add(
				text.New(names[j], props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center}),
			))
		}
		m.AddRow(7, header...)

		for i, category := range categories {
			row := ds.Row(i)
			cells := []core.Col{col.New(width).Add(text.New(category, props.Text{Size: 7}))}
			for _, j := range block {
				cells = append(cells, col.New(width).Add(
					text.New(strconv.FormatFloat(row[j], 'f', -1, 64), props.Text{Size: 7, Align: align.Right}),
				))
			}
			m.AddRow(5, cells...)
		}
	}
}

// reportTableBlocks groups series indexes so every group fits the grid next
// to the category column.
func reportTableBlocks(series int) [][]int {
	per := maxTableColumns - 1
	var blocks [][]int
	for start := 0; start < series; start += per {
		block := make([]int, 0, per)
		for j := start; j < min(start+per, series); j++ {
			block = append(block, j)
		}
		blocks = append(blocks, block)
	}
	return blocks
}
