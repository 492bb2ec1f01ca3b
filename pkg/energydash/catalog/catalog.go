// Package catalog declares the pages and literal datasets of the energy
// dashboard. The data lives in an embedded YAML document and is converted to
// page specs through models.NewDataset, so a malformed table fails at load.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"gopkg.in/yaml.v3"
)

//go:embed data/energy.yaml
var energyYAML []byte

// DefaultVariantKey names the only variant of panels without a selector.
const DefaultVariantKey = "default"

type document struct {
	TileSets map[string][]models.Tile `yaml:"tile_sets"`
	Pages    []pageDoc                `yaml:"pages"`
}

type pageDoc struct {
	ID     string     `yaml:"id"`
	Title  string     `yaml:"title"`
	Path   string     `yaml:"path"`
	Panels []panelDoc `yaml:"panels"`
}

type panelDoc struct {
	ID       string               `yaml:"id"`
	Title    string               `yaml:"title"`
	Subtitle string               `yaml:"subtitle"`
	Source   string               `yaml:"source"`
	Note     string               `yaml:"note"`
	Display  models.DisplayConfig `yaml:"display"`
	TileSet  string               `yaml:"tile_set"`

	CategoryLabel string `yaml:"category_label"`
	Unit          string `yaml:"unit"`

	// A panel declares either one table inline or a list of variants.
	Categories     []string     `yaml:"categories"`
	CategoryColors []string     `yaml:"category_colors"`
	Series         []seriesDoc  `yaml:"series"`
	Variants       []variantDoc `yaml:"variants"`
	DefaultVariant string       `yaml:"default_variant"`

	ImageName   string `yaml:"image_name"`
	TableName   string `yaml:"table_name"`
	SheetName   string `yaml:"sheet_name"`
	ThemeToggle bool   `yaml:"theme_toggle"`
	Fullscreen  bool   `yaml:"fullscreen"`
}

type variantDoc struct {
	Key            string      `yaml:"key"`
	Categories     []string    `yaml:"categories"`
	CategoryColors []string    `yaml:"category_colors"`
	Series         []seriesDoc `yaml:"series"`
}

type seriesDoc struct {
	Name   string    `yaml:"name"`
	Color  string    `yaml:"color"`
	Values []float64 `yaml:"values"`
}

// Load returns the built-in pages.
func Load() ([]models.PageSpec, error) {
	return Parse(energyYAML)
}

// MustLoad is like Load but panics on error.
func MustLoad() []models.PageSpec {
	pages, err := Load()
	if err != nil {
		panic(err)
	}
	return pages
}

// LoadFile reads a catalog in the built-in format from path.
func LoadFile(path string) ([]models.PageSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog and validates every panel.
func Parse(data []byte) ([]models.PageSpec, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(doc.Pages) == 0 {
		return nil, errors.New("catalog declares no pages")
	}

	pageIDs := make(map[string]bool)
	panelIDs := make(map[string]string)
	pages := make([]models.PageSpec, 0, len(doc.Pages))
	for _, pd := range doc.Pages {
		if pd.ID == "" {
			return nil, errors.New("catalog page without id")
		}
		if pageIDs[pd.ID] {
			return nil, fmt.Errorf("duplicate page %q", pd.ID)
		}
		pageIDs[pd.ID] = true

		page := models.PageSpec{ID: pd.ID, Title: pd.Title, Path: pd.Path}
		for _, d := range pd.Panels {
			if other, ok := panelIDs[d.ID]; ok {
				return nil, fmt.Errorf("duplicate panel %q on pages %s and %s", d.ID, other, pd.ID)
			}
			panelIDs[d.ID] = pd.ID

			spec, err := d.spec(doc.TileSets)
			if err != nil {
				return nil, fmt.Errorf("page %s: %w", pd.ID, err)
			}
			page.Panels = append(page.Panels, spec)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (d panelDoc) spec(tileSets map[string][]models.Tile) (models.PanelSpec, error) {
	spec := models.PanelSpec{
		ID:             d.ID,
		Title:          d.Title,
		Subtitle:       d.Subtitle,
		Source:         d.Source,
		Note:           d.Note,
		Display:        d.Display,
		DefaultVariant: d.DefaultVariant,
		ImageName:      d.ImageName,
		TableName:      d.TableName,
		SheetName:      d.SheetName,
		ThemeToggle:    d.ThemeToggle,
		Fullscreen:     d.Fullscreen,
	}
	if d.TileSet != "" {
		tiles, ok := tileSets[d.TileSet]
		if !ok {
			return spec, fmt.Errorf("panel %s: unknown tile set %q", d.ID, d.TileSet)
		}
		spec.Display.Tiles = append([]models.Tile(nil), tiles...)
	}

	variants := d.Variants
	if len(variants) == 0 {
		variants = []variantDoc{{
			Key:            DefaultVariantKey,
			Categories:     d.Categories,
			CategoryColors: d.CategoryColors,
			Series:         d.Series,
		}}
	}
	for _, v := range variants {
		ds, err := v.dataset(d.CategoryLabel, d.Unit)
		if err != nil {
			return spec, fmt.Errorf("panel %s variant %s: %w", d.ID, v.Key, err)
		}
		spec.Variants = append(spec.Variants, models.Variant{Key: v.Key, Dataset: ds})
	}
	return spec, spec.Validate()
}

func (v variantDoc) dataset(label, unit string) (*models.Dataset, error) {
	series := make([]models.Series, len(v.Series))
	for i, s := range v.Series {
		series[i] = models.Series{Name: s.Name, Values: s.Values, Color: s.Color}
	}
	opts := []models.DatasetOption{models.WithUnit(unit)}
	if len(v.CategoryColors) > 0 {
		opts = append(opts, models.WithCategoryColors(v.CategoryColors...))
	}
	return models.NewDataset(label, v.Categories, series, opts...)
}

// Find returns the panel with the given id and the page declaring it.
func Find(pages []models.PageSpec, panelID string) (models.PanelSpec, models.PageSpec, bool) {
	for _, page := range pages {
		for _, p := range page.Panels {
			if p.ID == panelID {
				return p, page, true
			}
		}
	}
	return models.PanelSpec{}, models.PageSpec{}, false
}
