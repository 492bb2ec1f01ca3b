package models

import (
	"errors"
	"fmt"
)

// ErrNoVariants indicates a panel declared without data.
var ErrNoVariants = errors.New("panel has no dataset")

// Variant is one selectable dataset of a panel, such as a year.
type Variant struct {
	// Key identifies the variant in selectors and file names.
	Key string `json:"key"`
	// Dataset is the table rendered when the variant is selected.
	Dataset *Dataset `json:"dataset"`
}

// PanelSpec declares one chart panel: its data, display options and
// export names.
type PanelSpec struct {
	// ID is unique across the dashboard.
	ID string `json:"id"`
	// Title is the heading shown above the chart.
	Title string `json:"title"`
	// Subtitle is an optional second heading line.
	Subtitle string `json:"subtitle,omitempty"`
	// Source credits the data provider.
	Source string `json:"source,omitempty"`
	// Note is an optional footnote.
	Note string `json:"note,omitempty"`
	// Display holds the chart options.
	Display DisplayConfig `json:"display"`
	// Variants lists the selectable datasets in selector order.
	Variants []Variant `json:"variants"`
	// DefaultVariant is selected on mount; empty means the first variant.
	DefaultVariant string `json:"default_variant,omitempty"`
	// ImageName is the logical name of the PNG export.
	ImageName string `json:"image_name"`
	// TableName is the logical name of the spreadsheet export.
	TableName string `json:"table_name"`
	// SheetName names the single sheet of the spreadsheet export.
	SheetName string `json:"sheet_name"`
	// ThemeToggle shows a light/dark switch on the panel.
	ThemeToggle bool `json:"theme_toggle,omitempty"`
	// Fullscreen shows the fullscreen control.
	Fullscreen bool `json:"fullscreen,omitempty"`
}

// Validate checks the spec is renderable.
func (p PanelSpec) Validate() error {
	if p.ID == "" {
		return errors.New("panel id is empty")
	}
	if len(p.Variants) == 0 {
		return fmt.Errorf("panel %s: %w", p.ID, ErrNoVariants)
	}
	seen := make(map[string]bool, len(p.Variants))
	for _, v := range p.Variants {
		if seen[v.Key] {
			return fmt.Errorf("panel %s: duplicate variant %q", p.ID, v.Key)
		}
		seen[v.Key] = true
		if err := v.Dataset.Validate(); err != nil {
			return fmt.Errorf("panel %s variant %q: %w", p.ID, v.Key, err)
		}
	}
	if p.DefaultVariant != "" && !seen[p.DefaultVariant] {
		return fmt.Errorf("panel %s: default variant %q not declared", p.ID, p.DefaultVariant)
	}
	if err := p.Display.Validate(); err != nil {
		return fmt.Errorf("panel %s: %w", p.ID, err)
	}
	return nil
}

// Variant returns the dataset of the given key.
func (p PanelSpec) Variant(key string) (*Dataset, bool) {
	for _, v := range p.Variants {
		if v.Key == key {
			return v.Dataset, true
		}
	}
	return nil, false
}

// VariantKeys returns the selector options in order.
func (p PanelSpec) VariantKeys() []string {
	keys := make([]string, len(p.Variants))
	for i, v := range p.Variants {
		keys[i] = v.Key
	}
	return keys
}

// InitialVariant returns the key selected on mount.
func (p PanelSpec) InitialVariant() string {
	if p.DefaultVariant != "" {
		return p.DefaultVariant
	}
	if len(p.Variants) > 0 {
		return p.Variants[0].Key
	}
	return ""
}

// PageSpec groups the panels mounted together by one route.
type PageSpec struct {
	// ID is the route key.
	ID string `json:"id"`
	// Title is the page heading and navigation label.
	Title string `json:"title"`
	// Path is the HTTP route of the page.
	Path string `json:"path"`
	// Panels lists the panels in layout order.
	Panels []PanelSpec `json:"panels"`
}
