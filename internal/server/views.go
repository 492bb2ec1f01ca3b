package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"github.com/energyconsortium/energydash-go/pkg/energydash/panel"
	"github.com/energyconsortium/energydash-go/pkg/energydash/render"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// pageSummary is the JSON description of a page.
type pageSummary struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Path    string   `json:"path"`
	Panels  []string `json:"panels"`
	Report  string   `json:"report"`
	Archive string   `json:"archive"`
}

func summarizePage(p models.PageSpec) pageSummary {
	ids := make([]string, len(p.Panels))
	for i, spec := range p.Panels {
		ids[i] = spec.ID
	}
	return pageSummary{
		ID:      p.ID,
		Title:   p.Title,
		Path:    p.Path,
		Panels:  ids,
		Report:  pageURL(p.ID, "report.pdf"),
		Archive: pageURL(p.ID, "export.zip"),
	}
}

// panelDetail is the JSON description of a panel and its current state.
type panelDetail struct {
	ID         string               `json:"id"`
	Page       string               `json:"page"`
	Title      string               `json:"title"`
	Subtitle   string               `json:"subtitle,omitempty"`
	Source     string               `json:"source,omitempty"`
	Note       string               `json:"note,omitempty"`
	State      string               `json:"state"`
	Variant    string               `json:"variant"`
	Theme      string               `json:"theme"`
	Fullscreen bool                 `json:"fullscreen"`
	HandleID   string               `json:"handle_id,omitempty"`
	Controls   panel.Controls       `json:"controls"`
	Display    models.DisplayConfig `json:"display"`
	Dataset    *models.Dataset      `json:"dataset"`
	Image      string               `json:"image"`
	Table      string               `json:"table"`
}

func (s *Server) panelInfo(id string) (panelDetail, error) {
	shell, err := s.dash.Panel(id)
	if err != nil {
		return panelDetail{}, err
	}
	pageID, err := s.dash.PageOf(id)
	if err != nil {
		return panelDetail{}, err
	}
	spec := shell.Spec()
	d := panelDetail{
		ID:         spec.ID,
		Page:       pageID,
		Title:      spec.Title,
		Subtitle:   spec.Subtitle,
		Source:     spec.Source,
		Note:       spec.Note,
		State:      shell.State().String(),
		Variant:    shell.Variant(),
		Theme:      shell.Theme().Name,
		Fullscreen: shell.Fullscreen(),
		Controls:   shell.Controls(),
		Display:    shell.Config(),
		Dataset:    shell.Dataset(),
		Image:      panelURL(spec.ID, "image.png"),
		Table:      panelURL(spec.ID, "table.xlsx"),
	}
	if h := shell.Handle(); h != nil {
		d.HandleID = h.ID()
	}
	return d, nil
}

// pageView feeds templates/page.html.
type pageView struct {
	Title   string
	Nav     []navLink
	Page    pageSummary
	Panels  []panelView
	Current string
}

type navLink struct {
	Title  string
	Path   string
	Active bool
}

type panelView struct {
	ID         string
	Title      string
	Subtitle   string
	Source     string
	Note       string
	Width      int
	Height     int
	ImageURL   string
	TableURL   string
	Fullscreen string
	ThemeURL   string
	ThemeLabel string
	Controls   panel.Controls
	Variants   []variantLink
}

type variantLink struct {
	Key      string
	URL      string
	Selected bool
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	page, err := s.dash.PageByPath("/")
	if err != nil {
		s.failPage(w, err)
		return
	}
	s.renderPage(w, r, page)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.dash.Page(chi.URLParam(r, "page"))
	if err != nil {
		s.failPage(w, err)
		return
	}
	s.renderPage(w, r, page)
}

// renderPage navigates to page, applies the ?theme= and ?year= selections
// and writes the HTML.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, page models.PageSpec) {
	if err := s.dash.Navigate(r.Context(), page.ID); err != nil {
		s.failPage(w, err)
		return
	}
	shells, _ := s.dash.Panels(page.ID)

	query := r.URL.Query()
	if name := query.Get("theme"); name != "" {
		theme, err := render.ThemeByName(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, shell := range shells {
			if !shell.Spec().ThemeToggle {
				continue
			}
			if err := shell.SetTheme(theme); err != nil {
				s.failPage(w, err)
				return
			}
		}
	}
	if year := query.Get("year"); year != "" {
		matched := false
		for _, shell := range shells {
			if _, ok := shell.Spec().Variant(year); !ok {
				continue
			}
			matched = true
			if err := shell.SelectVariant(year); err != nil {
				s.failPage(w, err)
				return
			}
		}
		if !matched {
			http.Error(w, fmt.Sprintf("no panel on %s has year %q", page.ID, year), http.StatusNotFound)
			return
		}
	}

	view := pageView{
		Title:   page.Title,
		Page:    summarizePage(page),
		Current: page.ID,
	}
	for _, p := range s.dash.Pages() {
		view.Nav = append(view.Nav, navLink{Title: p.Title, Path: p.Path, Active: p.ID == page.ID})
	}
	for _, shell := range shells {
		spec := shell.Spec()
		controls := shell.Controls()
		pv := panelView{
			ID:       spec.ID,
			Title:    spec.Title,
			Subtitle: spec.Subtitle,
			Source:   spec.Source,
			Note:     spec.Note,
			ImageURL: panelURL(spec.ID, "image.png"),
			TableURL: panelURL(spec.ID, "table.xlsx"),
			Controls: controls,
		}
		if h := shell.Handle(); h != nil {
			pv.ImageURL += "?h=" + url.QueryEscape(h.ID())
		}
		if sf := shell.Surface(); sf != nil {
			pv.Width, pv.Height = sf.Size()
		}
		if controls.Fullscreen {
			pv.Fullscreen = panelURL(spec.ID, "fullscreen")
		}
		if controls.ThemeToggle {
			next := shell.Theme().Toggled().Name
			pv.ThemeURL = "?theme=" + next
			pv.ThemeLabel = next
		}
		for _, key := range controls.Variants {
			pv.Variants = append(pv.Variants, variantLink{
				Key:      key,
				URL:      "?year=" + url.QueryEscape(key),
				Selected: key == controls.SelectedVariant,
			})
		}
		view.Panels = append(view.Panels, pv)
	}

	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "page.html", view); err != nil {
		s.logger.Printf("render page %s: %v", page.ID, err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) failPage(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Printf("page failed: %v", err)
	}
	http.Error(w, err.Error(), status)
}

func panelURL(id, leaf string) string {
	return "/api/v1/panels/" + url.PathEscape(id) + "/" + leaf
}

func pageURL(id, leaf string) string {
	return "/api/v1/pages/" + url.PathEscape(id) + "/" + leaf
}
