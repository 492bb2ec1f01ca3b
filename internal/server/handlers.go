package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/energyconsortium/energydash-go/pkg/energydash"
	"github.com/energyconsortium/energydash-go/pkg/energydash/export"
	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
	"github.com/energyconsortium/energydash-go/pkg/energydash/render"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":  "ok",
			"pages":   len(s.dash.Pages()),
			"clients": s.hub.ClientCount(),
		},
	})
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	pages := s.dash.Pages()
	out := make([]pageSummary, len(pages))
	for i, p := range pages {
		out[i] = summarizePage(p)
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: out})
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.dash.Page(chi.URLParam(r, "page"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: summarizePage(page)})
}

func (s *Server) handleGetPanel(w http.ResponseWriter, r *http.Request) {
	info, err := s.panelInfo(chi.URLParam(r, "panel"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: info})
}

func (s *Server) handlePanelImage(w http.ResponseWriter, r *http.Request) {
	s.exportPanel(w, r, models.FormatImage)
}

func (s *Server) handlePanelTable(w http.ResponseWriter, r *http.Request) {
	s.exportPanel(w, r, models.FormatSpreadsheet)
}

// exportPanel mounts the panel before exporting unless the request asks
// for ?mount=false, which exports the panel as it currently is.
func (s *Server) exportPanel(w http.ResponseWriter, r *http.Request, format models.ExportFormat) {
	exportFn := s.dash.Export
	if v := r.URL.Query().Get("mount"); v != "" {
		mount, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid mount value %q", v))
			return
		}
		if !mount {
			exportFn = s.dash.ExportCurrent
		}
	}
	dl, err := exportFn(r.Context(), models.ExportRequest{
		PanelID: chi.URLParam(r, "panel"),
		Format:  format,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.download(w, r, dl)
}

func (s *Server) handlePageReport(w http.ResponseWriter, r *http.Request) {
	dl, err := s.dash.ReportPage(r.Context(), chi.URLParam(r, "page"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.download(w, r, dl)
}

func (s *Server) handlePageArchive(w http.ResponseWriter, r *http.Request) {
	dl, err := s.dash.ExportPage(r.Context(), chi.URLParam(r, "page"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.download(w, r, dl)
}

func (s *Server) handleToggleFullscreen(w http.ResponseWriter, r *http.Request) {
	shell, err := s.dash.Panel(chi.URLParam(r, "panel"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if !shell.Spec().Fullscreen {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("panel %s has no fullscreen control", shell.ID()))
		return
	}
	if _, err := shell.ToggleFullscreen(); err != nil {
		s.fail(w, err)
		return
	}
	s.respondPanel(w, shell.ID())
}

func (s *Server) handleSelectVariant(w http.ResponseWriter, r *http.Request) {
	shell, err := s.dash.Panel(chi.URLParam(r, "panel"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := shell.SelectVariant(chi.URLParam(r, "key")); err != nil {
		s.fail(w, err)
		return
	}
	s.respondPanel(w, shell.ID())
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	shell, err := s.dash.Panel(chi.URLParam(r, "panel"))
	if err != nil {
		s.fail(w, err)
		return
	}
	theme, err := render.ThemeByName(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := shell.SetTheme(theme); err != nil {
		s.fail(w, err)
		return
	}
	s.respondPanel(w, shell.ID())
}

func (s *Server) respondPanel(w http.ResponseWriter, id string) {
	info, err := s.panelInfo(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: info})
}

// download writes d as an attachment. A nil download means the panel had
// no live chart and strict exports are off.
func (s *Server) download(w http.ResponseWriter, r *http.Request, d *export.Download) {
	if d == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	sink := responseSink(w)
	if err := sink.Save(r.Context(), d); err != nil {
		s.logger.Printf("write %s: %v", d.FileName, err)
	}
}

// responseSink delivers downloads as an HTTP attachment.
func responseSink(w http.ResponseWriter) export.Sink {
	return export.SinkFunc(func(_ context.Context, d *export.Download) error {
		w.Header().Set("Content-Type", d.ContentType)
		w.Header().Set("Content-Disposition", contentDisposition(d.FileName))
		w.Header().Set("Content-Length", fmt.Sprint(len(d.Data)))
		w.WriteHeader(http.StatusOK)
		_, err := w.Write(d.Data)
		return err
	})
}

// contentDisposition keeps non-ASCII names intact through RFC 5987 encoding.
func contentDisposition(name string) string {
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", asciiFallback(name), url.PathEscape(name))
}

func asciiFallback(name string) string {
	out := []rune(name)
	for i, c := range out {
		if c > 0x7e || c < 0x20 || c == '"' || c == '\\' {
			out[i] = '_'
		}
	}
	return string(out)
}

// fail maps dashboard errors to HTTP status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Printf("request failed: %v", err)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, energydash.ErrUnknownPage),
		errors.Is(err, energydash.ErrUnknownPanel),
		errors.Is(err, energydash.ErrUnknownVariant):
		return http.StatusNotFound
	case errors.Is(err, energydash.ErrNoChartHandle),
		errors.Is(err, energydash.ErrSurfaceBusy):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
