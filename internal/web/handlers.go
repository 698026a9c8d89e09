package web

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/packcat/internal/logging"
	"github.com/JonMunkholm/packcat/internal/web/templates"
)

// DefaultImportListLimit is how many imports the dashboard and API list.
const DefaultImportListLimit = 50

// handleDashboard renders the recent imports page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	imports, err := s.service.ListImports(r.Context(), DefaultImportListLimit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.render(w, r, templates.Dashboard(imports))
}

// handleImportPage renders one import with its packs.
func (s *Server) handleImportPage(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "importID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	imp, err := s.service.GetImport(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	packs, err := s.service.ListPacks(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.render(w, r, templates.ImportPage(*imp, packs))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"limiter": s.service.Status(),
	})
}

// handleInfer analyzes a CSV body without storing it.
func (s *Server) handleInfer(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	preview, err := s.service.AnalyzeCSV(r.Context(), data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, preview)
}

type importRequest struct {
	URL string `json:"url"`
}

// handleImport runs an import from a JSON {"url": ...} body, a form url
// field or a multipart file upload.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var req importRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, r, errors.Join(errBadRequestBody, err))
			return
		}
		s.runImport(w, r, func() (any, error) { return s.service.ImportCatalog(ctx, strings.TrimSpace(req.URL)) })

	case "multipart/form-data":
		file, header, err := r.FormFile("file")
		if err != nil {
			s.respondError(w, r, errNoFile)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.runImport(w, r, func() (any, error) { return s.service.ImportCSV(ctx, header.Filename, data) })

	default:
		source := strings.TrimSpace(r.FormValue("url"))
		if source == "" {
			s.respondError(w, r, errNoFile)
			return
		}
		s.runImport(w, r, func() (any, error) { return s.service.ImportCatalog(ctx, source) })
	}
}

func (s *Server) runImport(w http.ResponseWriter, r *http.Request, run func() (any, error)) {
	result, err := run()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, result)
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", DefaultImportListLimit)
	imports, err := s.service.ListImports(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, imports)
}

func (s *Server) handleListPacks(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "importID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	packs, err := s.service.ListPacks(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, packs)
}

func (s *Server) handleGetPack(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "packID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	pack, err := s.service.GetPack(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, pack)
}

// handleDownload downloads the packs of an import into the configured
// directory.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "importID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	result, err := s.service.DownloadPacks(r.Context(), id, "")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	logging.WithFields(r.Context(), "import_id", id).Info("download requested",
		"downloaded", result.Downloaded, "failed", result.Failed)
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleListFeatures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string][]string{"features": s.browsers.FeatureKeys()})
}

func (s *Server) handleCaniuse(w http.ResponseWriter, r *http.Request) {
	feature := chi.URLParam(r, "feature")
	browsers, err := s.browsers.SupportedBrowsers(r.Context(), feature)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"feature":  feature,
		"browsers": browsers,
	})
}

// readBody reads a raw request body up to the upload limit.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	return io.ReadAll(r.Body)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
	}
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errors.Join(errBadID, err)
	}
	return id, nil
}

// parseIntParam parses a positive integer query parameter.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
