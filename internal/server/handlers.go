package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/KaramelBytes/tabimport/internal/analysis"
	"github.com/KaramelBytes/tabimport/internal/export"
	"github.com/KaramelBytes/tabimport/internal/importer"
	"github.com/KaramelBytes/tabimport/internal/logging"
	"github.com/KaramelBytes/tabimport/internal/plotting"
)

// TableInfo is the listing shape of a stored table.
type TableInfo struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Source   string    `json:"source,omitempty"`
	Rows     int       `json:"rows"`
	Columns  []string  `json:"columns"`
	Invalid  int       `json:"invalid"`
	Created  time.Time `json:"created"`
	Warnings []string  `json:"warnings,omitempty"`
}

func infoOf(e *Entry) TableInfo {
	t := e.Result.Table
	cols := make([]string, t.NumCols())
	for i, c := range t.Columns {
		cols[i] = c.Name
	}
	return TableInfo{
		ID:       e.ID,
		Name:     t.Name,
		Source:   e.Source,
		Rows:     t.NumRows(),
		Columns:  cols,
		Invalid:  t.InvalidCount(),
		Created:  e.Created,
		Warnings: e.Warnings,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"status": "ok", "tables": s.store.Len()})
}

// optionsFromQuery applies per-request overrides to the server defaults.
//
// Recognized parameters: sep, whitespace, ignore, header, numeric, locale, name.
func optionsFromQuery(base importer.Options, q url.Values) (importer.Options, error) {
	opt := base
	if v := q.Get("sep"); v != "" {
		opt.Separator = importer.ParseSeparator(v)
	}
	if q.Has("whitespace") {
		ws, err := importer.ParseWhitespace(q.Get("whitespace"))
		if err != nil {
			return opt, err
		}
		opt.Whitespace = ws
	}
	if v := q.Get("ignore"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opt, fmt.Errorf("invalid ignore: %q", v)
		}
		opt.IgnoredLines = n
	}
	if v := q.Get("header"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opt, fmt.Errorf("invalid header: %q", v)
		}
		opt.FirstRowNamesColumns = b
	}
	if v := q.Get("numeric"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opt, fmt.Errorf("invalid numeric: %q", v)
		}
		opt.ConvertToNumeric = b
	}
	if v := q.Get("locale"); v != "" {
		opt.NumericLocale = v
	}
	if v := q.Get("name"); v != "" {
		opt.TableName = v
	}
	return opt, opt.Validate()
}

// handleImport reads the request body, or the "file" part of a multipart
// form, as one delimited text file.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	opt, err := optionsFromQuery(s.cfg.Options, r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var body io.Reader = r.Body
	source := ""
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
			writeError(w, r, uploadStatus(err), fmt.Errorf("parse form: %w", err))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, http.StatusBadRequest, errors.New("no file provided"))
			return
		}
		defer file.Close()
		body, source = file, header.Filename
	}
	if opt.TableName == "" && source != "" {
		opt.TableName = strings.TrimSuffix(source, filepath.Ext(source))
	}

	im, err := importer.New(opt)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	log := logging.FromContext(r.Context())
	res, err := im.WithLogger(log).ImportContext(r.Context(), body)
	if err != nil {
		writeError(w, r, uploadStatus(err), err)
		return
	}
	e := s.store.Put(source, res)
	logging.WithFields(r.Context(), "table_id", e.ID).Info("table imported",
		"name", res.Table.Name,
		"rows", res.Table.NumRows(),
		"columns", res.Table.NumCols(),
		"warnings", len(e.Warnings),
	)
	w.Header().Set("Location", "/tables/"+e.ID)
	writeJSON(w, r, http.StatusCreated, infoOf(e))
}

func uploadStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries := s.store.List()
	out := make([]TableInfo, len(entries))
	for i, e := range entries {
		out[i] = infoOf(e)
	}
	writeJSON(w, r, http.StatusOK, out)
}

// entry resolves the {id} route parameter, writing 404 when it is unknown.
func (s *Server) entry(w http.ResponseWriter, r *http.Request) (*Entry, bool) {
	e, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, err)
		return nil, false
	}
	return e, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, export.ToJSON(e.Result.Table))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	opt := analysis.DefaultOptions()
	if v := r.URL.Query().Get("rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid rows: %q", v))
			return
		}
		opt.SampleRows = n
	}
	rep := analysis.Summarize(e.Result.Table, opt, e.Warnings...)
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = io.WriteString(w, rep.Markdown())
}

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	format := strings.ToLower(chi.URLParam(r, "format"))
	width, height, err := plotSize(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	var buf bytes.Buffer
	if err := plotting.Render(e.Result.Table, &buf, format, width, height); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, plotting.ErrUnsupported) {
			status = http.StatusNotFound
		}
		writeError(w, r, status, err)
		return
	}
	w.Header().Set("Content-Type", imageType(format))
	_, _ = buf.WriteTo(w)
}

// plotSize reads the width and height query parameters. Missing values
// select the plotting defaults.
func plotSize(q url.Values) (float64, float64, error) {
	var size [2]float64
	for i, key := range []string{"width", "height"} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %s %q", plotting.ErrBadSize, key, v)
		}
		size[i] = f
	}
	return plotting.CheckSize(size[0], size[1])
}

func imageType(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "svg":
		return "image/svg+xml"
	case "pdf":
		return "application/pdf"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "tif", "tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	t := e.Result.Table
	var (
		buf         bytes.Buffer
		err         error
		contentType string
	)
	format := strings.ToLower(chi.URLParam(r, "format"))
	switch format {
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = export.WriteXLSX(&buf, t)
	case "parquet":
		contentType = "application/vnd.apache.parquet"
		err = export.WriteParquet(&buf, t)
	case "json":
		contentType = "application/json"
		err = export.WriteJSON(&buf, t)
	default:
		writeError(w, r, http.StatusNotFound, fmt.Errorf("unknown export format: %s", format))
		return
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, export.ErrNoColumns) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, r, status, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", t.Name+"."+format))
	_, _ = buf.WriteTo(w)
}
