// Package api exposes the search service over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/rpattn/koreng/internal/domain"
)

// DefaultBasePath prefixes every grid route.
const DefaultBasePath = "/kore-ng"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SearchService is the behaviour the handler needs from the search layer.
type SearchService interface {
	Model(ctx context.Context, entityName string) (map[string]string, error)
	Search(ctx context.Context, entityName string, req domain.SearchRequest) ([]map[string]any, error)
	Count(ctx context.Context, entityName string, req domain.SearchRequest) (int64, error)
	Export(ctx context.Context, entityName string, req domain.SearchRequest, w io.Writer) error
	Layout(ctx context.Context, entityName string) (domain.GridLayout, error)
	SaveLayout(ctx context.Context, entityName string, layout domain.GridLayout) (domain.GridLayout, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	service SearchService
	pinger  Pinger
	logger  *slog.Logger
}

type countResponse struct {
	Count int64 `json:"count"`
}

// NewHTTPHandler mounts the grid routes under basePath plus /healthz.
func NewHTTPHandler(service SearchService, pinger Pinger, basePath string, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{service: service, pinger: pinger, logger: logger}
	base := normalizeBasePath(basePath)

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+base+"/model/{entityName}", h.handleModel)
	mux.HandleFunc("POST "+base+"/search/{entityName}", h.handleSearch)
	mux.HandleFunc("POST "+base+"/count/{entityName}", h.handleCount)
	mux.HandleFunc("POST "+base+"/export/{entityName}", h.handleExport)
	mux.HandleFunc("GET "+base+"/layout/{entityName}", h.handleGetLayout)
	mux.HandleFunc("PUT "+base+"/layout/{entityName}", h.handleSaveLayout)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	return mux
}

func normalizeBasePath(basePath string) string {
	trimmed := strings.Trim(strings.TrimSpace(basePath), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

func (h *Handler) handleModel(w http.ResponseWriter, r *http.Request) {
	model, err := h.service.Model(r.Context(), r.PathValue("entityName"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}
	rows, err := h.service.Search(r.Context(), r.PathValue("entityName"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}
	total, err := h.service.Count(r.Context(), r.PathValue("entityName"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: total})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}
	entityName := r.PathValue("entityName")

	// Buffered so a failure can still be reported with a proper status.
	var body bytes.Buffer
	if err := h.service.Export(r.Context(), entityName, req, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", entityName))
	w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = body.WriteTo(w)
}

func (h *Handler) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	layout, err := h.service.Layout(r.Context(), r.PathValue("entityName"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

func (h *Handler) handleSaveLayout(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var layout domain.GridLayout
	if err := json.NewDecoder(r.Body).Decode(&layout); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return
	}
	saved, err := h.service.SaveLayout(r.Context(), r.PathValue("entityName"), layout)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.ErrorContext(r.Context(), "health check failed", slog.Any("error", err))
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeSearchRequest reads the request body on top of the defaults. An empty
// body is a default request.
func decodeSearchRequest(w http.ResponseWriter, r *http.Request) (domain.SearchRequest, bool) {
	defer r.Body.Close()
	req := domain.NewSearchRequest()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return domain.SearchRequest{}, false
	}
	return req, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEntityNotFound), errors.Is(err, domain.ErrLayoutNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidSortPath):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to send
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
