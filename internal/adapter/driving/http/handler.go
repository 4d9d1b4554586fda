// Package httphandler is the HTTP driving adapter serving the storefront API.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mlaurent/consignd/internal/application"
	"github.com/mlaurent/consignd/internal/config"
	"github.com/mlaurent/consignd/internal/domain/model"
)

// Handler serves the two storefront endpoints plus the health probe.
type Handler struct {
	cfg         *config.Config
	uploads     *application.UploadService
	submissions *application.SubmissionService
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	cfg *config.Config,
	uploads *application.UploadService,
	submissions *application.SubmissionService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		cfg:         cfg,
		uploads:     uploads,
		submissions: submissions,
		logger:      logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging, CORS, and recovery middleware. Unknown paths get a JSON 404;
// known paths with the wrong method get a JSON 405. OPTIONS preflights are
// answered by the CORS middleware before routing.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/sign-upload", h.SignUpload)
	mux.HandleFunc("POST /api/submit-consign", h.SubmitConsign)
	mux.HandleFunc("GET /api/health", h.Health)

	// Method-less fallbacks catch non-POST requests to known paths so the
	// 405 comes back in the JSON envelope instead of the mux's plain text.
	mux.HandleFunc("/api/sign-upload", methodNotAllowed)
	mux.HandleFunc("/api/submit-consign", methodNotAllowed)
	mux.HandleFunc("/", notFound)

	return chain(mux, logger)
}

// SignUpload handles POST /api/sign-upload: validates the file batch and
// returns one pre-signed upload target per file.
func (h *Handler) SignUpload(w http.ResponseWriter, r *http.Request) {
	if !h.checkConfigured(w) {
		return
	}

	var req SignUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	targets, err := h.uploads.SignUploads(r.Context(), req.Files)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SignUploadResponse{StagedTargets: targets})
}

// SubmitConsign handles POST /api/submit-consign: registers uploaded files
// and persists the submission metaobject.
func (h *Handler) SubmitConsign(w http.ResponseWriter, r *http.Request) {
	if !h.checkConfigured(w) {
		return
	}

	var req SubmitConsignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.submissions.Finalize(r.Context(), req.UploadedResources, req.FormData)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SubmitConsignResponse{
		Success:   true,
		Handle:    result.Handle,
		FileCount: result.FileCount,
	})
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// checkConfigured enforces the Shopify secrets per request, before any
// handler logic, so a half-configured deployment answers with a precise
// configuration error instead of an opaque auth failure from upstream.
func (h *Handler) checkConfigured(w http.ResponseWriter) bool {
	if h.cfg.HasShopifyCredentials() {
		return true
	}

	writeError(w, http.StatusInternalServerError,
		"Configuration Error: missing "+strings.Join(h.cfg.MissingSecrets(), ", ")+
			"; set these environment variables and restart")
	return false
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses.
// Original messages are preserved in the envelope: the frontend is
// first-party and operator debuggability beats hiding internals.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, validationErr.Error())
		return
	}

	var authErr *model.AuthError
	if errors.As(err, &authErr) {
		h.logger.Error("auth failure", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, authErr.Error())
		return
	}

	var connErr *model.ConnectionError
	if errors.As(err, &connErr) {
		h.logger.Error("upstream unreachable", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, connErr.Error())
		return
	}

	var upstreamErr *model.UpstreamError
	if errors.As(err, &upstreamErr) {
		h.logger.Error("upstream error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, upstreamErr.Error())
		return
	}

	h.logger.Error("unexpected error", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// notFound answers unknown paths in the JSON envelope.
func notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

// methodNotAllowed answers known paths hit with the wrong method.
func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
