package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/mlaurent/consignd/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// SignUploadRequest is the JSON body for the sign-upload endpoint.
type SignUploadRequest struct {
	Files []model.FileDescriptor `json:"files"`
}

// SignUploadResponse carries the pre-signed targets the client uploads to.
type SignUploadResponse struct {
	StagedTargets []model.StagedTarget `json:"stagedTargets"`
}

// SubmitConsignRequest is the JSON body for the submit-consign endpoint.
// UploadedResources are the resourceUrls from the client's upload step;
// FormData is the raw storefront form, keys passed through untouched.
type SubmitConsignRequest struct {
	UploadedResources []string          `json:"uploadedResources"`
	FormData          map[string]string `json:"formData"`
}

// SubmitConsignResponse reports the created submission's handle and how many
// images actually attached.
type SubmitConsignResponse struct {
	Success   bool   `json:"success"`
	Handle    string `json:"handle"`
	FileCount int    `json:"fileCount"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
