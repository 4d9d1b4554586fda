package model

// MaxUploadFiles is the per-request cap on staged upload targets.
const MaxUploadFiles = 5

// MaxUploadFileSize is the per-file size cap in bytes (20 MiB).
const MaxUploadFileSize = 20 * 1024 * 1024

// allowedMimeTypes lists the image content types accepted for consignment photos.
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// AllowedMimeType reports whether the given content type may be uploaded.
func AllowedMimeType(mimeType string) bool {
	return allowedMimeTypes[mimeType]
}

// FileDescriptor describes one file the client intends to upload.
// Supplied per request; never persisted.
type FileDescriptor struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// StagedParameter is a single signing parameter the client must include when
// posting the file bytes to a staged target. Order matters to the storage
// backend, so parameters stay a slice.
type StagedParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StagedTarget is a short-lived pre-signed upload destination returned by
// stagedUploadsCreate. The client uploads directly to URL; ResourceURL is the
// location handed back to us afterwards for fileCreate.
type StagedTarget struct {
	URL         string            `json:"url"`
	ResourceURL string            `json:"resourceUrl"`
	Parameters  []StagedParameter `json:"parameters"`
}
