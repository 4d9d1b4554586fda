package application

import (
	"context"
	"log/slog"

	"github.com/mlaurent/consignd/internal/domain/model"
	"github.com/mlaurent/consignd/internal/domain/port/driven"
)

const stagedUploadsCreateMutation = `
mutation stagedUploadsCreate($input: [StagedUploadInput!]!) {
	stagedUploadsCreate(input: $input) {
		stagedTargets {
			url
			resourceUrl
			parameters {
				name
				value
			}
		}
		userErrors {
			field
			message
		}
	}
}`

// UploadService validates a batch of file descriptors and asks Shopify for
// one pre-signed upload target per file. The client performs the actual
// binary upload directly to the returned URLs; no file bytes pass through
// this service.
type UploadService struct {
	admin  driven.AdminClient
	logger *slog.Logger
}

// NewUploadService creates an UploadService.
func NewUploadService(admin driven.AdminClient, logger *slog.Logger) *UploadService {
	return &UploadService{admin: admin, logger: logger}
}

// stagedUploadsPayload is the data shape of the stagedUploadsCreate mutation.
type stagedUploadsPayload struct {
	StagedUploadsCreate *struct {
		StagedTargets []model.StagedTarget `json:"stagedTargets"`
		UserErrors    []userError          `json:"userErrors"`
	} `json:"stagedUploadsCreate"`
}

// SignUploads validates files and returns one staged upload target per file.
// Validation short-circuits on the first violation, before any upstream call.
// Application-level userErrors reject the whole batch: a partially signed
// batch would leave the client unable to upload some of its files anyway.
func (s *UploadService) SignUploads(ctx context.Context, files []model.FileDescriptor) ([]model.StagedTarget, error) {
	if len(files) == 0 {
		return nil, model.NewValidationError("no files provided")
	}
	if len(files) > model.MaxUploadFiles {
		return nil, model.NewValidationError("too many files: max %d allowed", model.MaxUploadFiles)
	}
	for _, f := range files {
		if !model.AllowedMimeType(f.MimeType) {
			return nil, &model.ValidationError{Message: "invalid file type", Filename: f.Filename}
		}
		if f.FileSize > model.MaxUploadFileSize {
			return nil, &model.ValidationError{Message: "file too large", Filename: f.Filename}
		}
	}

	inputs := make([]map[string]any, 0, len(files))
	for _, f := range files {
		inputs = append(inputs, map[string]any{
			"filename":   f.Filename,
			"mimeType":   f.MimeType,
			"resource":   "FILE",
			"httpMethod": "POST",
		})
	}

	var payload stagedUploadsPayload
	if err := s.admin.Execute(ctx, stagedUploadsCreateMutation, map[string]any{"input": inputs}, &payload); err != nil {
		return nil, err
	}

	if payload.StagedUploadsCreate == nil {
		return nil, &model.UpstreamError{Messages: []string{"stagedUploadsCreate returned no payload"}}
	}
	if errs := payload.StagedUploadsCreate.UserErrors; len(errs) > 0 {
		return nil, &model.UpstreamError{Messages: userErrorMessages(errs)}
	}

	s.logger.Info("staged uploads signed", "count", len(payload.StagedUploadsCreate.StagedTargets))
	return payload.StagedUploadsCreate.StagedTargets, nil
}
