package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/mlaurent/consignd/internal/domain/model"
	"github.com/mlaurent/consignd/internal/domain/port/driven"
)

const fileCreateMutation = `
mutation fileCreate($files: [FileCreateInput!]!) {
	fileCreate(files: $files) {
		files {
			id
			fileStatus
		}
		userErrors {
			field
			message
		}
	}
}`

const metaobjectCreateMutation = `
mutation metaobjectCreate($metaobject: MetaobjectCreateInput!) {
	metaobjectCreate(metaobject: $metaobject) {
		metaobject {
			id
			handle
		}
		userErrors {
			field
			message
		}
	}
}`

// SubmissionService registers already-uploaded files as Shopify file objects
// and persists the consignment form as a metaobject.
type SubmissionService struct {
	admin  driven.AdminClient
	logger *slog.Logger
}

// NewSubmissionService creates a SubmissionService.
func NewSubmissionService(admin driven.AdminClient, logger *slog.Logger) *SubmissionService {
	return &SubmissionService{admin: admin, logger: logger}
}

// fileCreatePayload is the data shape of the fileCreate mutation.
type fileCreatePayload struct {
	FileCreate *struct {
		Files []struct {
			ID         string `json:"id"`
			FileStatus string `json:"fileStatus"`
		} `json:"files"`
		UserErrors []userError `json:"userErrors"`
	} `json:"fileCreate"`
}

// metaobjectCreatePayload is the data shape of the metaobjectCreate mutation.
type metaobjectCreatePayload struct {
	MetaobjectCreate *struct {
		Metaobject *struct {
			ID     string `json:"id"`
			Handle string `json:"handle"`
		} `json:"metaobject"`
		UserErrors []userError `json:"userErrors"`
	} `json:"metaobjectCreate"`
}

// Finalize turns uploaded resource URLs plus raw form data into a persisted
// consignment submission. File registration and metaobject creation run
// strictly in sequence; the file IDs feed the metaobject's images field.
//
// Error tolerance is deliberately asymmetric. Losing some images is cosmetic,
// so fileCreate userErrors are logged and swallowed and we proceed with
// whatever file IDs came back. Losing the submission record is not, so
// metaobjectCreate userErrors abort with a client-facing error.
func (s *SubmissionService) Finalize(ctx context.Context, uploadedResources []string, formData map[string]string) (model.SubmissionResult, error) {
	fileIDs, err := s.createFiles(ctx, uploadedResources)
	if err != nil {
		return model.SubmissionResult{}, err
	}

	fields := buildSubmissionFields(formData, fileIDs)

	var payload metaobjectCreatePayload
	vars := map[string]any{
		"metaobject": map[string]any{
			"type":   model.SubmissionMetaobjectType,
			"fields": fields,
		},
	}
	if err := s.admin.Execute(ctx, metaobjectCreateMutation, vars, &payload); err != nil {
		return model.SubmissionResult{}, err
	}

	if payload.MetaobjectCreate == nil {
		return model.SubmissionResult{}, &model.UpstreamError{Messages: []string{"metaobjectCreate returned no payload"}}
	}
	if errs := payload.MetaobjectCreate.UserErrors; len(errs) > 0 {
		return model.SubmissionResult{}, model.NewValidationError(
			"metaobject creation errors: %s", strings.Join(userErrorMessages(errs), "; "))
	}
	if payload.MetaobjectCreate.Metaobject == nil {
		return model.SubmissionResult{}, &model.UpstreamError{Messages: []string{"metaobjectCreate returned no metaobject"}}
	}

	result := model.SubmissionResult{
		Handle:    payload.MetaobjectCreate.Metaobject.Handle,
		FileCount: len(fileIDs),
	}
	s.logger.Info("submission finalized", "handle", result.Handle, "file_count", result.FileCount)
	return result, nil
}

// createFiles registers each uploaded resource URL as a Shopify file object
// and returns the IDs that actually came back. userErrors are logged, not
// propagated: a submission missing images beats no submission at all.
func (s *SubmissionService) createFiles(ctx context.Context, uploadedResources []string) ([]string, error) {
	if len(uploadedResources) == 0 {
		return nil, nil
	}

	inputs := make([]map[string]any, 0, len(uploadedResources))
	for _, resourceURL := range uploadedResources {
		inputs = append(inputs, map[string]any{
			"originalSource": resourceURL,
			"contentType":    "IMAGE",
		})
	}

	var payload fileCreatePayload
	if err := s.admin.Execute(ctx, fileCreateMutation, map[string]any{"files": inputs}, &payload); err != nil {
		return nil, err
	}

	if payload.FileCreate == nil {
		return nil, &model.UpstreamError{Messages: []string{"fileCreate returned no payload"}}
	}

	if errs := payload.FileCreate.UserErrors; len(errs) > 0 {
		s.logger.Warn("file create reported errors, continuing without failed files",
			"errors", strings.Join(userErrorMessages(errs), "; "),
			"requested", len(uploadedResources),
			"returned", len(payload.FileCreate.Files),
		)
	}

	fileIDs := make([]string, 0, len(payload.FileCreate.Files))
	for _, f := range payload.FileCreate.Files {
		fileIDs = append(fileIDs, f.ID)
	}
	return fileIDs, nil
}

// buildSubmissionFields maps raw storefront form data into the fixed
// metaobject field schema.
func buildSubmissionFields(formData map[string]string, fileIDs []string) []model.MetaobjectField {
	// The storefront posts some values under bare keys and some under
	// contact[key] (the theme's contact form wrapper); try both.
	getVal := func(key string) string {
		if v, ok := formData[key]; ok && v != "" {
			return v
		}
		return formData["contact["+key+"]"]
	}

	condition := getVal("Condition")
	brand := getVal("Brand")
	if brand == model.BrandNotListed {
		brand = getVal("Brand_Custom")
	}

	fields := []model.MetaobjectField{
		{Key: "full_name", Value: getVal("name")},
		{Key: "email", Value: getVal("email")},
		{Key: "phone", Value: getVal("phone")},
		{Key: "category", Value: getVal("Collection")},
		{Key: "brand", Value: brand},
		{Key: "condition", Value: condition},
		{Key: "condition_description", Value: model.DescribeCondition(condition)},
		{Key: "description", Value: getVal("Description")},
		{Key: "status", Value: model.StatusNew},
		{Key: "submission_type", Value: model.SubmissionTypeQuickQuote},
	}

	if len(fileIDs) > 0 {
		// Marshaling a []string cannot fail; ignore the error.
		encoded, _ := json.Marshal(fileIDs)
		fields = append(fields, model.MetaobjectField{Key: model.ImagesFieldKey, Value: string(encoded)})
	}

	return fields
}
