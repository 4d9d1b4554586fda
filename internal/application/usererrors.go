package application

import "strings"

// userError is the application-level error entry Shopify mutations report in
// their userErrors list. Transport-level problems never reach this type; the
// admin client classifies those before the payload is decoded.
type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// userErrorMessages flattens userErrors into "field: message" strings.
func userErrorMessages(errs []userError) []string {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		if len(e.Field) > 0 {
			messages = append(messages, strings.Join(e.Field, ".")+": "+e.Message)
		} else {
			messages = append(messages, e.Message)
		}
	}
	return messages
}
