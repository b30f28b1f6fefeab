package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"chat-intake/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// ChatRequestSchema describes the body accepted by the chat endpoint.
const ChatRequestSchema = `{
	"type": "object",
	"required": ["messages"],
	"properties": {
		"messages": {
			"type": "array",
			"items": {
				"type": "object",
				"anyOf": [
					{
						"required": ["role", "content"],
						"properties": {
							"role": {"enum": ["user", "assistant"]},
							"content": {"type": "string"}
						}
					},
					{
						"not": {
							"required": ["role"],
							"properties": {"role": {"enum": ["user", "assistant"]}}
						}
					}
				]
			}
		},
		"leadCaptured": {"type": ["boolean", "null"]}
	}
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator checks raw JSON documents against a compiled schema.
type Validator struct {
	schema *gojsonschema.Schema
}

func NewValidator(schemaJSON string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// NewChatRequestValidator panics only if ChatRequestSchema itself is broken.
func NewChatRequestValidator() *Validator {
	v, err := NewValidator(ChatRequestSchema)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Validator) Validate(body []byte) *ValidationResult {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &ValidationResult{
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "INVALID_JSON",
			}},
		}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, re := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   re.Field(),
			Message: re.Description(),
			Code:    strings.ToUpper(re.Type()),
		})
	}
	return out
}

// wireRequest mirrors ChatRequest loosely. Turns other than user and
// assistant may carry any role or content shape.
type wireRequest struct {
	Messages []struct {
		Role    interface{} `json:"role"`
		Content interface{} `json:"content"`
	} `json:"messages"`
	LeadCaptured *bool `json:"leadCaptured"`
}

// DecodeChatRequest validates body and decodes it. The returned result is
// nil when the body is acceptable. Turns that are never forwarded keep their
// role but lose any non-string content.
func (v *Validator) DecodeChatRequest(body []byte) (*models.ChatRequest, *ValidationResult) {
	res := v.Validate(body)
	if !res.Valid {
		return nil, res
	}

	var wire wireRequest
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &ValidationResult{
			Errors: []ValidationError{{Field: "(root)", Message: err.Error(), Code: "INVALID_JSON"}},
		}
	}

	req := &models.ChatRequest{
		Messages:     make([]models.Turn, 0, len(wire.Messages)),
		LeadCaptured: wire.LeadCaptured != nil && *wire.LeadCaptured,
	}
	for _, m := range wire.Messages {
		role, _ := m.Role.(string)
		content, _ := m.Content.(string)
		req.Messages = append(req.Messages, models.Turn{Role: role, Content: content})
	}
	return req, nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}
