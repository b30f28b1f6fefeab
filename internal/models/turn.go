// internal/models/turn.go
package models

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of the caller supplied conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Forwardable reports whether the turn may be sent to the generation model.
func (t Turn) Forwardable() bool {
	return t.Role == RoleUser || t.Role == RoleAssistant
}

// ChatRequest is the inbound body of the chat endpoint.
type ChatRequest struct {
	Messages     []Turn `json:"messages"`
	LeadCaptured bool   `json:"leadCaptured"`
}

// ChatResponse is returned for every successfully generated turn.
type ChatResponse struct {
	Reply     string `json:"reply"`
	LeadSaved bool   `json:"leadSaved"`
}
