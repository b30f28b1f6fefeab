package processturn

import (
	"chat-intake/internal/models"
	dispatchrecords "chat-intake/internal/workers/capture/dispatch-records"
)

// Result is the full outcome of one turn. Only Response leaves the service.
type Result struct {
	TurnID         string                 `json:"turnId"`
	Response       models.ChatResponse    `json:"response"`
	ForwardedTurns int                    `json:"forwardedTurns"`
	ParseFailures  []models.CaptureKind   `json:"parseFailures,omitempty"`
	LeadSuppressed bool                   `json:"leadSuppressed"`
	Dispatch       dispatchrecords.Output `json:"dispatch"`
}
