package extracttags

import "chat-intake/internal/models"

type Input struct {
	Text         string `json:"text"`
	LeadCaptured bool   `json:"leadCaptured"`
}

type Output struct {
	// Reply is the generated text with every marker removed, trimmed.
	Reply       string                     `json:"reply"`
	Lead        *models.LeadPayload        `json:"lead,omitempty"`
	Appointment *models.AppointmentPayload `json:"appointment,omitempty"`
	// LeadSuppressed is set when a valid lead marker was ignored because
	// the conversation already captured a lead.
	LeadSuppressed bool                 `json:"leadSuppressed"`
	ParseFailures  []models.CaptureKind `json:"parseFailures,omitempty"`
}
