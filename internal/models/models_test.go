package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTurn_Forwardable(t *testing.T) {
	assert.True(t, Turn{Role: "user"}.Forwardable())
	assert.True(t, Turn{Role: "assistant"}.Forwardable())
	assert.False(t, Turn{Role: "system"}.Forwardable())
	assert.False(t, Turn{Role: "tool"}.Forwardable())
	assert.False(t, Turn{Role: ""}.Forwardable())
}

func TestAppointmentPayload_ImpliesLead(t *testing.T) {
	tests := []struct {
		name    string
		payload AppointmentPayload
		want    bool
	}{
		{"name and email", AppointmentPayload{Name: "Jane", Email: "jane@x.com"}, true},
		{"name and phone", AppointmentPayload{Name: "Jane", Phone: "555-0100"}, true},
		{"name only", AppointmentPayload{Name: "Jane"}, false},
		{"contact without name", AppointmentPayload{Email: "jane@x.com"}, false},
		{"empty", AppointmentPayload{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.payload.ImpliesLead())
		})
	}
}

func TestNotificationRecord_Event(t *testing.T) {
	created := time.Date(2026, 2, 13, 9, 30, 0, 0, time.UTC)
	rec := NotificationRecord{
		ID:          "n-1",
		ToEmail:     "admin@example.com",
		ToName:      "Admin",
		Subject:     "New Consultation Request from Jane",
		Body:        "body",
		Status:      NotificationStatusPending,
		RelatedType: RelatedTypeConsultationRequest,
		CreatedAt:   created,
	}

	ev := rec.Event()
	assert.Equal(t, "n-1", ev.ID)
	assert.Equal(t, "admin@example.com", ev.ToEmail)
	assert.Equal(t, RelatedTypeConsultationRequest, ev.RelatedType)
	assert.Equal(t, "2026-02-13T09:30:00Z", ev.CreatedAt)
}
