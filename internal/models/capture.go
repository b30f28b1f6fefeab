// internal/models/capture.go
package models

// CaptureKind names the two structured markers the model may emit.
type CaptureKind string

const (
	CaptureLead        CaptureKind = "lead"
	CaptureAppointment CaptureKind = "appointment"
)

// LeadPayload is the interior of a <lead> marker. Every field is optional.
type LeadPayload struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Situation string `json:"situation"`
}

// AppointmentPayload is the interior of an <appointment> marker. Date and
// Time are free-form and only normalized when the record is written.
type AppointmentPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Notes string `json:"notes"`
}

// ImpliesLead is true when the booking carries enough to be a sales lead:
// a name and at least one way to reach the person.
func (a AppointmentPayload) ImpliesLead() bool {
	return a.Name != "" && (a.Email != "" || a.Phone != "")
}

// NormalizedAppointment is the canonical window derived from the free-form
// date and time of an AppointmentPayload.
type NormalizedAppointment struct {
	Date      string `json:"date"`      // YYYY-MM-DD
	StartTime string `json:"startTime"` // HH:MM:SS
	EndTime   string `json:"endTime"`   // HH:MM:SS
}
