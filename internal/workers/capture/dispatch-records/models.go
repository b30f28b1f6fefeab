package dispatchrecords

import "chat-intake/internal/models"

const (
	RecordLead         = "lead"
	RecordDerivedLead  = "derived_lead"
	RecordAppointment  = "appointment"
	RecordNotification = "notification"
	RecordQueueEvent   = "notification_event"
)

type Input struct {
	TurnID      string                     `json:"turnId"`
	Lead        *models.LeadPayload        `json:"lead,omitempty"`
	Appointment *models.AppointmentPayload `json:"appointment,omitempty"`
}

// WriteResult is the outcome of one best-effort write.
type WriteResult struct {
	Record string `json:"record"`
	ID     string `json:"id"`
	Err    error  `json:"-"`
}

func (w WriteResult) OK() bool {
	return w.Err == nil
}

type Output struct {
	// LeadSaved is true only when the lead marker of this turn was stored.
	LeadSaved bool          `json:"leadSaved"`
	Writes    []WriteResult `json:"writes"`
}

// Failed returns the writes that did not succeed.
func (o Output) Failed() []WriteResult {
	var failed []WriteResult
	for _, w := range o.Writes {
		if !w.OK() {
			failed = append(failed, w)
		}
	}
	return failed
}
