// internal/models/records.go
package models

import "time"

const (
	LeadStatusNew = "new"

	AppointmentTypeConsultation = "Consultation"
	AppointmentStatusScheduled  = "Scheduled"
	AppointmentLocationPending  = "Phone/Video Call - to be confirmed"

	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"

	RelatedTypeConsultationRequest = "consultation_request"
)

// LeadRecord is a row of the leads table. Empty strings are stored as NULL.
type LeadRecord struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Situation string    `json:"situation" db:"situation"`
	Source    string    `json:"source" db:"source"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// AppointmentRecord is a row of the appointments table.
type AppointmentRecord struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Date        string    `json:"date" db:"date"`
	StartTime   string    `json:"startTime" db:"start_time"`
	EndTime     string    `json:"endTime" db:"end_time"`
	Type        string    `json:"type" db:"type"`
	Status      string    `json:"status" db:"status"`
	Location    string    `json:"location" db:"location"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// NotificationRecord is a row of the email_queue table.
type NotificationRecord struct {
	ID          string    `json:"id" db:"id"`
	ToEmail     string    `json:"toEmail" db:"to_email"`
	ToName      string    `json:"toName" db:"to_name"`
	Subject     string    `json:"subject" db:"subject"`
	Body        string    `json:"body" db:"body"`
	Status      string    `json:"status" db:"status"`
	RelatedType string    `json:"relatedType" db:"related_type"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// NotificationEvent is the message published to the notification queue
// after the email_queue row exists.
type NotificationEvent struct {
	ID          string `json:"id"`
	ToEmail     string `json:"toEmail"`
	ToName      string `json:"toName"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	RelatedType string `json:"relatedType"`
	CreatedAt   string `json:"createdAt"` // RFC3339
}

// Event converts a stored notification into its queue message.
func (n NotificationRecord) Event() NotificationEvent {
	return NotificationEvent{
		ID:          n.ID,
		ToEmail:     n.ToEmail,
		ToName:      n.ToName,
		Subject:     n.Subject,
		Body:        n.Body,
		RelatedType: n.RelatedType,
		CreatedAt:   n.CreatedAt.UTC().Format(time.RFC3339),
	}
}
