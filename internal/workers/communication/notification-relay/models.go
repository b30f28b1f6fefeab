package notificationrelay

import "time"

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Output describes one relayed notification.
type Output struct {
	NotificationID string    `json:"notificationId"`
	Status         string    `json:"status,omitempty"`
	EmailMessageID string    `json:"emailMessageId,omitempty"`
	SMSMessageID   string    `json:"smsMessageId,omitempty"`
	ProcessedAt    time.Time `json:"processedAt"`
}
