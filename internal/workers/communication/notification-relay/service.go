// internal/workers/communication/notification-relay/service.go
package notificationrelay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chat-intake/internal/common/database"
	stderrors "chat-intake/internal/common/errors"
	"chat-intake/internal/common/logger"
	"chat-intake/internal/common/metrics"
	"chat-intake/internal/common/observability"
	"chat-intake/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "notification-relay"
)

type EventSource interface {
	Next(ctx context.Context, timeout time.Duration) (*models.NotificationEvent, error)
}

type StatusMarker interface {
	MarkNotification(ctx context.Context, id, status string, at time.Time) error
}

type EmailSender interface {
	SendEmail(ctx context.Context, toEmail, toName, subject, body string) (string, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

// ServiceDependencies groups the collaborators of the relay. Email and SMS
// may be nil when the channel is disabled, Observability when tracing is off.
type ServiceDependencies struct {
	Source        EventSource
	Marker        StatusMarker
	Email         EmailSender
	SMS           SMSSender
	Observability *observability.Observability
	Logger        logger.Logger
}

type Service struct {
	config *Config
	deps   ServiceDependencies
	logger logger.Logger
	now    func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		deps:   deps,
		logger: deps.Logger.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
	}
}

// Run relays queued notifications until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("relay started", map[string]interface{}{
		"emailEnabled": s.config.EmailEnabled,
		"smsEnabled":   s.config.SMSEnabled,
	})

	for {
		ev, err := s.deps.Source.Next(ctx, s.config.PollTimeout)
		if ctx.Err() != nil {
			s.logger.Info("relay stopped", nil)
			return nil
		}
		if errors.Is(err, database.ErrQueueEmpty) {
			continue
		}
		if err != nil {
			s.logger.Error("queue read failed", map[string]interface{}{"error": err.Error()})
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(s.config.RetryDelay):
			}
			continue
		}

		// Delivery errors are already logged and recorded on the row.
		_, _ = s.Deliver(ctx, ev)
	}
}

// Deliver sends one notification on every enabled channel. Email is the
// channel of record: its outcome is written back to email_queue. An SMS
// failure is logged but does not fail the notification.
func (s *Service) Deliver(ctx context.Context, ev *models.NotificationEvent) (out *Output, err error) {
	ctx, span := s.deps.Observability.StartSpan(ctx, "notification.deliver",
		attribute.String("notification.id", ev.ID),
		attribute.String("notification.related_type", ev.RelatedType),
	)
	defer func() { observability.EndSpan(span, err) }()

	return s.deliver(ctx, ev)
}

func (s *Service) deliver(ctx context.Context, ev *models.NotificationEvent) (*Output, error) {
	log := s.logger.WithFields(map[string]interface{}{
		"notificationId": ev.ID,
		"relatedType":    ev.RelatedType,
		"traceId":        observability.TraceID(ctx),
	})
	out := &Output{NotificationID: ev.ID}

	var sendErr error
	if s.config.EmailEnabled && s.deps.Email != nil {
		out.EmailMessageID, sendErr = s.deps.Email.SendEmail(ctx, ev.ToEmail, ev.ToName, ev.Subject, ev.Body)
		s.count(log, ChannelEmail, sendErr)
		if sendErr != nil {
			sendErr = stderrors.NewNotificationSendFailedError(ChannelEmail, sendErr)
		}
	}

	if s.config.SMSEnabled && s.deps.SMS != nil {
		var err error
		out.SMSMessageID, err = s.deps.SMS.SendSMS(ctx, s.config.AdminPhone, smsText(ev))
		s.count(log, ChannelSMS, err)
	}

	out.ProcessedAt = s.now().UTC()
	if !s.config.EmailEnabled {
		return out, nil
	}

	out.Status = models.NotificationStatusSent
	if sendErr != nil {
		out.Status = models.NotificationStatusFailed
	}
	if err := s.deps.Marker.MarkNotification(ctx, ev.ID, out.Status, out.ProcessedAt); err != nil {
		log.Error("failed to record notification status", map[string]interface{}{
			"status": out.Status,
			"error":  err.Error(),
		})
		if sendErr == nil {
			return out, fmt.Errorf("mark notification %s: %w", ev.ID, err)
		}
	}
	return out, sendErr
}

func (s *Service) count(log logger.Logger, channel string, err error) {
	if err != nil {
		metrics.NotificationsRelayed.WithLabelValues(channel, "failed").Inc()
		log.Warn("notification delivery failed", map[string]interface{}{
			"channel": channel,
			"error":   err.Error(),
		})
		return
	}
	metrics.NotificationsRelayed.WithLabelValues(channel, "sent").Inc()
	log.Info("notification delivered", map[string]interface{}{"channel": channel})
}

func smsText(ev *models.NotificationEvent) string {
	return fmt.Sprintf("%s. Details sent to %s.", ev.Subject, ev.ToEmail)
}
