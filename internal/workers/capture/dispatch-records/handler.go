// internal/workers/capture/dispatch-records/handler.go
package dispatchrecords

import (
	"context"
	"fmt"
	"strings"
	"time"

	stderrors "chat-intake/internal/common/errors"
	"chat-intake/internal/common/logger"
	"chat-intake/internal/common/metrics"
	"chat-intake/internal/models"
	normalizeschedule "chat-intake/internal/workers/capture/normalize-schedule"

	"github.com/google/uuid"
)

const (
	TaskType = "dispatch-records"
)

// RecordWriter is the insert-only view of the record store.
type RecordWriter interface {
	InsertLead(ctx context.Context, rec *models.LeadRecord) error
	InsertAppointment(ctx context.Context, rec *models.AppointmentRecord) error
	InsertNotification(ctx context.Context, rec *models.NotificationRecord) error
}

// EventPublisher hands a stored notification to downstream delivery.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.NotificationEvent) error
}

type Handler struct {
	config     *Config
	store      RecordWriter
	publisher  EventPublisher
	normalizer *normalizeschedule.Handler
	logger     logger.Logger
	now        func() time.Time
	newID      func() string
}

// NewHandler wires the dispatcher. publisher may be nil when no queue is
// configured; the email_queue row is still written.
func NewHandler(config *Config, store RecordWriter, publisher EventPublisher, normalizer *normalizeschedule.Handler, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		store:      store,
		publisher:  publisher,
		normalizer: normalizer,
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
}

// Dispatch performs every write implied by the payloads of one turn, in
// order: lead, derived lead, appointment, notification, queue event. Each
// write is independent; a failure is logged and recorded in the output but
// never stops the remaining writes.
func (h *Handler) Dispatch(ctx context.Context, input Input) Output {
	// Writes outlive the request.
	ctx = context.WithoutCancel(ctx)
	log := h.logger.WithFields(map[string]interface{}{"turnId": input.TurnID})

	var out Output

	if input.Lead != nil {
		res := h.writeLead(ctx, log, RecordLead, *input.Lead)
		out.Writes = append(out.Writes, res)
		out.LeadSaved = res.OK()
	}

	if input.Appointment != nil {
		out.Writes = append(out.Writes, h.dispatchAppointment(ctx, log, *input.Appointment)...)
	}

	return out
}

func (h *Handler) dispatchAppointment(ctx context.Context, log logger.Logger, appt models.AppointmentPayload) []WriteResult {
	var writes []WriteResult

	if appt.ImpliesLead() {
		derived := models.LeadPayload{
			Name:      appt.Name,
			Email:     appt.Email,
			Phone:     appt.Phone,
			Situation: fmt.Sprintf("Consultation requested for %s at %s", orDefault(appt.Date, "TBD"), orDefault(appt.Time, "TBD")),
		}
		writes = append(writes, h.writeLead(ctx, log, RecordDerivedLead, derived))
	}

	window := h.normalizer.Normalize(normalizeschedule.Input{Date: appt.Date, Time: appt.Time})

	apptRec := &models.AppointmentRecord{
		ID:          h.newID(),
		Title:       appointmentTitle(appt.Name),
		Description: appointmentDescription(appt),
		Date:        window.Date,
		StartTime:   window.StartTime,
		EndTime:     window.EndTime,
		Type:        models.AppointmentTypeConsultation,
		Status:      models.AppointmentStatusScheduled,
		Location:    models.AppointmentLocationPending,
		CreatedAt:   h.now().UTC(),
	}
	writes = append(writes, h.record(log, RecordAppointment, apptRec.ID,
		h.store.InsertAppointment(ctx, apptRec)))

	notif := &models.NotificationRecord{
		ID:          h.newID(),
		ToEmail:     h.config.AdminEmail,
		ToName:      h.config.AdminName,
		Subject:     fmt.Sprintf("New Consultation Request from %s", orDefault(appt.Name, "a website visitor")),
		Body:        notificationBody(appt, window.Date),
		Status:      models.NotificationStatusPending,
		RelatedType: models.RelatedTypeConsultationRequest,
		CreatedAt:   h.now().UTC(),
	}
	notifRes := h.record(log, RecordNotification, notif.ID, h.store.InsertNotification(ctx, notif))
	writes = append(writes, notifRes)

	// Only announce rows that exist, the relay marks them by id.
	if h.publisher != nil && notifRes.OK() {
		var err error
		if perr := h.publisher.Publish(ctx, notif.Event()); perr != nil {
			err = stderrors.NewQueuePublishError(perr)
		}
		writes = append(writes, h.record(log, RecordQueueEvent, notif.ID, err))
	}

	return writes
}

func (h *Handler) writeLead(ctx context.Context, log logger.Logger, kind string, lead models.LeadPayload) WriteResult {
	rec := &models.LeadRecord{
		ID:        h.newID(),
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Situation: lead.Situation,
		Source:    h.config.LeadSource,
		Status:    models.LeadStatusNew,
		CreatedAt: h.now().UTC(),
	}
	return h.record(log, kind, rec.ID, h.store.InsertLead(ctx, rec))
}

func (h *Handler) record(log logger.Logger, kind, id string, err error) WriteResult {
	if err != nil {
		if _, ok := stderrors.AsStandardError(err); !ok {
			err = stderrors.NewPersistenceError(kind, err)
		}
		metrics.RecordWrites.WithLabelValues(kind, "failed").Inc()
		log.Error("record write failed", map[string]interface{}{
			"record": kind,
			"id":     id,
			"error":  err.Error(),
		})
		return WriteResult{Record: kind, ID: id, Err: err}
	}

	metrics.RecordWrites.WithLabelValues(kind, "ok").Inc()
	log.Info("record written", map[string]interface{}{
		"record": kind,
		"id":     id,
	})
	return WriteResult{Record: kind, ID: id}
}

func appointmentTitle(name string) string {
	if name == "" {
		return "Free Consultation"
	}
	return "Free Consultation - " + name
}

func appointmentDescription(a models.AppointmentPayload) string {
	var b strings.Builder
	b.WriteString("Website chatbot booking.\n")
	fmt.Fprintf(&b, "Name: %s\n", orDefault(a.Name, "N/A"))
	fmt.Fprintf(&b, "Email: %s\n", orDefault(a.Email, "N/A"))
	fmt.Fprintf(&b, "Phone: %s\n", orDefault(a.Phone, "N/A"))
	fmt.Fprintf(&b, "Requested: %s at %s\n", orDefault(a.Date, "TBD"), orDefault(a.Time, "TBD"))
	fmt.Fprintf(&b, "Notes: %s", orDefault(a.Notes, "None"))
	return b.String()
}

func notificationBody(a models.AppointmentPayload, date string) string {
	var b strings.Builder
	b.WriteString("A new consultation has been requested through the website chatbot.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", orDefault(a.Name, "Not provided"))
	fmt.Fprintf(&b, "Email: %s\n", orDefault(a.Email, "Not provided"))
	fmt.Fprintf(&b, "Phone: %s\n", orDefault(a.Phone, "Not provided"))
	fmt.Fprintf(&b, "Preferred Date: %s\n", date)
	fmt.Fprintf(&b, "Preferred Time: %s\n", orDefault(a.Time, "Not specified"))
	fmt.Fprintf(&b, "Notes: %s", orDefault(a.Notes, "None"))
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
