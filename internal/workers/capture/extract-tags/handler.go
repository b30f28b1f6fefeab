// internal/workers/capture/extract-tags/handler.go
package extracttags

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"chat-intake/internal/common/logger"
	"chat-intake/internal/common/metrics"
	"chat-intake/internal/models"
)

const (
	TaskType = "extract-tags"
)

var ErrMarkerNotObject = errors.New("MARKER_NOT_OBJECT")

var (
	leadMarker        = regexp.MustCompile(`(?s)<lead>(.*?)</lead>`)
	appointmentMarker = regexp.MustCompile(`(?s)<appointment>(.*?)</appointment>`)
)

type Handler struct {
	logger logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Extract scans generated text for the first lead and first appointment
// marker, parses their JSON interiors and returns the text with all markers
// removed. A marker that fails to parse is dropped; Extract itself never fails.
func (h *Handler) Extract(input Input) Output {
	var out Output

	if interior, ok := firstInterior(leadMarker, input.Text); ok {
		fields, err := parsePayload(interior)
		switch {
		case err != nil:
			h.recordParseFailure(&out, models.CaptureLead, err)
		case input.LeadCaptured:
			out.LeadSuppressed = true
			h.logger.Debug("lead marker ignored, lead already captured", nil)
		default:
			out.Lead = &models.LeadPayload{
				Name:      fields.get("name"),
				Email:     fields.get("email"),
				Phone:     fields.get("phone"),
				Situation: fields.get("situation"),
			}
			metrics.CapturesExtracted.WithLabelValues(string(models.CaptureLead)).Inc()
		}
	}

	if interior, ok := firstInterior(appointmentMarker, input.Text); ok {
		fields, err := parsePayload(interior)
		if err != nil {
			h.recordParseFailure(&out, models.CaptureAppointment, err)
		} else {
			out.Appointment = &models.AppointmentPayload{
				Name:  fields.get("name"),
				Email: fields.get("email"),
				Phone: fields.get("phone"),
				Date:  fields.get("date"),
				Time:  fields.get("time"),
				Notes: fields.get("notes"),
			}
			metrics.CapturesExtracted.WithLabelValues(string(models.CaptureAppointment)).Inc()
		}
	}

	out.Reply = strip(input.Text)
	return out
}

func (h *Handler) recordParseFailure(out *Output, kind models.CaptureKind, err error) {
	out.ParseFailures = append(out.ParseFailures, kind)
	metrics.MarkerParseFailures.WithLabelValues(string(kind)).Inc()
	h.logger.Warn("marker payload dropped", map[string]interface{}{
		"kind":  string(kind),
		"error": err.Error(),
	})
}

func firstInterior(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// strip removes every marker of both kinds, including repeats that were not
// parsed, so raw markup never reaches the visitor.
func strip(text string) string {
	text = leadMarker.ReplaceAllLiteralString(text, "")
	text = appointmentMarker.ReplaceAllLiteralString(text, "")
	return strings.TrimSpace(text)
}

type payload map[string]interface{}

func parsePayload(interior string) (payload, error) {
	var p payload
	if err := json.Unmarshal([]byte(strings.TrimSpace(interior)), &p); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrMarkerNotObject
	}
	return p, nil
}

// get reads a field as text. Numbers and booleans are formatted, anything
// else (null, nested objects) reads as empty.
func (p payload) get(key string) string {
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}
