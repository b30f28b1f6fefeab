// internal/workers/capture/normalize-schedule/handler.go
package normalizeschedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"chat-intake/internal/common/logger"
	"chat-intake/internal/models"

	"github.com/araddon/dateparse"
)

const (
	TaskType = "normalize-schedule"

	dateLayout = "2006-01-02"
	lastStart  = "23:59:00"
)

// hour, optional minutes (with or without a colon), optional meridiem.
// Unanchored so "around 2pm" still matches.
var timePattern = regexp.MustCompile(`(?i)(\d{1,2}):?(\d{2})?\s*(am|pm)?`)

// Leading day name, e.g. "Tuesday, " or "Tue. ". dateparse only reads
// the bare abbreviated form.
var weekdayPrefix = regexp.MustCompile(`(?i)^(mon|tue|wed|thu|fri|sat|sun)[a-z]*\.?,?\s+`)

type Handler struct {
	config *Config
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
	}
}

// WithClock replaces the clock used for the fallback date.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// Normalize turns a free-form date and time into a canonical one hour window.
// It never fails: unreadable input falls back to today+FallbackDays and the
// default window.
func (h *Handler) Normalize(input Input) Output {
	date, dateOK := h.normalizeDate(input.Date)
	start, end, timeOK := h.normalizeTime(input.Time)

	if !dateOK || !timeOK {
		h.logger.Debug("schedule fallback applied", map[string]interface{}{
			"rawDate":      input.Date,
			"rawTime":      input.Time,
			"dateFallback": !dateOK,
			"timeFallback": !timeOK,
		})
	}

	return Output{
		NormalizedAppointment: models.NormalizedAppointment{
			Date:      date,
			StartTime: start,
			EndTime:   end,
		},
		DateFallback: !dateOK,
		TimeFallback: !timeOK,
	}
}

func (h *Handler) normalizeDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	// Relative phrasing ("next Tuesday", "tomorrow") never carries digits.
	if s == "" || !strings.ContainsFunc(s, unicode.IsDigit) {
		return h.fallbackDate(), false
	}

	for _, candidate := range dateCandidates(s) {
		t, err := dateparse.ParseIn(candidate, h.config.Location)
		if err == nil && t.Year() != 0 {
			return t.In(h.config.Location).Format(dateLayout), true
		}
	}
	return h.fallbackDate(), false
}

// dateCandidates lists s followed by its day-name rewrites, if any.
func dateCandidates(s string) []string {
	m := weekdayPrefix.FindStringSubmatch(s)
	if m == nil {
		return []string{s}
	}
	rest := s[len(m[0]):]
	day := strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:])
	return []string{s, rest, day + " " + rest}
}

func (h *Handler) fallbackDate() string {
	return h.now().In(h.config.Location).AddDate(0, 0, h.config.FallbackDays).Format(dateLayout)
}

func (h *Handler) normalizeTime(raw string) (string, string, bool) {
	m := timePattern.FindStringSubmatch(raw)
	if m == nil {
		start, end := h.defaultWindow()
		return start, end, false
	}

	hour, _ := strconv.Atoi(m[1])
	minutes := m[2]
	if minutes == "" {
		minutes = "00"
	}

	switch strings.ToLower(m[3]) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	if mins, _ := strconv.Atoi(minutes); hour > 23 || mins > 59 {
		start, end := h.defaultWindow()
		return start, end, false
	}

	start := fmt.Sprintf("%02d:%s:00", hour, minutes)
	// A window starting in the last hour of the day is cut at 23:59:00
	// instead of rolling into the next day.
	end := lastStart
	if hour < 23 {
		end = fmt.Sprintf("%02d:%s:00", hour+1, minutes)
	}
	return start, end, true
}

func (h *Handler) defaultWindow() (string, string) {
	return fmt.Sprintf("%02d:00:00", h.config.DefaultStartHour),
		fmt.Sprintf("%02d:00:00", h.config.DefaultStartHour+1)
}
