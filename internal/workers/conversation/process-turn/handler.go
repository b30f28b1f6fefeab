// internal/workers/conversation/process-turn/handler.go
package processturn

import (
	"context"
	"time"

	stderrors "chat-intake/internal/common/errors"
	"chat-intake/internal/common/genai"
	"chat-intake/internal/common/logger"
	"chat-intake/internal/common/metrics"
	"chat-intake/internal/common/observability"
	"chat-intake/internal/models"
	dispatchrecords "chat-intake/internal/workers/capture/dispatch-records"
	extracttags "chat-intake/internal/workers/capture/extract-tags"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "process-turn"

	outcomeOK               = "ok"
	outcomeValidationFailed = "validation_failed"
	outcomeGenerationFailed = "generation_failed"
)

// Dispatcher persists the captures of one turn.
type Dispatcher interface {
	Dispatch(ctx context.Context, input dispatchrecords.Input) dispatchrecords.Output
}

type Handler struct {
	config     *Config
	generator  genai.Generator
	extractor  *extracttags.Handler
	dispatcher Dispatcher
	obs        *observability.Observability
	logger     logger.Logger
	newID      func() string
}

// NewHandler wires the turn pipeline. obs may be nil.
func NewHandler(config *Config, generator genai.Generator, extractor *extracttags.Handler, dispatcher Dispatcher, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		generator:  generator,
		extractor:  extractor,
		dispatcher: dispatcher,
		obs:        obs,
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
		newID:      func() string { return uuid.New().String() },
	}
}

// Process runs one turn: one generation request over the recent history,
// marker extraction, then best-effort dispatch of whatever was captured.
// Only validation and generation failures are returned as errors.
func (h *Handler) Process(ctx context.Context, req models.ChatRequest) (*Result, error) {
	start := time.Now()
	metrics.ChatTurnsActive.Inc()
	defer metrics.ChatTurnsActive.Dec()

	turnID := h.newID()
	ctx, span := h.obs.StartSpan(ctx, "chat.turn", attribute.String("turn.id", turnID))

	log := h.logger.WithFields(map[string]interface{}{
		"turnId":  turnID,
		"traceId": observability.TraceID(ctx),
	})

	result, outcome, err := h.process(ctx, log, turnID, req)

	elapsed := time.Since(start)
	metrics.ChatTurns.WithLabelValues(outcome).Inc()
	metrics.ChatTurnDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	h.obs.RecordTurn(ctx, outcome, elapsed)
	observability.EndSpan(span, err)

	if err != nil {
		log.Error("turn failed", map[string]interface{}{
			"outcome":    outcome,
			"error":      err.Error(),
			"durationMs": elapsed.Milliseconds(),
		})
		return nil, err
	}

	log.Info("turn completed", map[string]interface{}{
		"forwardedTurns": result.ForwardedTurns,
		"leadSaved":      result.Response.LeadSaved,
		"failedWrites":   len(result.Dispatch.Failed()),
		"durationMs":     elapsed.Milliseconds(),
	})
	return result, nil
}

func (h *Handler) process(ctx context.Context, log logger.Logger, turnID string, req models.ChatRequest) (*Result, string, error) {
	if req.Messages == nil {
		return nil, outcomeValidationFailed, stderrors.NewRequestValidationError("messages missing")
	}

	turns := RecentTurns(req.Messages, h.config.MaxHistory)
	log.Debug("generating reply", map[string]interface{}{
		"received":  len(req.Messages),
		"forwarded": len(turns),
	})

	genCtx, genSpan := h.obs.StartSpan(ctx, "chat.generate", attribute.Int("turns", len(turns)))
	text, err := h.generator.Generate(genCtx, h.config.Persona, turns)
	observability.EndSpan(genSpan, err)
	if err != nil {
		if _, ok := stderrors.AsStandardError(err); !ok {
			err = stderrors.NewGenerationFailedError(err)
		}
		return nil, outcomeGenerationFailed, err
	}

	_, extractSpan := h.obs.StartSpan(ctx, "chat.extract")
	extracted := h.extractor.Extract(extracttags.Input{Text: text, LeadCaptured: req.LeadCaptured})
	observability.EndSpan(extractSpan, nil)

	result := &Result{
		TurnID:         turnID,
		ForwardedTurns: len(turns),
		ParseFailures:  extracted.ParseFailures,
		LeadSuppressed: extracted.LeadSuppressed,
		Response:       models.ChatResponse{Reply: extracted.Reply},
	}

	if extracted.Lead != nil || extracted.Appointment != nil {
		dispatchCtx, dispatchSpan := h.obs.StartSpan(ctx, "chat.dispatch")
		result.Dispatch = h.dispatcher.Dispatch(dispatchCtx, dispatchrecords.Input{
			TurnID:      turnID,
			Lead:        extracted.Lead,
			Appointment: extracted.Appointment,
		})
		dispatchSpan.SetAttributes(attribute.Int("writes.failed", len(result.Dispatch.Failed())))
		observability.EndSpan(dispatchSpan, nil)
		result.Response.LeadSaved = result.Dispatch.LeadSaved
	}

	return result, outcomeOK, nil
}

// RecentTurns keeps the user and assistant turns of history, in order, and
// returns at most the last limit of them.
func RecentTurns(history []models.Turn, limit int) []models.Turn {
	turns := make([]models.Turn, 0, len(history))
	for _, t := range history {
		if t.Forwardable() {
			turns = append(turns, t)
		}
	}
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns
}
