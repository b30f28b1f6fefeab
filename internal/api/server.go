// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	stderrors "chat-intake/internal/common/errors"
	"chat-intake/internal/common/logger"
	"chat-intake/internal/common/validation"
	"chat-intake/internal/models"
	processturn "chat-intake/internal/workers/conversation/process-turn"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ChatPath = "/api/chat"

	defaultMaxBodySize = 1 << 20 // 1MB
	readyTimeout       = 2 * time.Second
)

// TurnProcessor runs one chat turn.
type TurnProcessor interface {
	Process(ctx context.Context, req models.ChatRequest) (*processturn.Result, error)
}

// ReadinessCheck is one dependency probed by /ready.
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type Options struct {
	Processor    TurnProcessor
	Validator    *validation.Validator
	Logger       logger.Logger
	MaxBodyBytes int64
	Checks       []ReadinessCheck
	// Metrics overrides the /metrics handler. Defaults to promhttp.Handler().
	Metrics http.Handler
}

type server struct {
	opts   Options
	errors *stderrors.ErrorHandler
	logger logger.Logger
}

// NewRouter returns the HTTP surface of the service: the chat endpoint and
// the operational endpoints.
func NewRouter(opts Options) http.Handler {
	if opts.Validator == nil {
		opts.Validator = validation.NewChatRequestValidator()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodySize
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}

	s := &server{
		opts:   opts,
		errors: stderrors.NewErrorHandler(opts.Logger),
		logger: opts.Logger.WithFields(map[string]interface{}{"component": "api"}),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	r.Post(ChatPath, s.handleChat)
	r.Get("/health", handleHealth)
	r.Get("/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", opts.Metrics)

	return r
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errors.WriteHTTPError(w, r, stderrors.NewRequestValidationError("request body too large"))
			return
		}
		s.errors.WriteHTTPError(w, r, stderrors.NewRequestValidationError(err.Error()))
		return
	}

	req, invalid := s.opts.Validator.DecodeChatRequest(body)
	if invalid != nil {
		s.errors.WriteHTTPError(w, r, stderrors.NewRequestValidationError(
			strings.Join(invalid.GetErrorMessages(), "; ")))
		return
	}

	result, err := s.opts.Processor.Process(r.Context(), *req)
	if err != nil {
		s.errors.WriteHTTPError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result.Response)
}

func (s *server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.errors.WriteHTTPError(w, r, stderrors.NewMethodNotAllowedError(r.Method))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	var failed []string
	for _, check := range s.opts.Checks {
		if err := check.Ping(ctx); err != nil {
			s.logger.Warn("readiness check failed", map[string]interface{}{
				"check": check.Name,
				"error": err.Error(),
			})
			failed = append(failed, check.Name)
		}
	}

	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unavailable",
			"failed": failed,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
