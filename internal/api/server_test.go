package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chat-intake/internal/common/database"
	stderrors "chat-intake/internal/common/errors"
	"chat-intake/internal/common/logger"
	"chat-intake/internal/models"
	dispatchrecords "chat-intake/internal/workers/capture/dispatch-records"
	extracttags "chat-intake/internal/workers/capture/extract-tags"
	normalizeschedule "chat-intake/internal/workers/capture/normalize-schedule"
	processturn "chat-intake/internal/workers/conversation/process-turn"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeProcessor struct {
	result *processturn.Result
	err    error
	calls  int
	last   models.ChatRequest
}

func (f *fakeProcessor) Process(ctx context.Context, req models.ChatRequest) (*processturn.Result, error) {
	f.calls++
	f.last = req
	return f.result, f.err
}

func createTestRouter(t *testing.T, proc TurnProcessor, checks ...ReadinessCheck) http.Handler {
	return NewRouter(Options{
		Processor: proc,
		Logger:    logger.NewTestLogger(t),
		Checks:    checks,
		Metrics:   http.NotFoundHandler(),
	})
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

// ==========================
// Chat Endpoint
// ==========================

func TestChat_Success(t *testing.T) {
	proc := &fakeProcessor{result: &processturn.Result{
		Response: models.ChatResponse{Reply: "Thanks Jane!", LeadSaved: true},
	}}
	h := createTestRouter(t, proc)

	rr := doRequest(h, http.MethodPost, ChatPath,
		`{"messages": [{"role": "user", "content": "I'm Jane"}], "leadCaptured": false}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, map[string]interface{}{"reply": "Thanks Jane!", "leadSaved": true}, decodeBody(t, rr))
	assert.Equal(t, "I'm Jane", proc.last.Messages[0].Content)
}

func TestChat_AcceptsTurnsThatAreFilteredLater(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "system turn without content", body: `{"messages": [{"role": "system"}, {"role": "user", "content": "hi"}]}`},
		{name: "tool turn with array content", body: `{"messages": [{"role": "tool", "content": [{"type": "text"}]}, {"role": "user", "content": "hi"}]}`},
		{name: "turn without role", body: `{"messages": [{"content": 3}, {"role": "user", "content": "hi"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{result: &processturn.Result{
				Response: models.ChatResponse{Reply: "Hello!"},
			}}
			h := createTestRouter(t, proc)

			rr := doRequest(h, http.MethodPost, ChatPath, tt.body)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, map[string]interface{}{"reply": "Hello!", "leadSaved": false}, decodeBody(t, rr))
			require.Equal(t, 1, proc.calls)
			assert.Equal(t,
				[]models.Turn{{Role: models.RoleUser, Content: "hi"}},
				processturn.RecentTurns(proc.last.Messages, 20))
		})
	}
}

func TestChat_RejectsInvalidRequestsBeforeProcessing(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ``},
		{name: "not json", body: `hello`},
		{name: "messages missing", body: `{"leadCaptured": true}`},
		{name: "messages not an array", body: `{"messages": {"role": "user"}}`},
		{name: "turn content not a string", body: `{"messages": [{"role": "user", "content": 7}]}`},
		{name: "leadCaptured not a boolean", body: `{"messages": [], "leadCaptured": "no"}`},
		{name: "body too large", body: `{"messages": [{"role": "user", "content": "` + strings.Repeat("a", 1<<20) + `"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{}
			h := createTestRouter(t, proc)

			rr := doRequest(h, http.MethodPost, ChatPath, tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, map[string]interface{}{"error": "Messages required"}, decodeBody(t, rr))
			assert.Equal(t, 0, proc.calls)
		})
	}
}

func TestChat_MethodNotAllowed(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			proc := &fakeProcessor{}
			rr := doRequest(createTestRouter(t, proc), method, ChatPath, "")

			assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
			assert.Equal(t, map[string]interface{}{"error": "Method not allowed"}, decodeBody(t, rr))
			assert.Equal(t, 0, proc.calls)
		})
	}
}

func TestChat_ProcessingFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "generation failed", err: stderrors.NewGenerationFailedError(errors.New("status 529"))},
		{name: "generation timeout", err: stderrors.NewGenerationTimeoutError(context.DeadlineExceeded)},
		{name: "unexpected error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestRouter(t, &fakeProcessor{err: tt.err})

			rr := doRequest(h, http.MethodPost, ChatPath, `{"messages": [{"role": "user", "content": "Hi"}]}`)

			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			body := decodeBody(t, rr)
			assert.Equal(t, map[string]interface{}{"error": "Internal server error"}, body)
		})
	}
}

// ==========================
// Operational Endpoints
// ==========================

func TestHealthAndReady(t *testing.T) {
	ok := ReadinessCheck{Name: "postgres", Ping: func(ctx context.Context) error { return nil }}
	down := ReadinessCheck{Name: "redis", Ping: func(ctx context.Context) error { return errors.New("dial tcp: refused") }}

	h := createTestRouter(t, &fakeProcessor{}, ok)
	rr := doRequest(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decodeBody(t, rr)["status"])

	rr = doRequest(h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	h = createTestRouter(t, &fakeProcessor{}, ok, down)
	rr = doRequest(h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, []interface{}{"redis"}, decodeBody(t, rr)["failed"])
}

// ==========================
// End To End
// ==========================

type scriptedGenerator struct {
	reply string
}

func (g scriptedGenerator) Generate(ctx context.Context, system string, turns []models.Turn) (string, error) {
	return g.reply, nil
}

func TestChat_EndToEndAppointment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	log := logger.NewTestLogger(t)
	queueKey := "notifications:pending"

	dispatcher := dispatchrecords.NewHandler(
		&dispatchrecords.Config{LeadSource: "website_chatbot", AdminEmail: "admin@example.com", AdminName: "Admin"},
		database.NewRecordStore(db),
		database.NewNotificationQueue(client, queueKey),
		normalizeschedule.NewHandler(normalizeschedule.LoadConfig(), log),
		log,
	)
	processor := processturn.NewHandler(
		&processturn.Config{MaxHistory: 20, Persona: "persona"},
		scriptedGenerator{reply: "You're booked, Jane! " +
			`<appointment>{"name":"Jane","email":"jane@x.com","date":"2026-02-20","time":"2pm"}</appointment>`},
		extracttags.NewHandler(log),
		dispatcher,
		nil,
		log,
	)

	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs(sqlmock.AnyArg(), "Jane", "jane@x.com", nil, "Consultation requested for 2026-02-20 at 2pm",
			"website_chatbot", "new", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO appointments`).
		WithArgs(sqlmock.AnyArg(), "Free Consultation - Jane", sqlmock.AnyArg(), "2026-02-20", "14:00:00", "15:00:00",
			"Consultation", "Scheduled", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO email_queue`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	h := NewRouter(Options{Processor: processor, Logger: log, Metrics: http.NotFoundHandler()})
	rr := doRequest(h, http.MethodPost, ChatPath,
		`{"messages": [{"role": "user", "content": "Book me for Feb 20 at 2pm"}], "leadCaptured": true}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]interface{}{"reply": "You're booked, Jane!", "leadSaved": false}, decodeBody(t, rr))
	assert.NoError(t, mock.ExpectationsWereMet())

	queued, err := mr.List(queueKey)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	var ev models.NotificationEvent
	require.NoError(t, json.Unmarshal([]byte(queued[0]), &ev))
	assert.Equal(t, "New Consultation Request from Jane", ev.Subject)
	assert.Equal(t, "admin@example.com", ev.ToEmail)
}

func TestChat_EndToEndStoreOutageKeepsReply(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	log := logger.NewTestLogger(t)
	dispatcher := dispatchrecords.NewHandler(
		&dispatchrecords.Config{LeadSource: "website_chatbot"},
		database.NewRecordStore(db), nil,
		normalizeschedule.NewHandler(nil, log), log,
	)
	processor := processturn.NewHandler(
		&processturn.Config{MaxHistory: 20},
		scriptedGenerator{reply: `Thanks Sam! <lead>{"name":"Sam","phone":"555-0101"}</lead>`},
		extracttags.NewHandler(log), dispatcher, nil, log,
	)

	mock.ExpectExec(`INSERT INTO leads`).WillReturnError(errors.New("connection refused"))

	h := NewRouter(Options{Processor: processor, Logger: log, Metrics: http.NotFoundHandler()})
	rr := doRequest(h, http.MethodPost, ChatPath, `{"messages": [{"role": "user", "content": "Sam, 555-0101"}]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]interface{}{"reply": "Thanks Sam!", "leadSaved": false}, decodeBody(t, rr))
	assert.NoError(t, mock.ExpectationsWereMet())
}
