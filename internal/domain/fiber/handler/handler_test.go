package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fadilmartias/hireprep/internal/config"
	"github.com/fadilmartias/hireprep/internal/metrics"
	"github.com/fadilmartias/hireprep/internal/middleware"
	"github.com/fadilmartias/hireprep/internal/ratelimit"
	"github.com/fadilmartias/hireprep/internal/testutil"
	"github.com/fadilmartias/hireprep/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
}

type testServer struct {
	app      *fiber.App
	cfg      *config.AppConfig
	sessions *testutil.SessionStore
	ai       *testutil.FakeAI
	files    *testutil.FakeFileStore
}

func newTestServer(t *testing.T, mutate func(*config.AppConfig)) *testServer {
	t.Helper()
	cfg := &config.AppConfig{
		Name:               "hireprep-test",
		RateLimitPerMinute: 10,
		MaxUploadSizeMB:    1,
		TrustProxy:         true,
		DefaultLanguage:    "en",
		Features:           config.FeatureFlags{CandidateFlow: true, InterviewerFlow: true},
	}
	if mutate != nil {
		mutate(cfg)
	}

	s := &testServer{
		cfg:      cfg,
		sessions: testutil.NewSessionStore(),
		ai:       testutil.NewFakeAI(`{"score": 81, "questions": ["Tell me about a hard outage"]}`),
		files:    &testutil.FakeFileStore{},
	}
	prompts := &testutil.PromptStore{}
	promptUC := usecase.NewPromptUsecase(prompts)
	require.NoError(t, promptUC.EnsureDefaults(context.Background()))

	m := metrics.New()
	flow := usecase.NewFlowUsecase(usecase.FlowDeps{
		Sessions:         s.sessions,
		Candidates:       &testutil.CandidateStore{},
		Interviewers:     &testutil.InterviewerStore{},
		Analyses:         &testutil.AnalysisStore{},
		JobPostings:      testutil.NewJobPostingStore(),
		Builder:          usecase.NewAnalysisBuilder(prompts, cfg.DefaultLanguage),
		AI:               s.ai,
		Files:            s.files,
		Events:           &testutil.FakePublisher{},
		Metrics:          m,
		App:              cfg,
		CVBucket:         "cvs",
		JobPostingBucket: "job-postings",
	})
	auth := usecase.NewAuthUsecase(&config.AdminConfig{
		Username:  "admin",
		Password:  "s3cret",
		JWTSecret: "test-secret",
	})

	s.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	Routes{
		Candidate:   NewCandidateHandler(flow, cfg.MaxUploadSizeBytes()),
		Interviewer: NewInterviewerHandler(flow, cfg.MaxUploadSizeBytes()),
		Admin:       NewAdminHandler(auth, promptUC),
		Health: NewHealthHandler(cfg.Name, map[string]HealthCheck{
			"db": func(context.Context) error { return nil },
		}),
		RateLimit: middleware.RateLimiter(middleware.RateLimiterConfig{
			Limiter: ratelimit.NewLimiter(cfg.RateLimitPerMinute),
			Stats:   ratelimit.NewMemoryStatsStore(),
			Metrics: m,
			Proxy:   ratelimit.ProxyPolicy{Trust: cfg.TrustProxy},
		}),
		AdminAuth: middleware.AdminAuth(auth),
		Metrics:   m.Handler(),
	}.Register(s.app)
	return s
}

var clientSeq int

// do sends a JSON request from a fresh client address unless headers say otherwise.
func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	clientSeq++
	req.Header.Set(fiber.HeaderXForwardedFor, fmt.Sprintf("203.0.113.%d", clientSeq%250+1))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func consentBody(storeData bool) fiber.Map {
	return fiber.Map{
		"first_name":             "Ada",
		"last_name":              "Lovelace",
		"email":                  "ada@example.com",
		"company":                "Analytical Engines",
		"consent_privacy_policy": true,
		"consent_terms":          true,
		"consent_store_data":     storeData,
		"consent_ai_processing":  true,
	}
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type sessionBody struct {
	SessionID     string                    `json:"session_id"`
	InterviewerID string                    `json:"interviewer_id"`
	CandidateID   string                    `json:"candidate_id"`
	CurrentStep   int                       `json:"current_step"`
	Status        string                    `json:"status"`
	Data          map[string]map[string]any `json:"data"`
}

func TestInterviewerFlowEndToEnd(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(t, http.MethodPost, "/api/interviewer/step1", consentBody(false), nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "consent_store_data")
	assert.Zero(t, s.sessions.Len())

	code, env = s.do(t, http.MethodPost, "/api/interviewer/step1", consentBody(true), nil)
	require.Equal(t, http.StatusCreated, code, env.Message)
	started := decode[sessionBody](t, env.Data)
	require.NotEmpty(t, started.SessionID)
	require.NotEmpty(t, started.InterviewerID)
	assert.Equal(t, 1, started.CurrentStep)

	code, env = s.do(t, http.MethodPost, "/api/interviewer/step2", fiber.Map{
		"session_id":  started.SessionID,
		"job_title":   "Staff Engineer",
		"job_posting": "Own the payments platform end to end.",
	}, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	step2 := decode[sessionBody](t, env.Data)
	assert.Equal(t, 2, step2.CurrentStep)
	assert.Equal(t, "Ada", step2.Data["step1"]["first_name"], "step 1 fields survive the merge")
	assert.Equal(t, true, step2.Data["step1"]["consent_store_data"])
	assert.Equal(t, "Staff Engineer", step2.Data["step2"]["job_title"])

	code, env = s.do(t, http.MethodPost, "/api/interviewer/step3", fiber.Map{
		"session_id":    started.SessionID,
		"weights":       map[string]float64{"go": 60, "communication": 40},
		"hard_blockers": []string{"no on-call"},
	}, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	done := decode[sessionBody](t, env.Data)
	assert.Equal(t, "completed", done.Status)

	code, env = s.do(t, http.MethodGet, "/interviewer/step3/suggestions/"+started.SessionID, nil, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var suggestions struct {
		Score       float64         `json:"score"`
		Suggestions json.RawMessage `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &suggestions))
	assert.Equal(t, 81.0, suggestions.Score)
	assert.Contains(t, string(suggestions.Suggestions), "hard outage")

	code, _ = s.do(t, http.MethodGet, "/api/interviewer/session/"+started.SessionID, nil, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestInterviewerStepOutOfOrder(t *testing.T) {
	s := newTestServer(t, nil)
	_, env := s.do(t, http.MethodPost, "/api/interviewer/step1", consentBody(true), nil)
	started := decode[sessionBody](t, env.Data)

	code, env := s.do(t, http.MethodPost, "/api/interviewer/step3", fiber.Map{
		"session_id": started.SessionID,
		"weights":    map[string]float64{"go": 100},
	}, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)
}

func TestRateLimitRejectsEleventhRequest(t *testing.T) {
	s := newTestServer(t, nil)
	headers := map[string]string{fiber.HeaderXForwardedFor: "198.51.100.7"}

	for i := 0; i < 10; i++ {
		code, _ := s.do(t, http.MethodGet, "/api/candidate/session/not-a-uuid", nil, headers)
		require.NotEqual(t, http.StatusTooManyRequests, code, "request %d", i+1)
	}
	code, env := s.do(t, http.MethodGet, "/api/candidate/session/not-a-uuid", nil, headers)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "rate limit exceeded", env.Message)

	code, _ = s.do(t, http.MethodGet, "/api/candidate/session/not-a-uuid", nil,
		map[string]string{fiber.HeaderXForwardedFor: "198.51.100.8"})
	assert.NotEqual(t, http.StatusTooManyRequests, code, "other clients keep their own window")

	code, _ = s.do(t, http.MethodGet, "/health", nil, headers)
	assert.Equal(t, http.StatusOK, code, "health is not rate limited")
}

func TestRateLimitIgnoresForgedLoopbackHop(t *testing.T) {
	s := newTestServer(t, nil)
	headers := map[string]string{fiber.HeaderXForwardedFor: "127.0.0.1, 203.0.113.50"}

	rejected := 0
	for i := 0; i < 15; i++ {
		code, _ := s.do(t, http.MethodGet, "/api/candidate/session/not-a-uuid", nil, headers)
		if code == http.StatusTooManyRequests {
			rejected++
		}
	}
	assert.Equal(t, 5, rejected)

	rejected = 0
	for i := 0; i < 15; i++ {
		forged := map[string]string{fiber.HeaderXForwardedFor: fmt.Sprintf("198.51.100.%d, 203.0.113.60", i+1)}
		code, _ := s.do(t, http.MethodGet, "/api/candidate/session/not-a-uuid", nil, forged)
		if code == http.StatusTooManyRequests {
			rejected++
		}
	}
	assert.Equal(t, 5, rejected, "rotating the client supplied hops does not reset the count")
}

func TestAdminPromptsRequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	code, _ := s.do(t, http.MethodGet, "/api/admin/prompts", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodGet, "/api/admin/prompts", nil,
		map[string]string{fiber.HeaderAuthorization: "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodPost, "/api/admin/login", fiber.Map{"username": "admin", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(t, http.MethodPost, "/api/admin/login", fiber.Map{"username": "admin", "password": "s3cret"}, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	login := decode[struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}](t, env.Data)
	require.NotEmpty(t, login.Token)
	auth := map[string]string{fiber.HeaderAuthorization: "Bearer " + login.Token}

	code, env = s.do(t, http.MethodGet, "/api/admin/prompts?page=1&page_size=10", nil, auth)
	require.Equal(t, http.StatusOK, code, env.Message)
	listed := decode[[]struct {
		ID      string `json:"id"`
		Key     string `json:"key"`
		Version int    `json:"version"`
	}](t, env.Data)
	require.NotEmpty(t, listed)

	code, env = s.do(t, http.MethodPut, "/api/admin/prompts/"+listed[0].ID, fiber.Map{
		"content": "Rewritten prompt for {first_name}.",
	}, auth)
	require.Equal(t, http.StatusOK, code, env.Message)
	updated := decode[struct {
		Version int `json:"version"`
	}](t, env.Data)
	assert.Equal(t, listed[0].Version+1, updated.Version)

	code, env = s.do(t, http.MethodGet, "/api/admin/prompts/"+listed[0].ID+"/versions", nil, auth)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Len(t, decode[[]json.RawMessage](t, env.Data), 2)

	code, _ = s.do(t, http.MethodPost, "/api/admin/prompts", fiber.Map{
		"key": listed[0].Key, "language": "en", "content": "dup",
	}, auth)
	assert.Equal(t, http.StatusConflict, code)
}

func TestCandidateCVMultipartUpload(t *testing.T) {
	s := newTestServer(t, nil)
	_, env := s.do(t, http.MethodPost, "/api/candidate/step1", consentBody(true), nil)
	started := decode[sessionBody](t, env.Data)
	require.NotEmpty(t, started.CandidateID)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("session_id", started.SessionID))
	part, err := w.CreateFormFile("cv_file", "resume.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Senior Go engineer, built rate limiters and queues."))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/candidate/step2", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderXForwardedFor, "192.0.2.10")
	code, env := s.send(t, req)
	require.Equal(t, http.StatusOK, code, env.Message)

	step2 := decode[sessionBody](t, env.Data)
	assert.Equal(t, 2, step2.CurrentStep)
	assert.Contains(t, step2.Data["step2"]["cv_text"], "rate limiters")
	assert.Equal(t, "Ada", step2.Data["step1"]["first_name"])
	require.Len(t, s.files.Uploads, 1)
	assert.Equal(t, "cvs", s.files.Uploads[0].Bucket)
}

func TestCandidateCVUploadTooLarge(t *testing.T) {
	s := newTestServer(t, nil)
	_, env := s.do(t, http.MethodPost, "/api/candidate/step1", consentBody(true), nil)
	started := decode[sessionBody](t, env.Data)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("session_id", started.SessionID))
	part, err := w.CreateFormFile("cv_file", "huge.txt")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), 1024*1024+1))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/candidate/step2", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	code, env := s.send(t, req)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Details), "cv_file")
}

func TestInterviewerWeightsFromMultipart(t *testing.T) {
	s := newTestServer(t, nil)
	_, env := s.do(t, http.MethodPost, "/api/interviewer/step1", consentBody(true), nil)
	started := decode[sessionBody](t, env.Data)
	code, env := s.do(t, http.MethodPost, "/api/interviewer/step2", fiber.Map{
		"session_id": started.SessionID, "job_title": "SRE", "job_posting": "Keep things up.",
	}, nil)
	require.Equal(t, http.StatusOK, code, env.Message)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("session_id", started.SessionID))
	require.NoError(t, w.WriteField("weights", "not json"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/interviewer/step3", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	code, env = s.send(t, req)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Details), "weights")

	buf.Reset()
	w = multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("session_id", started.SessionID))
	require.NoError(t, w.WriteField("weights", `{"linux": 50, "networking": 50}`))
	require.NoError(t, w.Close())
	req = httptest.NewRequest(http.MethodPost, "/api/interviewer/step3", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	code, env = s.send(t, req)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Contains(t, s.ai.LastPrompt(), "linux")
}

func TestDisabledFlowReturnsNotFound(t *testing.T) {
	s := newTestServer(t, func(c *config.AppConfig) { c.Features.CandidateFlow = false })

	code, _ := s.do(t, http.MethodPost, "/api/candidate/step1", consentBody(true), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodPost, "/api/interviewer/step1", consentBody(true), nil)
	assert.Equal(t, http.StatusCreated, code)
}

func TestHealthReportsFailingCheck(t *testing.T) {
	h := NewHealthHandler("hireprep-test", map[string]HealthCheck{
		"db":    func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	h.RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "connection refused")
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	s := newTestServer(t, nil)
	code, env := s.do(t, http.MethodGet, "/api/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodGet, "/api/candidate/session/not-a-uuid", nil, nil)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "hireprep_rate_limit_decisions_total")
}
