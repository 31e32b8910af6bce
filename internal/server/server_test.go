package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Shreyr69/hackrx/internal/answer"
)

// fakeRunner returns scripted results without touching the network.
type fakeRunner struct {
	results []answer.Result
	err     error
	// lastURL and lastQuestions capture the most recent Run call.
	lastURL       string
	lastQuestions []string
}

func (f *fakeRunner) Run(_ context.Context, documentURL string, questions []string) ([]answer.Result, error) {
	f.lastURL = documentURL
	f.lastQuestions = questions
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

// newTestServer builds a Server around a fake runner, returning the handler.
func newTestServer(t *testing.T, run runner, cfg *Config) http.Handler {
	t.Helper()
	s, err := New(run, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.stopRL)
	return s.httpServer.Handler
}

func postRun(t *testing.T, h http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hackrx/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleRun_Success(t *testing.T) {
	t.Parallel()
	run := &fakeRunner{results: []answer.Result{
		{Answer: "30 days"},
		{Answer: answer.NotFound},
	}}
	h := newTestServer(t, run, nil)

	rec := postRun(t, h, `{"documents":"https://example.com/p.pdf","questions":["q1","q2"]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp runResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Answers) != 2 || resp.Answers[0] != "30 days" || resp.Answers[1] != answer.NotFound {
		t.Errorf("answers = %v", resp.Answers)
	}
	if run.lastURL != "https://example.com/p.pdf" {
		t.Errorf("runner got url %q", run.lastURL)
	}
}

func TestHandleRun_PerQuestionErrorMarker(t *testing.T) {
	t.Parallel()
	run := &fakeRunner{results: []answer.Result{
		{Answer: "ok"},
		{Err: errors.New("generation failed")},
		{Answer: "also ok"},
	}}
	h := newTestServer(t, run, nil)

	rec := postRun(t, h, `{"documents":"u","questions":["a","b","c"]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp runResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Answers[1] != errorMarker {
		t.Errorf("failed position = %q, want error marker", resp.Answers[1])
	}
	if resp.Answers[0] != "ok" || resp.Answers[2] != "also ok" {
		t.Errorf("sibling answers disturbed: %v", resp.Answers)
	}
}

func TestHandleRun_RequestLevelFailure(t *testing.T) {
	t.Parallel()
	run := &fakeRunner{err: errors.New("ingest failed")}
	h := newTestServer(t, run, nil)

	rec := postRun(t, h, `{"documents":"u","questions":["a"]}`, nil)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestHandleRun_Validation(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing documents", `{"questions":["q"]}`},
		{"missing questions", `{"documents":"u"}`},
		{"empty questions", `{"documents":"u","questions":[]}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h := newTestServer(t, &fakeRunner{}, nil)
			rec := postRun(t, h, tc.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestAuth_MissingAndInvalidToken(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &fakeRunner{results: []answer.Result{{Answer: "a"}}}, &Config{APIKey: "secret"})

	rec := postRun(t, h, `{"documents":"u","questions":["q"]}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want 401", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); !strings.Contains(got, "Bearer") {
		t.Errorf("missing WWW-Authenticate challenge, got %q", got)
	}

	rec = postRun(t, h, `{"documents":"u","questions":["q"]}`,
		map[string]string{"Authorization": "Bearer wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("invalid token: status = %d, want 401", rec.Code)
	}

	rec = postRun(t, h, `{"documents":"u","questions":["q"]}`,
		map[string]string{"Authorization": "Bearer secret"})
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", rec.Code)
	}
}

func TestAuth_DisabledWhenNoKey(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &fakeRunner{results: []answer.Result{{Answer: "a"}}}, nil)
	rec := postRun(t, h, `{"documents":"u","questions":["q"]}`, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with auth disabled", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &fakeRunner{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestReady_ReportsFailingDependency(t *testing.T) {
	t.Parallel()
	cfg := &Config{Pingers: []Pinger{
		PingerFunc{Label: "embedder", Fn: func(context.Context) error { return nil }},
		PingerFunc{Label: "qdrant", Fn: func(context.Context) error { return errors.New("unreachable") }},
	}}
	h := newTestServer(t, &fakeRunner{}, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var resp readyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Ready {
		t.Error("ready should be false")
	}
	if len(resp.Checks) != 2 || !resp.Checks[0].OK || resp.Checks[1].OK {
		t.Errorf("checks = %+v", resp.Checks)
	}
}

func TestReady_NoPingersIsOK(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &fakeRunner{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	t.Parallel()
	cfg := &Config{RateLimit: 1, RateBurst: 1}
	h := newTestServer(t, &fakeRunner{results: []answer.Result{{Answer: "a"}}}, cfg)

	first := postRun(t, h, `{"documents":"u","questions":["q"]}`, nil)
	if first.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", first.Code)
	}
	second := postRun(t, h, `{"documents":"u","questions":["q"]}`, nil)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &fakeRunner{results: []answer.Result{{Answer: "a"}}}, nil)

	postRun(t, h, `{"documents":"u","questions":["q"]}`, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "hackrx_run_requests_total") {
		t.Error("run counter missing from exposition")
	}
}
