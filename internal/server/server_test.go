package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-match/internal/analysis"
	"github.com/jonathan/resume-match/internal/llm/llmtest"
	"github.com/jonathan/resume-match/internal/pipeline"
	"github.com/jonathan/resume-match/internal/presentation"
	"github.com/jonathan/resume-match/internal/server/ratelimit"
)

const goodFitPayload = `{"score":85,"summary":"Good fit","strengths":["A"],"missingSkills":["B"],"recommendations":[{"category":"Skills","suggestion":"Add X","example":"X: used in Y"}]}`

var (
	validResume = strings.Repeat("Go engineer with distributed systems background. ", 3)
	validJD     = strings.Repeat("Seeking backend engineer fluent in Go and SQL. ", 3)
)

func newTestServer(t *testing.T, client *llmtest.Client, rl *ratelimit.Config) (*Server, *pipeline.Pipeline) {
	t.Helper()
	if rl == nil {
		rl = &ratelimit.Config{Enabled: false}
	}
	p := pipeline.New(analysis.New(client))
	s, err := New(Config{Port: 0, Pipeline: p, RateLimit: rl})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, p
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) presentation.View {
	t.Helper()
	var v presentation.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestNew_RequiresPipeline(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &llmtest.Client{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAnalyzeAPI_Success(t *testing.T) {
	client := &llmtest.Client{Response: goodFitPayload}
	s, _ := newTestServer(t, client, nil)

	w := postJSON(t, s.Handler(), "/api/analyze", map[string]string{
		"resume_text":          validResume,
		"job_description_text": validJD,
	})

	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	assert.Equal(t, pipeline.PhaseSucceeded, v.Phase)
	assert.True(t, v.ShowResult)
	assert.False(t, v.ShowError)
	require.NotNil(t, v.Gauge)
	assert.Equal(t, 85.0, v.Gauge.Score)
	assert.Equal(t, presentation.ColorSuccess, v.Gauge.Color)
	assert.InDelta(t, 42.45, v.Gauge.DashOffset, 1e-9)
	assert.Equal(t, "Good fit", v.Summary)
	assert.Equal(t, []string{"A"}, v.Strengths)
	assert.Equal(t, []string{"B"}, v.MissingSkills)
	require.Len(t, v.Recommendations, 1)
	assert.Equal(t, "Skills", v.Recommendations[0].Category)
	assert.Len(t, client.Calls(), 1)
}

func TestAnalyzeAPI_ShortInput(t *testing.T) {
	client := &llmtest.Client{Response: goodFitPayload}
	s, _ := newTestServer(t, client, nil)

	w := postJSON(t, s.Handler(), "/api/analyze", map[string]string{
		"resume_text":          "short text",
		"job_description_text": "short text",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	v := decodeView(t, w)
	assert.True(t, v.ShowError)
	assert.Equal(t, presentation.MessageValidation, v.ErrorMessage)
	assert.Nil(t, v.Gauge)
	assert.Empty(t, client.Calls(), "invalid input must not reach the model")
}

func TestAnalyzeAPI_RemoteFailure(t *testing.T) {
	tests := []struct {
		name   string
		client *llmtest.Client
	}{
		{name: "transport error", client: &llmtest.Client{Err: errors.New("connection reset")}},
		{name: "empty payload", client: &llmtest.Client{Response: ""}},
		{name: "malformed payload", client: &llmtest.Client{Response: "{not json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, tt.client, nil)

			w := postJSON(t, s.Handler(), "/api/analyze", map[string]string{
				"resume_text":          validResume,
				"job_description_text": validJD,
			})

			assert.Equal(t, http.StatusBadGateway, w.Code)
			v := decodeView(t, w)
			assert.True(t, v.ShowError)
			assert.False(t, v.ShowResult)
			assert.Equal(t, presentation.MessageRemote, v.ErrorMessage)
			assert.NotContains(t, w.Body.String(), "connection reset")
		})
	}
}

func TestAnalyzeAPI_InvalidJSON(t *testing.T) {
	s, _ := newTestServer(t, &llmtest.Client{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("{broken"))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestAnalyzeAPI_BusyRejected(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	client := &llmtest.Client{
		Response: goodFitPayload,
		Hook: func(context.Context) {
			close(entered)
			<-release
		},
	}
	s, p := newTestServer(t, client, nil)
	h := s.Handler()
	body := map[string]string{"resume_text": validResume, "job_description_text": validJD}

	var wg sync.WaitGroup
	var first *httptest.ResponseRecorder
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = postJSON(t, h, "/api/analyze", body)
	}()

	<-entered
	assert.True(t, p.Snapshot().Busy())

	second := postJSON(t, h, "/api/analyze", body)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Contains(t, second.Body.String(), pipeline.ErrBusy.Error())

	close(release)
	wg.Wait()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Len(t, client.Calls(), 1)
}

func TestStateEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &llmtest.Client{Response: goodFitPayload}, nil)
	h := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pipeline.PhaseIdle, decodeView(t, w).Phase)

	postJSON(t, h, "/api/analyze", map[string]string{"resume_text": validResume, "job_description_text": validJD})

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	v := decodeView(t, w)
	assert.Equal(t, pipeline.PhaseSucceeded, v.Phase)
	assert.NotEmpty(t, v.SubmissionID)
}

func TestIndexPage_Idle(t *testing.T) {
	s, _ := newTestServer(t, &llmtest.Client{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, `name="resume_text"`)
	assert.Contains(t, body, `name="job_description_text"`)
	assert.Contains(t, body, "at least 50 characters")
	assert.Contains(t, body, "Analyze Fit")
	assert.NotContains(t, body, `role="alert"`)
	assert.NotContains(t, body, "stroke-dashoffset")
}

func TestIndexPage_UnknownPath(t *testing.T) {
	s, _ := newTestServer(t, &llmtest.Client{}, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func postForm(h http.Handler, resume, jd string) *httptest.ResponseRecorder {
	form := url.Values{"resume_text": {resume}, "job_description_text": {jd}}
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAnalyzeForm_RendersResult(t *testing.T) {
	s, _ := newTestServer(t, &llmtest.Client{Response: goodFitPayload}, nil)

	w := postForm(s.Handler(), validResume, validJD)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `stroke="#22c55e"`)
	assert.Contains(t, body, `stroke-dashoffset="42.45"`)
	assert.Contains(t, body, `stroke-dasharray="283"`)
	assert.Contains(t, body, "Good fit")
	assert.Contains(t, body, "<li>A</li>")
	assert.Contains(t, body, "<li>B</li>")
	assert.Contains(t, body, "Add X")
	assert.Contains(t, body, "X: used in Y")
	assert.Contains(t, body, strings.TrimSpace(validResume), "submitted text is kept in the form")
}

func TestAnalyzeForm_FractionalScoreShownAsGiven(t *testing.T) {
	payload := strings.Replace(goodFitPayload, `"score":85`, `"score":72.5`, 1)
	s, _ := newTestServer(t, &llmtest.Client{Response: payload}, nil)

	w := postForm(s.Handler(), validResume, validJD)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `aria-label="Match score 72.5"`)
	assert.Contains(t, body, `>72.5</text>`)
	assert.Contains(t, body, `stroke="#eab308"`)
}

func TestAnalyzeForm_ValidationMessage(t *testing.T) {
	client := &llmtest.Client{Response: goodFitPayload}
	s, _ := newTestServer(t, client, nil)

	w := postForm(s.Handler(), "too short", validJD)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "at least 50 characters each")
	assert.Contains(t, body, `role="alert"`)
	assert.NotContains(t, body, "stroke-dashoffset")
	assert.Empty(t, client.Calls())
}

func TestAnalyzeForm_EscapesInput(t *testing.T) {
	s, _ := newTestServer(t, &llmtest.Client{Response: goodFitPayload}, nil)

	w := postForm(s.Handler(), validResume+"<script>alert(1)</script>", validJD)

	body := w.Body.String()
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;alert(1)&lt;/script&gt;")
}

func TestEventsStream(t *testing.T) {
	s, _ := newTestServer(t, &llmtest.Client{Response: goodFitPayload}, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan presentation.View, 16)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		event := ""
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: ") && event == "state":
				var v presentation.View
				if json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &v) == nil {
					events <- v
				}
			}
		}
	}()

	first, ok := <-events
	require.True(t, ok)
	assert.Equal(t, pipeline.PhaseIdle, first.Phase)

	body, err := json.Marshal(map[string]string{"resume_text": validResume, "job_description_text": validJD})
	require.NoError(t, err)
	post, err := http.Post(ts.URL+"/api/analyze", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	post.Body.Close() //nolint:errcheck

	for v := range events {
		if v.Phase == pipeline.PhaseSucceeded {
			require.NotNil(t, v.Gauge)
			assert.Equal(t, 85.0, v.Gauge.Score)
			return
		}
	}
	t.Fatal("stream ended before the succeeded state arrived")
}

func TestCORSMiddleware(t *testing.T) {
	s, _ := newTestServer(t, &llmtest.Client{}, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORSMiddleware_OPTIONS(t *testing.T) {
	client := &llmtest.Client{}
	s, _ := newTestServer(t, client, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/analyze", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, client.Calls())
}

func TestRateLimit_AnalyzeEndpoint(t *testing.T) {
	rl := &ratelimit.Config{Enabled: true, Rules: ratelimit.DefaultRules(1, 1)}
	s, _ := newTestServer(t, &llmtest.Client{Response: goodFitPayload}, rl)
	h := s.Handler()
	body := map[string]string{"resume_text": validResume, "job_description_text": validJD}

	first := postJSON(t, h, "/api/analyze", body)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := postJSON(t, h, "/api/analyze", body)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "rate_limit_exceeded")

	// Reads are never limited
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExtractClientID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5123"
	assert.Equal(t, "203.0.113.7", extractClientID(req))

	req.RemoteAddr = "not-an-addr"
	assert.Equal(t, "not-an-addr", extractClientID(req))
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	p := pipeline.New(analysis.New(&llmtest.Client{}))
	s, err := New(Config{Port: 0, Pipeline: p, RateLimit: &ratelimit.Config{Enabled: false}})
	require.NoError(t, err)
	s.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestEventsEndpoint_UnencodableStateEndsWithError(t *testing.T) {
	// encoding/json rejects years outside [0,9999]
	farFuture := func() time.Time { return time.Date(10000, time.January, 1, 0, 0, 0, 0, time.UTC) }
	p := pipeline.New(analysis.New(&llmtest.Client{}), pipeline.WithClock(farFuture))
	s, err := New(Config{Port: 0, Pipeline: p, RateLimit: &ratelimit.Config{Enabled: false}})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	body := w.Body.String()
	assert.NotContains(t, body, "event: state")
	assert.Contains(t, body, "event: error\ndata: {\"error\":\"failed to stream analysis state\"}\n\n")
}

func TestSSEWriter(t *testing.T) {
	w := httptest.NewRecorder()
	sse, err := NewSSEWriter(w)
	require.NoError(t, err)

	require.NoError(t, sse.WriteEvent("state", map[string]string{"phase": "idle"}))
	require.NoError(t, sse.WritePing())
	sse.WriteError("boom")

	body := w.Body.String()
	assert.Contains(t, body, "event: state\ndata: {\"phase\":\"idle\"}\n\n")
	assert.Contains(t, body, ": ping\n\n")
	assert.Contains(t, body, "event: error\ndata: {\"error\":\"boom\"}\n\n")
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
}
