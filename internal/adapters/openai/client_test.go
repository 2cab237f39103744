package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"familycal/internal/domain"
	"familycal/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, h http.HandlerFunc, bc BreakerConfig) (*Client, *metrics.Collector) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	collector := metrics.NewCollector()
	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/", MaxRetries: -1}, bc, collector, testLogger())
	return c, collector
}

func chatReply(w http.ResponseWriter, content string, choices bool) {
	w.Header().Set("Content-Type", "application/json")
	list := "[]"
	if choices {
		b, _ := json.Marshal(content)
		list = fmt.Sprintf(`[{"index":0,"finish_reason":"stop","logprobs":null,"message":{"role":"assistant","refusal":null,"content":%s}}]`, b)
	}
	fmt.Fprintf(w, `{"id":"chatcmpl-1","object":"chat.completion","created":0,"model":"gpt-4o-mini","choices":%s}`, list)
}

func TestClient_Complete(t *testing.T) {
	var body map[string]any
	c, collector := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		chatReply(w, `{"title":"Gym"}`, true)
	}, DefaultBreakerConfig())

	got, err := c.Complete(context.Background(), "system prompt", "gym at 6")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Gym"}`, got)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.InDelta(t, 0.1, body["temperature"], 1e-9)
	assert.EqualValues(t, 300, body["max_tokens"])
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "gym at 6", msgs[1].(map[string]any)["content"])
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.AIRequests.WithLabelValues("complete", "ok")))
}

func TestClient_CompleteEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
		choices bool
	}{
		{name: "no choices", choices: false},
		{name: "blank content", content: "  ", choices: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				chatReply(w, tt.content, tt.choices)
			}, DefaultBreakerConfig())

			_, err := c.Complete(context.Background(), "s", "u")
			require.ErrorIs(t, err, domain.ErrNoAIResponse)
		})
	}
}

func TestClient_BreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	c, collector := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}, BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureThreshold: 0.5, MinRequests: 2})

	for i := 0; i < 2; i++ {
		_, err := c.Complete(context.Background(), "s", "u")
		require.ErrorIs(t, err, domain.ErrNoAIResponse)
	}
	_, err := c.Complete(context.Background(), "s", "u")
	require.ErrorIs(t, err, domain.ErrNoAIResponse)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, 3.0, testutil.ToFloat64(collector.AIRequests.WithLabelValues("complete", "error")))
}

func TestClient_Transcribe(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "he", r.FormValue("language"))
		file, header, err := r.FormFile("file")
		if assert.NoError(t, err) {
			defer file.Close()
			raw, _ := io.ReadAll(file)
			assert.Equal(t, "OggS-audio", string(raw))
			assert.Equal(t, "voice.ogg", header.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"text":" dentist tomorrow at nine "}`)
	}, DefaultBreakerConfig())

	got, err := c.Transcribe(context.Background(), strings.NewReader("OggS-audio"), "voice.ogg")
	require.NoError(t, err)
	assert.Equal(t, "dentist tomorrow at nine", got)
}
