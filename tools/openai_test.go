package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gradebot/models"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path          string
	Authorization string
	Model         string `json:"model"`
	Messages      []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type fakeProvider struct {
	*httptest.Server
	hits atomic.Int32
	last atomic.Pointer[capturedRequest]
}

func newFakeProvider(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *fakeProvider {
	t.Helper()
	f := &fakeProvider{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		var req capturedRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		req.Path = r.URL.Path
		req.Authorization = r.Header.Get("Authorization")
		f.last.Store(&req)
		handler(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func respondJSON(status int, body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func newTestGenerator(t *testing.T, url string, timeout time.Duration) *Generator {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	return NewGenerator(GeneratorConfig{
		BaseURL: url,
		APIKey:  "sk-test",
		Model:   "test-model",
		Timeout: timeout,
	}, log)
}

func testPayload() Payload {
	return NewComposer().Compose(models.AssignmentRecord{Question: "Q", Answer: "A"}, "my answer\n               ")
}

const oneChoice = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1760000000,
	"model": "test-model",
	"choices": [
		{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "**Feedback:** Correct.\n- ✅ uses geom_point"}},
		{"index": 1, "finish_reason": "stop", "message": {"role": "assistant", "content": "second"}}
	]
}`

func TestGenerateReturnsFirstChoice(t *testing.T) {
	srv := newFakeProvider(t, respondJSON(http.StatusOK, oneChoice))
	g := newTestGenerator(t, srv.URL, time.Second)

	text, err := g.Generate(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, "**Feedback:** Correct.\n- ✅ uses geom_point", text)

	req := srv.last.Load()
	require.NotNil(t, req)
	assert.Equal(t, "/chat/completions", req.Path)
	assert.Equal(t, "Bearer sk-test", req.Authorization)
	assert.Equal(t, "test-model", req.Model)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "user", req.Messages[1].Role)
	assert.Equal(t, "user", req.Messages[2].Role)
	assert.Equal(t, "my answer\n               ", req.Messages[2].Content)
	assert.EqualValues(t, 1, srv.hits.Load())
}

func TestGenerateWithoutChoices(t *testing.T) {
	srv := newFakeProvider(t, respondJSON(http.StatusOK,
		`{"id":"chatcmpl-2","object":"chat.completion","created":1760000000,"model":"test-model","choices":[]}`))
	g := newTestGenerator(t, srv.URL, time.Second)

	text, err := g.Generate(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, NoResponseText, text)
}

func TestGenerateClassifiesFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, PROVIDER_AUTH},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, PROVIDER_RATE_LIMITED},
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`, PROVIDER_ERROR},
		{"malformed body", http.StatusOK, `not json at all`, PROVIDER_TRANSPORT},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeProvider(t, respondJSON(tt.status, tt.body))
			g := newTestGenerator(t, srv.URL, time.Second)

			text, err := g.Generate(context.Background(), testPayload())
			require.Error(t, err)
			assert.Empty(t, text)

			var perr *ProviderError
			require.True(t, errors.As(err, &perr), "got %T", err)
			assert.Equal(t, tt.kind, perr.Kind)
			assert.EqualValues(t, 1, srv.hits.Load(), "provider must be called exactly once")
		})
	}
}

func TestGenerateTimeout(t *testing.T) {
	srv := newFakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	g := newTestGenerator(t, srv.URL, 50*time.Millisecond)

	_, err := g.Generate(context.Background(), testPayload())
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, PROVIDER_TIMEOUT, perr.Kind)
}

func TestGenerateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := newTestGenerator(t, url, time.Second)
	_, err := g.Generate(context.Background(), testPayload())

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, PROVIDER_TRANSPORT, perr.Kind)
}
