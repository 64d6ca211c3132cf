package generator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig(baseURL string) domain.GeneratorConfig {
	return domain.GeneratorConfig{
		Provider:   "openai",
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Model:      "gpt-3.5-turbo",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		RateLimit:  1000,
		RateBurst:  1000,
	}
}

func completionResponse(text string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": text}},
		},
	}
}

func TestNewChatClient_Validation(t *testing.T) {
	logger := testLogger()

	_, err := NewChatClient(domain.GeneratorConfig{Provider: "azure"}, logger)
	assert.Error(t, err)

	_, err = NewChatClient(domain.GeneratorConfig{Provider: "openai", Model: "gpt-4"}, logger)
	assert.Error(t, err, "missing API key")

	_, err = NewChatClient(domain.GeneratorConfig{Provider: "groq", APIKey: "k"}, logger)
	assert.Error(t, err, "missing model")

	client, err := NewChatClient(domain.GeneratorConfig{Provider: "groq", APIKey: "k", Model: "llama3-8b"}, logger)
	require.NoError(t, err)
	assert.Equal(t, "groq", client.Provider())
	assert.Equal(t, "llama3-8b", client.Model())
}

func TestChatClient_Generate(t *testing.T) {
	var gotReq chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(completionResponse("Codeine is activated by CYP2D6."))
	}))
	defer server.Close()

	client, err := NewChatClient(testConfig(server.URL), testLogger())
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), "system role", "user prompt", 0.4, 220)
	require.NoError(t, err)
	assert.Equal(t, "Codeine is activated by CYP2D6.", text)

	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "system role", gotReq.Messages[0].Content)
	assert.Equal(t, "user prompt", gotReq.Messages[1].Content)
	assert.Equal(t, 0.4, gotReq.Temperature)
	assert.Equal(t, 220, gotReq.MaxTokens)
}

func TestChatClient_Generate_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(completionResponse("recovered"))
	}))
	defer server.Close()

	client, err := NewChatClient(testConfig(server.URL), testLogger())
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), "role", "prompt", 0.5, 100)
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestChatClient_Generate_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewChatClient(testConfig(server.URL), testLogger())
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "role", "prompt", 0.5, 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneratorUnavailable)
	assert.Equal(t, int32(1), calls.Load(), "4xx responses are not retried")
}

func TestChatClient_Generate_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewChatClient(testConfig(server.URL), testLogger())
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "role", "prompt", 0.5, 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneratorUnavailable)
	assert.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
}

func TestChatClient_Generate_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The server only detects client disconnects (which cancel
		// r.Context()) while reading, so drain the body first.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	client, err := NewChatClient(testConfig(server.URL), testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = client.Generate(ctx, "role", "prompt", 0.5, 100)
	require.Error(t, err)
}

func TestChatClient_Healthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client, err := NewChatClient(testConfig(server.URL), testLogger())
	require.NoError(t, err)

	assert.True(t, client.Healthy(context.Background()))
}

func TestChatClient_Healthy_Down(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	server.Close() // connection refused

	client, err := NewChatClient(testConfig(server.URL), testLogger())
	require.NoError(t, err)

	assert.False(t, client.Healthy(context.Background()))
}
