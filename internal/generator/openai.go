package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/pharmaguard-server/internal/domain"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultGroqBaseURL   = "https://api.groq.com/openai"

	chatCompletionsPath = "/v1/chat/completions"
	modelsPath          = "/v1/models"
)

// ChatClient talks to an OpenAI-compatible chat completions endpoint.
// The same client serves both supported providers; only the base URL,
// key, and model differ. Requests pass through a client-side rate
// limiter and a circuit breaker, and retryable upstream faults
// (timeouts, 429, 5xx) are retried with exponential backoff before
// surfacing as ErrGeneratorTimeout or ErrGeneratorUnavailable.
type ChatClient struct {
	provider string
	baseURL  string
	apiKey   string
	model    string

	maxRetries int
	retryDelay time.Duration

	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

// NewChatClient creates a chat completion client for the configured
// provider.
func NewChatClient(cfg domain.GeneratorConfig, logger *logrus.Logger) (*ChatClient, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	switch provider {
	case "openai":
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
	case "groq":
		if baseURL == "" {
			baseURL = defaultGroqBaseURL
		}
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("generator provider %s requires an API key", provider)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("generator provider %s requires a model", provider)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}

	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = 1
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = rateLimit
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        provider,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"provider": name,
				"from":     from.String(),
				"to":       to.String(),
			}).Warn("Generator circuit breaker state changed")
		},
	})

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &ChatClient{
		provider:   provider,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      strings.TrimSpace(cfg.Model),
		maxRetries: cfg.MaxRetries,
		retryDelay: retryDelay,
		httpClient: &http.Client{Transport: tr, Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rateLimit), burst),
		breaker:    breaker,
		logger:     logger,
	}, nil
}

// NewChatClientWithHTTPClient is intended for tests; it avoids network
// access by using a custom HTTP client.
func NewChatClientWithHTTPClient(cfg domain.GeneratorConfig, logger *logrus.Logger, httpClient *http.Client) (*ChatClient, error) {
	c, err := NewChatClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c, nil
}

// Provider returns the configured provider name.
func (c *ChatClient) Provider() string { return c.provider }

// Model returns the configured model identifier.
func (c *ChatClient) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content,omitempty"`
		} `json:"message,omitempty"`
	} `json:"choices"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// Generate requests one completion and returns its text. Retries stay
// inside this call; callers see a single success or a classified error.
func (c *ChatClient) Generate(ctx context.Context, systemRole, prompt string, temperature float64, maxTokens int) (string, error) {
	reqBody := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemRole},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	attempts := c.maxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return "", c.classify(ctx.Err())
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return "", c.classify(err)
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.doChatCompletion(ctx, reqBody)
		})
		if err != nil {
			lastErr = err
			if !isRetryable(err) {
				break
			}
			c.logger.WithFields(logrus.Fields{
				"provider": c.provider,
				"attempt":  attempt + 1,
				"error":    err.Error(),
			}).Warn("Generation attempt failed, retrying")
			continue
		}

		text := strings.TrimSpace(result.(string))
		if text == "" {
			lastErr = errors.New("empty upstream completion")
			continue
		}
		return text, nil
	}

	return "", c.classify(lastErr)
}

func (c *ChatClient) doChatCompletion(ctx context.Context, reqBody chatCompletionRequest) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	for _, choice := range parsed.Choices {
		if strings.TrimSpace(choice.Message.Content) != "" {
			return choice.Message.Content, nil
		}
	}
	return "", errors.New("completion response had no choices")
}

// Healthy probes the models endpoint. Used by the health handler only;
// generation attempts never consult it.
func (c *ChatClient) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+modelsPath, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *ChatClient) classify(err error) error {
	if err == nil {
		return domain.ErrGeneratorUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrGeneratorTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrGeneratorTimeout, err)
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: circuit breaker open", domain.ErrGeneratorUnavailable)
	}
	return fmt.Errorf("%w: %v", domain.ErrGeneratorUnavailable, err)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}

	// Network faults and timeouts are retryable.
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
