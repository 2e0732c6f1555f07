package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a chat conversation.
type Message struct {
	Role    Role
	Content string
}

// GenerateRequest holds the parameters for a reasoning call.
type GenerateRequest struct {
	Messages    []Message
	Temperature *float64 // nil uses config default
	MaxTokens   *int     // nil uses config default
}

// GenerateResponse holds the reply of a reasoning call with the
// surrounding markdown fence removed.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
	Attempts  int
}

// LLMClient provides access to a chat-completion reasoning service.
type LLMClient interface {
	// Generate sends the conversation and returns the reply text.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Available checks whether the service answers at all.
	Available(ctx context.Context) bool
}

// ClientOption customises an openAIClient.
type ClientOption func(*openAIClient)

// WithSleep replaces the backoff wait; tests use it to skip real delays.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) ClientOption {
	return func(c *openAIClient) { c.sleep = fn }
}

// WithHTTPClient replaces the transport used for API calls.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *openAIClient) { c.httpClient = h }
}

type openAIClient struct {
	cfg        Config
	api        *openai.Client
	httpClient *http.Client
	observer   Observer
	sleep      sleepFunc
}

// NewOpenAIClient creates an LLMClient for any OpenAI-compatible endpoint,
// xAI by default.
func NewOpenAIClient(cfg Config, observer Observer, opts ...ClientOption) LLMClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	c := &openAIClient{
		cfg:      cfg,
		observer: observer,
		sleep:    sleepContext,
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	oc.HTTPClient = c.httpClient
	c.api = openai.NewClientWithConfig(oc)
	return c
}

func (c *openAIClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	chatReq := c.chatRequest(req)
	policy := newBackoff(c.cfg.BackoffUnit())
	maxAttempts := c.cfg.Attempts()

	var (
		lastErr   error
		lastCause FailureKind
		attempts  int
	)
	for attempts = 1; attempts <= maxAttempts; attempts++ {
		text, model, err := c.attempt(ctx, chatReq)
		if err == nil {
			latency := time.Since(start).Milliseconds()
			c.observer.OnCallComplete(CallEvent{
				Model:     model,
				LatencyMs: latency,
				Attempts:  attempts,
				Success:   true,
			})
			return &GenerateResponse{
				Text:      text,
				Model:     model,
				LatencyMs: latency,
				Attempts:  attempts,
			}, nil
		}

		lastErr, lastCause = err, classifyFailure(err)
		if !lastCause.Retryable() {
			return nil, c.fail(start, &ReasoningError{Kind: KindFatal, Cause: lastCause, Attempts: attempts, Err: err})
		}
		if attempts == maxAttempts || ctx.Err() != nil {
			break
		}

		delay := policy.NextBackOff()
		c.observer.OnRetry(RetryEvent{
			Model:   c.cfg.Model,
			Attempt: attempts,
			Cause:   lastCause,
			DelayMs: delay.Milliseconds(),
			Err:     err,
		})
		if err := c.sleep(ctx, delay); err != nil {
			break
		}
	}
	if attempts > maxAttempts {
		attempts = maxAttempts
	}
	return nil, c.fail(start, &ReasoningError{Kind: KindExhausted, Cause: lastCause, Attempts: attempts, Err: lastErr})
}

func (c *openAIClient) fail(start time.Time, err *ReasoningError) error {
	c.observer.OnCallComplete(CallEvent{
		Model:     c.cfg.Model,
		LatencyMs: time.Since(start).Milliseconds(),
		Attempts:  err.Attempts,
		Success:   false,
		ErrorCode: errorCode(err),
	})
	return err
}

func (c *openAIClient) chatRequest(req GenerateRequest) openai.ChatCompletionRequest {
	temp := c.cfg.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	maxTok := c.cfg.MaxTokens
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}
	return openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    msgs,
		Temperature: float32(temp),
		MaxTokens:   maxTok,
	}
}

// attempt performs one call under its own deadline.
func (c *openAIClient) attempt(ctx context.Context, req openai.ChatCompletionRequest) (string, string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	resp, err := c.api.CreateChatCompletion(attemptCtx, req)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return "", "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", "", err
	}
	if len(resp.Choices) == 0 {
		return "", "", errEmptyCompletion
	}
	text := StripFence(resp.Choices[0].Message.Content)
	if text == "" {
		return "", "", errEmptyCompletion
	}
	model := resp.Model
	if model == "" {
		model = req.Model
	}
	return text, model, nil
}

// StripFence removes a surrounding ```json ... ``` (or bare ```) fence.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// classifyFailure maps an attempt error onto a FailureKind. Rate limiting
// and server faults are retried; other client errors are not.
func classifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, errEmptyCompletion):
		return FailureUpstream
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return FailureTimeout
		}
		return FailureConnection
	}
	if errors.Is(err, context.Canceled) {
		return FailureConnection
	}
	return FailureUpstream
}

func classifyStatus(code int) FailureKind {
	switch {
	case code == http.StatusTooManyRequests, code >= 500:
		return FailureUpstream
	case code == http.StatusRequestTimeout:
		return FailureTimeout
	case code == 0:
		return FailureConnection
	default:
		return FailureRequest
	}
}

func (c *openAIClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := c.api.ListModels(ctx)
	return err == nil
}
