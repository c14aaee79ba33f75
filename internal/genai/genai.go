// Package genai provides the generation client that turns a prompt pair into
// marketing copy using the OpenAI chat completions API.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Generation request parameters observed in production.
const (
	// DefaultModel is the chat model used for post generation.
	DefaultModel = "gpt-4.1"
	// DefaultTemperature keeps some variation between regenerations.
	DefaultTemperature = 0.7
	// DefaultMaxTokens bounds the generated output size.
	DefaultMaxTokens = 4000
	// DefaultRequestTimeout bounds a single generation attempt.
	DefaultRequestTimeout = 90 * time.Second
)

// Error variables for generation failures.
var (
	// ErrMissingAPIKey is returned when no OpenAI API key is configured.
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY not set")
	// ErrNoContent is returned when the API response is well-formed but
	// carries no usable message content.
	ErrNoContent = errors.New("generation response contains no content")
)

// GenerationError wraps a terminal generation failure after the retry budget
// is exhausted or a fatal error occurred.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// chatService defines the minimal chat-completions surface the client needs,
// so tests can substitute a mock.
type chatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Opts holds configuration options for the generation client.
type Opts struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	RetryPolicy *RetryPolicy
}

// Option defines a configuration option for the generation client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key, overriding $OPENAI_API_KEY.
func WithAPIKey(key string) Option {
	return func(o *Opts) {
		o.APIKey = key
	}
}

// WithModel overrides the default chat model.
func WithModel(model string) Option {
	return func(o *Opts) {
		o.Model = model
	}
}

// WithTimeout overrides the per-attempt request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Opts) {
		o.Timeout = timeout
	}
}

// WithRetryPolicy overrides the default bounded-retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(o *Opts) {
		o.RetryPolicy = &policy
	}
}

// Client sends prompt pairs to the OpenAI chat completions API with bounded
// retries and returns the primary text content of the first choice.
type Client struct {
	chat    chatService
	model   openai.ChatModel
	timeout time.Duration
	retry   RetryPolicy
}

// NewClient initializes a generation client. The API key is taken from
// options or the OPENAI_API_KEY environment variable; a missing key fails
// fast rather than surfacing later as a request error.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		slog.Error("GenAI client missing API key")
		return nil, ErrMissingAPIKey
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	retry := DefaultRetryPolicy()
	if cfg.RetryPolicy != nil {
		retry = *cfg.RetryPolicy
	}

	cli := openai.NewClient(option.WithAPIKey(apiKey))
	slog.Debug("GenAI client created", "model", model, "timeout", timeout, "max_attempts", retry.MaxAttempts)
	return &Client{
		chat:    &cli.Chat.Completions,
		model:   openai.ChatModel(model),
		timeout: timeout,
		retry:   retry,
	}, nil
}

// Generate sends the system and user prompts to the chat completions API and
// returns the generated text. It retries rate limits and transient server
// errors per the retry policy and fails with a *GenerationError otherwise.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	slog.Debug("GenAI Generate invoked", "system_length", len(systemPrompt), "user_length", len(userPrompt))

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature:         openai.Float(DefaultTemperature),
		MaxCompletionTokens: openai.Int(DefaultMaxTokens),
	}

	var content string
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.chat.New(attemptCtx, params)
		if err != nil {
			return err
		}
		if resp == nil || len(resp.Choices) == 0 {
			return ErrNoContent
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		if content == "" {
			return ErrNoContent
		}
		return nil
	})
	if err != nil {
		slog.Error("GenAI Generate failed", "error", err)
		return "", &GenerationError{Err: err}
	}

	slog.Info("GenAI Generate succeeded", "content_length", len(content))
	return content, nil
}

// IsRetryable classifies API errors: rate limiting and server-side failures
// are worth retrying, malformed-request and auth errors are not. An empty
// but well-formed response is also retried once the budget allows.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoContent) {
		return true
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return true
		case apiErr.StatusCode >= http.StatusInternalServerError:
			return true
		default:
			return false
		}
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	// Connection resets, timeouts and other transport errors.
	return true
}
