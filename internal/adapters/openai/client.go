// Package openai adapts the OpenAI API to domain.LanguageModel and domain.Transcriber.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	oai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sony/gobreaker"

	"familycal/internal/domain"
	"familycal/internal/metrics"
)

const (
	DefaultModel          = "gpt-4o-mini"
	DefaultLanguage       = "he"
	completionTemperature = 0.1
	completionMaxTokens   = 300
)

type Config struct {
	APIKey   string
	Model    string
	BaseURL  string
	Language string
	// MaxRetries is passed to the SDK; zero keeps its default.
	MaxRetries int
}

// BreakerConfig controls when OpenAI calls are short-circuited.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

type Client struct {
	client   oai.Client
	model    string
	language string
	breaker  *gobreaker.CircuitBreaker
	metrics  *metrics.Collector
	logger   *slog.Logger
}

var (
	_ domain.LanguageModel = (*Client)(nil)
	_ domain.Transcriber   = (*Client)(nil)
)

func NewClient(cfg Config, bc BreakerConfig, collector *metrics.Collector, logger *slog.Logger) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	} else if cfg.MaxRetries < 0 {
		opts = append(opts, option.WithMaxRetries(0))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	language := cfg.Language
	if language == "" {
		language = DefaultLanguage
	}
	return &Client{
		client:   oai.NewClient(opts...),
		model:    model,
		language: language,
		breaker:  newBreaker(bc, logger),
		metrics:  collector,
		logger:   logger,
	}
}

func newBreaker(bc BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openai",
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= bc.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		// A caller giving up is not an upstream failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// Complete sends one system and one user message and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	out, err := c.call(ctx, "complete", func() (any, error) {
		resp, err := c.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
			Model: oai.ChatModel(c.model),
			Messages: []oai.ChatCompletionMessageParamUnion{
				oai.SystemMessage(systemPrompt),
				oai.UserMessage(userText),
			},
			Temperature: oai.Float(completionTemperature),
			MaxTokens:   oai.Int(completionMaxTokens),
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return "", nil
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		return "", err
	}
	content, _ := out.(string)
	if strings.TrimSpace(content) == "" {
		return "", domain.ErrNoAIResponse
	}
	return content, nil
}

// Transcribe runs whisper-1 on an audio upload in the configured language.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	out, err := c.call(ctx, "transcribe", func() (any, error) {
		resp, err := c.client.Audio.Transcriptions.New(ctx, oai.AudioTranscriptionNewParams{
			Model:    oai.AudioModelWhisper1,
			File:     oai.File(audio, filename, "audio/ogg"),
			Language: oai.String(c.language),
		})
		if err != nil {
			return nil, err
		}
		return resp.Text, nil
	})
	if err != nil {
		return "", err
	}
	text, _ := out.(string)
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrNoAIResponse
	}
	return strings.TrimSpace(text), nil
}

// call runs fn through the breaker and maps every upstream failure onto ErrNoAIResponse.
func (c *Client) call(ctx context.Context, operation string, fn func() (any, error)) (any, error) {
	out, err := c.breaker.Execute(fn)
	if c.metrics != nil {
		c.metrics.AIRequest(operation, err)
	}
	if err == nil {
		return out, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	c.logger.WarnContext(ctx, "openai call failed", "operation", operation, "err", err)
	return nil, fmt.Errorf("%w: %s: %v", domain.ErrNoAIResponse, operation, err)
}
