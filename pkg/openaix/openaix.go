// Package openaix wraps the OpenAI SDK behind the small text-completion
// surface the extractors need. The base URL is overridable, so any
// OpenAI-compatible gateway works.
package openaix

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"gpt-4o-mini"`
	MaxCompletionToken int64         `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"200"`
	Temperature        float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// NewClient creates an OpenAI SDK client, or nil when no key is set.
func NewClient(cfg Config) *openaisdk.Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}

// Completer answers one system/user prompt pair with the model's raw
// text.
type Completer struct {
	client *openaisdk.Client
	cfg    Config
}

func NewCompleter(cfg Config) (*Completer, error) {
	client := NewClient(cfg)
	if client == nil {
		return nil, errors.New("openaix: api key is required")
	}
	return &Completer{client: client, cfg: cfg}, nil
}

func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.cfg.Model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(system),
			openaisdk.UserMessage(user),
		},
		MaxCompletionTokens: openaisdk.Int(c.cfg.MaxCompletionToken),
		Temperature:         openaisdk.Float(c.cfg.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openaix: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openaix: completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
