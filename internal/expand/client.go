// Package expand asks a chat-completion model to branch an idea into
// several follow-up ideas.
package expand

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"aether/internal/canvas"
)

var (
	// ErrMissingAPIKey is returned by New when no API key is configured.
	ErrMissingAPIKey = errors.New("expand: API key not set")

	// ErrMalformedResponse means the model answered with something that is not
	// a list of complete title/description pairs.
	ErrMalformedResponse = errors.New("expand: malformed response")
)

const DefaultModel = "gpt-4o-mini"

type Config struct {
	APIKey  string
	BaseURL string // empty for the default OpenAI endpoint
	Model   string
	// Temperature is passed through when non-zero.
	Temperature float32
}

// Client implements canvas.Expander on top of an OpenAI-compatible API.
type Client struct {
	api      *openai.Client
	model    string
	temp     float32
	validate *validator.Validate
	logger   *zap.Logger
}

var _ canvas.Expander = (*Client)(nil)

func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	logger.Info("expansion client ready", zap.String("model", model), zap.String("base_url", apiCfg.BaseURL))
	return &Client{
		api:      openai.NewClientWithConfig(apiCfg),
		model:    model,
		temp:     cfg.Temperature,
		validate: validator.New(),
		logger:   logger,
	}, nil
}

func prompt(title, description string) string {
	return fmt.Sprintf(`Act as a creative synthesizer. Expand on the following concept into 3-4 deeply related branches or exploratory paths for a visual thinking space:
Concept: %s
Context: %s

Each branch should offer a new perspective or a concrete next step for exploration.
Respond with a JSON object of the form {"branches": [{"title": "...", "description": "..."}]}.`, title, description)
}

// Expand implements canvas.Expander.
func (c *Client) Expand(ctx context.Context, title, description string) ([]canvas.Branch, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You answer only with JSON."},
			{Role: openai.ChatMessageRoleUser, Content: prompt(title, description)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: c.temp,
	}

	c.logger.Debug("requesting expansion", zap.String("model", c.model), zap.String("title", title))
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("expand: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}

	branches, err := c.parse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("expansion received", zap.Int("branches", len(branches)))
	return branches, nil
}

// wireBranch is a branch as the model sends it. Both fields must be present;
// empty strings are allowed.
type wireBranch struct {
	Title       *string `json:"title" validate:"required"`
	Description *string `json:"description" validate:"required"`
}

// parse accepts either a bare JSON array of branches or an object wrapping
// one under "branches". Every entry must carry both fields.
func (c *Client) parse(content string) ([]canvas.Branch, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	var branches []wireBranch
	if strings.HasPrefix(content, "[") {
		if err := json.Unmarshal([]byte(content), &branches); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	} else {
		var wrapped struct {
			Branches *[]wireBranch `json:"branches"`
		}
		if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if wrapped.Branches == nil {
			return nil, fmt.Errorf("%w: missing branches", ErrMalformedResponse)
		}
		branches = *wrapped.Branches
	}

	out := make([]canvas.Branch, 0, len(branches))
	for i, b := range branches {
		if err := c.validate.Struct(b); err != nil {
			return nil, fmt.Errorf("%w: branch %d: %v", ErrMalformedResponse, i, err)
		}
		out = append(out, canvas.Branch{Title: *b.Title, Description: *b.Description})
	}
	return out, nil
}
