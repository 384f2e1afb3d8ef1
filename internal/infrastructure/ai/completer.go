package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/petscout/backend/internal/domain"
)

const defaultTimeout = 60 * time.Second

// Completer wraps the language-model API. Without a credential every
// call fails fast with ErrAIUnavailable so callers take their
// deterministic fallbacks.
type Completer struct {
	client  openai.Client
	model   string
	timeout time.Duration
	enabled bool
	debug   bool
}

// NewCompleter creates a completer; an empty apiKey disables it
func NewCompleter(apiKey, model string, timeout time.Duration) *Completer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Completer{
		model:   model,
		timeout: timeout,
		enabled: apiKey != "",
	}
	if c.enabled {
		c.client = openai.NewClient(option.WithAPIKey(apiKey))
	} else {
		log.Printf("[AI] no API key configured, completions disabled")
	}
	return c
}

// SetDebug toggles per-call logging
func (c *Completer) SetDebug(debug bool) {
	c.debug = debug
}

// CompleteJSON sends a prompt requesting a JSON object and unmarshals
// the response into out
func (c *Completer) CompleteJSON(ctx context.Context, prompt string, out any) error {
	if !c.enabled {
		return domain.ErrAIUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: shared.ChatModel(c.model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAIUnavailable, err)
	}
	if len(completion.Choices) == 0 {
		return fmt.Errorf("%w: empty completion", domain.ErrAIUnavailable)
	}

	content := stripCodeFences(completion.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("%w: parsing completion: %v", domain.ErrAIUnavailable, err)
	}

	if c.debug {
		log.Printf("[AI] structured completion ok (%d chars)", len(content))
	}
	return nil
}

// CompleteText sends a prompt and returns the raw text response
func (c *Completer) CompleteText(ctx context.Context, prompt string) (string, error) {
	if !c.enabled {
		return "", domain.ErrAIUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: shared.ChatModel(c.model),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAIUnavailable, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", domain.ErrAIUnavailable)
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// stripCodeFences unwraps a JSON payload the model wrapped in a markdown
// code block
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
