// Package ai wraps the Anthropic Messages API for the study tools.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"sokrate-backend-go/internal/models"
)

const maxTokens = 4096

// ErrEmptyCompletion is returned when the model answers without any text block.
var ErrEmptyCompletion = errors.New("model returned no text")

// Completer sends one user turn (text plus an optional image) and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, prompt string, image *models.ImagePayload) (string, error)
}

// AnthropicClient is a Completer backed by the Anthropic Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  string
	logger *zap.Logger
}

// NewAnthropicClient creates a client for model using apiKey.
func NewAnthropicClient(apiKey, model string, logger *zap.Logger) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger,
	}, nil
}

// Complete implements Completer.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string, image *models.ImagePayload) (string, error) {
	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(prompt)}
	if image != nil {
		blocks = append(blocks, anthropic.NewImageBlockBase64(image.MediaType, image.Data))
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages.new: %w", err)
	}
	c.logger.Debug("Completion received",
		zap.String("model", c.model),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens))

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}
