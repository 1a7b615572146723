// Package anthropic implements textgen.Generator on the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pokegen/internal/config"
	"github.com/cory-johannsen/pokegen/internal/textgen"
)

// Generator sends requests to the Messages API.
type Generator struct {
	client    sdk.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// New creates a Generator from configuration. Extra options are appended after the
// configured ones, so tests can point the client at a local server.
//
// Precondition: cfg.APIKey is non-empty; logger must be non-nil.
func New(cfg config.GeneratorConfig, logger *zap.Logger, opts ...option.RequestOption) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: api key must not be empty")
	}
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(0),
	}
	return &Generator{
		client:    sdk.NewClient(append(base, opts...)...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}, nil
}

// Generate implements textgen.Generator. The reply is the concatenated text blocks.
func (g *Generator) Generate(ctx context.Context, req textgen.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = g.maxTokens
	}
	params := sdk.MessageNewParams{
		Model:     sdk.Model(g.model),
		MaxTokens: int64(maxTokens),
		Messages:  toMessages(req.Turns),
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	msg, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic: creating message: %w", err)
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("anthropic: stop reason %q: %w", msg.StopReason, textgen.ErrEmptyReply)
	}
	g.logger.Debug("message generated",
		zap.String("model", g.model),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)
	return text, nil
}

func toMessages(turns []textgen.Turn) []sdk.MessageParam {
	out := make([]sdk.MessageParam, 0, len(turns))
	for _, t := range turns {
		block := sdk.NewTextBlock(t.Text)
		if t.Role == textgen.RoleAssistant {
			out = append(out, sdk.NewAssistantMessage(block))
		} else {
			out = append(out, sdk.NewUserMessage(block))
		}
	}
	return out
}
