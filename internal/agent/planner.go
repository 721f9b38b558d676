package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rahul/abacus/internal/observability"
	"github.com/rahul/abacus/internal/operations"
	"github.com/tmc/langchaingo/llms"
)

// Catalog lists the operations the planner may use.
type Catalog interface {
	List() []operations.Operation
}

// LLMPlanner is a Producer backed by a language model.
type LLMPlanner struct {
	Model       llms.Model
	ModelName   string
	Prompts     *PromptManager
	Catalog     Catalog
	Temperature float64
	MaxTokens   int
	JSONMode    bool
	Logger      *observability.Logger
}

func NewLLMPlanner(model llms.Model, prompts *PromptManager, catalog Catalog, logger *observability.Logger) *LLMPlanner {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &LLMPlanner{
		Model:       model,
		Prompts:     prompts,
		Catalog:     catalog,
		Temperature: 0.1,
		MaxTokens:   1024,
		Logger:      logger,
	}
}

func (p *LLMPlanner) Produce(ctx context.Context, input string) (string, error) {
	plannerPrompt, err := p.Prompts.GetPlannerPrompt()
	if err != nil {
		return "", fmt.Errorf("failed to load planner prompt: %w", err)
	}

	systemPrompt := plannerPrompt
	if p.Catalog != nil {
		systemPrompt = fmt.Sprintf("%s\n\n## Available Operations:\n%s", plannerPrompt, DescribeOperations(p.Catalog.List()))
	}
	userPrompt := fmt.Sprintf("User input: %s\n\nJSON operations:", input)

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(userPrompt)},
		},
	}

	opts := []llms.CallOption{llms.WithTemperature(p.Temperature)}
	if p.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(p.MaxTokens))
	}
	if p.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := p.Model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Content)
	p.Logger.LogLLM(observability.RunIDFrom(ctx), p.ModelName, userPrompt, content)
	return content, nil
}
