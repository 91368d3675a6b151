package capability

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"

	"github.com/skilltree-core-poc/server/internal/workflow/capability/prompts"
	"github.com/skilltree-core-poc/server/internal/workflow/model"
)

// GeminiQuestionGenerator produces the next elicitation question.
type GeminiQuestionGenerator struct {
	chatModel *gemini.ChatModel
	modelName string
}

func NewGeminiQuestionGenerator(chatModel *gemini.ChatModel, modelName string) *GeminiQuestionGenerator {
	return &GeminiQuestionGenerator{chatModel: chatModel, modelName: modelName}
}

func (q *GeminiQuestionGenerator) AskCore(ctx context.Context, state *model.SessionState, missing model.FieldName) (string, error) {
	systemPrompt, err := prompts.RenderAskCore(ctx, state, missing)
	if err != nil {
		return "", fmt.Errorf("render ask-core prompt: %w", err)
	}
	return q.generate(ctx, state, systemPrompt)
}

func (q *GeminiQuestionGenerator) AskConstraints(ctx context.Context, state *model.SessionState) (string, error) {
	systemPrompt, err := prompts.RenderAskConstraints(ctx, state)
	if err != nil {
		return "", fmt.Errorf("render ask-constraints prompt: %w", err)
	}
	return q.generate(ctx, state, systemPrompt)
}

func (q *GeminiQuestionGenerator) generate(ctx context.Context, state *model.SessionState, systemPrompt string) (string, error) {
	out, err := q.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(state.LatestUserMessage),
	})
	if err != nil {
		return "", fmt.Errorf("question model call: %w", err)
	}
	logUsage("questioner", q.modelName, state.ID, out)

	question := strings.TrimSpace(out.Content)
	if question == "" {
		return "", fmt.Errorf("question model returned empty content")
	}
	return question, nil
}

var _ model.QuestionGenerator = (*GeminiQuestionGenerator)(nil)
