package capability

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"

	"github.com/skilltree-core-poc/server/internal/workflow/capability/parsers"
	"github.com/skilltree-core-poc/server/internal/workflow/capability/prompts"
	"github.com/skilltree-core-poc/server/internal/workflow/model"
)

// GeminiFieldExtractor infers session fields from a chat turn with a
// single low-temperature model call.
type GeminiFieldExtractor struct {
	chatModel *gemini.ChatModel
	modelName string
	maxTurns  int
}

func NewGeminiFieldExtractor(chatModel *gemini.ChatModel, modelName string, maxTurns int) *GeminiFieldExtractor {
	return &GeminiFieldExtractor{chatModel: chatModel, modelName: modelName, maxTurns: maxTurns}
}

func (x *GeminiFieldExtractor) Extract(ctx context.Context, known *model.SessionState, message string) (model.ExtractedFields, error) {
	systemPrompt, err := prompts.RenderExtract(ctx, known)
	if err != nil {
		return model.ExtractedFields{}, fmt.Errorf("render extraction prompt: %w", err)
	}

	conversationCtx := buildConversationContext(known.ChatHistory, x.maxTurns, message)

	out, err := x.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(conversationCtx),
	})
	if err != nil {
		return model.ExtractedFields{}, fmt.Errorf("extraction model call: %w", err)
	}
	logUsage("extractor", x.modelName, known.ID, out)

	fields, err := parsers.ParseExtraction(out.Content)
	if err != nil {
		return model.ExtractedFields{}, err
	}
	return fields, nil
}

var _ model.FieldExtractor = (*GeminiFieldExtractor)(nil)
