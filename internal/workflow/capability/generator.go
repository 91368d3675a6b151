package capability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"

	"github.com/skilltree-core-poc/server/internal/workflow/capability/parsers"
	"github.com/skilltree-core-poc/server/internal/workflow/capability/prompts"
	"github.com/skilltree-core-poc/server/internal/workflow/model"
	logx "github.com/skilltree-core-poc/server/pkg/logger"
)

// GeminiBlueprintGenerator runs the architect and critic models in
// sequence: the architect drafts a blueprint informed by the previous
// rejection feedback, the critic returns the approval verdict. One
// Generate call is one attempt of the planning loop; retry policy
// lives entirely in the loop, not here.
type GeminiBlueprintGenerator struct {
	architect          *gemini.ChatModel
	critic             *gemini.ChatModel
	architectModelName string
	criticModelName    string
}

func NewGeminiBlueprintGenerator(architect, critic *gemini.ChatModel, architectModelName, criticModelName string) *GeminiBlueprintGenerator {
	return &GeminiBlueprintGenerator{
		architect:          architect,
		critic:             critic,
		architectModelName: architectModelName,
		criticModelName:    criticModelName,
	}
}

func (g *GeminiBlueprintGenerator) Generate(ctx context.Context, state *model.SessionState) (model.GenerationResult, error) {
	blueprint, blueprintJSON, err := g.draft(ctx, state)
	if err != nil {
		return model.GenerationResult{}, err
	}

	verdict, err := g.review(ctx, state, blueprintJSON)
	if err != nil {
		return model.GenerationResult{}, err
	}

	return model.GenerationResult{
		Blueprint: blueprint,
		Approved:  verdict.IsApproved,
		Feedback:  verdict.Feedback,
	}, nil
}

func (g *GeminiBlueprintGenerator) draft(ctx context.Context, state *model.SessionState) (*model.Blueprint, string, error) {
	systemPrompt, err := prompts.RenderArchitect(ctx, state)
	if err != nil {
		return nil, "", fmt.Errorf("render architect prompt: %w", err)
	}

	out, err := g.architect.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("Design the blueprint now."),
	})
	if err != nil {
		return nil, "", fmt.Errorf("architect model call: %w", err)
	}
	logUsage("architect", g.architectModelName, state.ID, out)

	blueprint, err := parsers.ParseBlueprint(out.Content)
	if err != nil {
		return nil, "", err
	}

	// Re-serialize the validated structure for review rather than
	// feeding the critic raw model output.
	b, err := json.Marshal(blueprint)
	if err != nil {
		return nil, "", fmt.Errorf("marshal blueprint for review: %w", err)
	}
	return blueprint, string(b), nil
}

func (g *GeminiBlueprintGenerator) review(ctx context.Context, state *model.SessionState, blueprintJSON string) (parsers.Verdict, error) {
	systemPrompt, err := prompts.RenderCritic(ctx, state, blueprintJSON)
	if err != nil {
		return parsers.Verdict{}, fmt.Errorf("render critic prompt: %w", err)
	}

	out, err := g.critic.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("Review the blueprint now."),
	})
	if err != nil {
		return parsers.Verdict{}, fmt.Errorf("critic model call: %w", err)
	}
	logUsage("critic", g.criticModelName, state.ID, out)

	verdict, err := parsers.ParseVerdict(out.Content)
	if err != nil {
		return parsers.Verdict{}, err
	}
	if !verdict.IsApproved {
		logx.Debug().
			Str("session_id", state.ID).
			Str("feedback", verdict.Feedback).
			Msg("critic rejected blueprint draft")
	}
	return verdict, nil
}

var _ model.BlueprintGenerator = (*GeminiBlueprintGenerator)(nil)
