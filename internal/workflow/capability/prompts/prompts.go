// Package prompts renders the embedded capability prompt templates via
// the Eino prompt component, so prompt callbacks fire for observers.
package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/skilltree-core-poc/server/internal/workflow/model"
)

//go:embed template/extract_prompt.txt
var extractPrompt string

//go:embed template/ask_core_prompt.txt
var askCorePrompt string

//go:embed template/ask_constraints_prompt.txt
var askConstraintsPrompt string

//go:embed template/architect_prompt.txt
var architectPrompt string

//go:embed template/critic_prompt.txt
var criticPrompt string

func render(ctx context.Context, tplText string, vars map[string]any) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(tplText),
	)
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("prompt render: empty result")
	}
	return msgs[0].Content, nil
}

func orNone(v string) string {
	if v == "" {
		return "None specified."
	}
	return v
}

func fieldVars(state *model.SessionState) map[string]any {
	return map[string]any{
		"Topic":       orNone(state.Topic),
		"Experience":  orNone(state.Experience),
		"Goal":        orNone(state.Goal),
		"Constraints": orNone(state.Constraints),
	}
}

// RenderExtract renders the field-extraction system prompt with the
// current known-field snapshot.
func RenderExtract(ctx context.Context, state *model.SessionState) (string, error) {
	return render(ctx, extractPrompt, fieldVars(state))
}

// RenderAskCore renders the question prompt for one missing core field.
func RenderAskCore(ctx context.Context, state *model.SessionState, missing model.FieldName) (string, error) {
	vars := fieldVars(state)
	vars["MissingField"] = string(missing)
	return render(ctx, askCorePrompt, vars)
}

// RenderAskConstraints renders the optional-constraints transition
// question with the full core-field context.
func RenderAskConstraints(ctx context.Context, state *model.SessionState) (string, error) {
	return render(ctx, askConstraintsPrompt, fieldVars(state))
}

// RenderArchitect renders the blueprint drafting prompt, threading in
// the critic feedback from the previous rejected attempt.
func RenderArchitect(ctx context.Context, state *model.SessionState) (string, error) {
	vars := fieldVars(state)
	vars["CriticFeedback"] = state.MacroCriticFeedback
	return render(ctx, architectPrompt, vars)
}

// RenderCritic renders the review prompt for a candidate blueprint.
func RenderCritic(ctx context.Context, state *model.SessionState, blueprintJSON string) (string, error) {
	vars := fieldVars(state)
	vars["BlueprintJSON"] = blueprintJSON
	return render(ctx, criticPrompt, vars)
}
