// Package parsers hardens the JSON produced by the capability models.
// Model output is untrusted: it may be wrapped in markdown fences,
// padded with commentary, oversized, or structurally broken.
package parsers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	errx "github.com/skilltree-core-poc/server/internal/core/error"
	"github.com/skilltree-core-poc/server/internal/workflow/model"
	logx "github.com/skilltree-core-poc/server/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 256 * 1024 // 256KB
	maxErrSnippet = 200
)

// CleanJSON strips markdown code fences and surrounding noise so the
// payload can be decoded. Models frequently wrap JSON in ```json
// blocks despite instructions not to.
func CleanJSON(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	// Fall back to the outermost braces when the model padded the
	// object with commentary.
	if !strings.HasPrefix(s, "{") {
		if start := strings.Index(s, "{"); start >= 0 {
			if end := strings.LastIndex(s, "}"); end > start {
				s = s[start : end+1]
			}
		}
	}
	return s
}

func guard(content, what string) (string, error) {
	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "capability_parser").
			Str("what", what).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}
	cleaned := CleanJSON(content)
	if cleaned == "" {
		return "", fmt.Errorf("%s: empty model output", what)
	}
	return cleaned, nil
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}

// ParseExtraction decodes a partial field update. Unknown keys are
// rejected so a drifting prompt surfaces immediately instead of
// silently dropping data.
func ParseExtraction(content string) (fields model.ExtractedFields, err error) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "extraction_parser").Msgf("panic recovered: %v", r)
			err = errx.New(fmt.Errorf("extraction parser panic"), http.StatusInternalServerError, errx.SystemErrorMessage)
		}
	}()

	cleaned, gerr := guard(content, "extraction")
	if gerr != nil {
		return model.ExtractedFields{}, gerr
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.DisallowUnknownFields()
	if derr := dec.Decode(&fields); derr != nil {
		return model.ExtractedFields{}, fmt.Errorf("extraction decode: %w (payload: %s)", derr, safeSnippet(cleaned))
	}
	return fields, nil
}

// ParseBlueprint decodes and structurally validates a candidate
// blueprint. Validation covers DAG sanity only; content quality is the
// critic's verdict.
func ParseBlueprint(content string) (bp *model.Blueprint, err error) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "blueprint_parser").Msgf("panic recovered: %v", r)
			err = errx.New(fmt.Errorf("blueprint parser panic"), http.StatusInternalServerError, errx.SystemErrorMessage)
			bp = nil
		}
	}()

	cleaned, gerr := guard(content, "blueprint")
	if gerr != nil {
		return nil, gerr
	}

	var out model.Blueprint
	if derr := json.Unmarshal([]byte(cleaned), &out); derr != nil {
		return nil, fmt.Errorf("blueprint decode: %w (payload: %s)", derr, safeSnippet(cleaned))
	}
	if verr := out.Validate(); verr != nil {
		return nil, fmt.Errorf("blueprint structure: %w", verr)
	}
	return &out, nil
}

// Verdict is the critic's decision on a candidate blueprint.
type Verdict struct {
	IsApproved bool   `json:"is_approved"`
	Feedback   string `json:"feedback"`
}

// ParseVerdict decodes the critic's approval verdict.
func ParseVerdict(content string) (v Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "verdict_parser").Msgf("panic recovered: %v", r)
			err = errx.New(fmt.Errorf("verdict parser panic"), http.StatusInternalServerError, errx.SystemErrorMessage)
		}
	}()

	cleaned, gerr := guard(content, "verdict")
	if gerr != nil {
		return Verdict{}, gerr
	}

	if derr := json.Unmarshal([]byte(cleaned), &v); derr != nil {
		return Verdict{}, fmt.Errorf("verdict decode: %w (payload: %s)", derr, safeSnippet(cleaned))
	}
	if !v.IsApproved && strings.TrimSpace(v.Feedback) == "" {
		v.Feedback = "rejected without specific feedback"
	}
	return v, nil
}
