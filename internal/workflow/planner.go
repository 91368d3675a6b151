package workflow

import (
	"context"

	errx "github.com/skilltree-core-poc/server/internal/core/error"
	"github.com/skilltree-core-poc/server/internal/workflow/model"
	logx "github.com/skilltree-core-poc/server/pkg/logger"
)

// DefaultRetryCeiling bounds the number of critic rejections before the
// latest draft is force-accepted.
const DefaultRetryCeiling = 3

// PlanResult is the terminal outcome of one planning run. Blueprint is
// always non-nil; Forced marks acceptance at the retry ceiling rather
// than an earned approval.
type PlanResult struct {
	Blueprint *model.Blueprint
	Forced    bool
}

// PlanningLoop drives repeated generate/evaluate cycles against an
// unreliable generator until approval or the retry ceiling. The
// generator and critic are both non-deterministic; without the ceiling
// the loop could run forever on persistently poor output, so the
// latest draft is force-accepted once the ceiling is reached.
type PlanningLoop struct {
	generator model.BlueprintGenerator
	ceiling   int
}

func NewPlanningLoop(generator model.BlueprintGenerator, ceiling int) *PlanningLoop {
	if ceiling <= 0 {
		ceiling = DefaultRetryCeiling
	}
	return &PlanningLoop{generator: generator, ceiling: ceiling}
}

// Run executes the bounded generate/validate/retry loop, mutating the
// session as it goes. MacroRetryCount counts rejections, not attempts:
// a first-call approval leaves it at zero. Rejection feedback is
// written to the state before the next attempt so retries are
// informed, not blind resampling. A generator error is terminal and
// leaves the counter and feedback at their last updated values, so a
// retried run resumes instead of restarting.
func (p *PlanningLoop) Run(ctx context.Context, state *model.SessionState) (PlanResult, error) {
	for {
		logx.Debug().
			Str("session_id", state.ID).
			Int("attempt", state.MacroRetryCount+1).
			Msg("planning attempt")

		result, err := p.generator.Generate(ctx, state)
		if err != nil {
			logx.Error().Err(err).Str("session_id", state.ID).Msg("blueprint generator failed")
			return PlanResult{}, errx.WrapGeneration(err)
		}

		if result.Approved {
			state.Blueprint = result.Blueprint
			logx.Info().
				Str("session_id", state.ID).
				Int("rejections", state.MacroRetryCount).
				Msg("blueprint approved")
			return PlanResult{Blueprint: result.Blueprint}, nil
		}

		state.MacroCriticFeedback = result.Feedback
		state.MacroRetryCount++

		if state.MacroRetryCount >= p.ceiling {
			// Force-accept the latest draft so the run always ends with
			// something usable instead of failing the request outright.
			state.Blueprint = result.Blueprint
			logx.Warn().
				Str("session_id", state.ID).
				Int("rejections", state.MacroRetryCount).
				Msg("retry ceiling reached, forcing acceptance of latest draft")
			return PlanResult{Blueprint: result.Blueprint, Forced: true}, nil
		}

		logx.Info().
			Str("session_id", state.ID).
			Int("rejections", state.MacroRetryCount).
			Str("feedback", result.Feedback).
			Msg("blueprint rejected, retrying with feedback")
	}
}
