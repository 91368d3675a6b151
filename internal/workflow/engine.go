package workflow

import (
	"context"
	"fmt"
	"net/http"

	errx "github.com/skilltree-core-poc/server/internal/core/error"
	"github.com/skilltree-core-poc/server/internal/workflow/model"
	logx "github.com/skilltree-core-poc/server/pkg/logger"
)

// Stage tags the engine's response to a chat turn.
type Stage string

const (
	StageChatting       Stage = "chatting"
	StageBlueprintReady Stage = "blueprint_ready"
)

// BlueprintReadyReply is appended to the transcript when planning
// finishes.
const BlueprintReadyReply = "Your personalized skill tree blueprint is ready! I am now generating the micro-learning content..."

// TurnResult is the stage-tagged outcome of one chat turn. Reply is
// set for StageChatting; Blueprint and Forced for StageBlueprintReady.
type TurnResult struct {
	Stage     Stage
	Reply     string
	Blueprint *model.Blueprint
	Forced    bool
	SessionID string
}

// PlanAck acknowledges an asynchronous planning kickoff.
type PlanAck struct {
	Status    Status
	SessionID string
}

// Engine loads or creates the session, runs one stage transition, and
// persists the result. Requests for different session ids are fully
// independent; concurrent requests against one id race on
// load/mutate/persist (last-write-wins) and are expected to be
// serialized by the caller.
type Engine struct {
	repo       model.SessionRepository
	extractor  model.FieldExtractor
	questioner model.QuestionGenerator
	planner    *PlanningLoop
	registry   *StatusRegistry
}

func NewEngine(
	repo model.SessionRepository,
	extractor model.FieldExtractor,
	questioner model.QuestionGenerator,
	planner *PlanningLoop,
	registry *StatusRegistry,
) *Engine {
	return &Engine{
		repo:       repo,
		extractor:  extractor,
		questioner: questioner,
		planner:    planner,
		registry:   registry,
	}
}

// HandleTurn processes one inbound chat message: extraction, routing,
// question generation, and, once elicitation is complete, the full
// planning loop. Mutations are staged on a working copy and persisted
// only after the stage transition succeeds, so a failed external call
// leaves the durable session exactly as it was.
func (e *Engine) HandleTurn(ctx context.Context, sessionID, message string) (TurnResult, error) {
	if sessionID == "" {
		return TurnResult{}, errx.NewInvalidRequest("session id is required")
	}

	state, err := e.loadOrCreate(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	work := state.Clone()
	work.LatestUserMessage = message
	work.AppendTurn(model.RoleUser, message)

	extracted, err := e.extractor.Extract(ctx, work, message)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("field extraction failed")
		return TurnResult{}, errx.WrapExtraction(err)
	}
	work.Merge(extracted)

	route := RouteSession(work)
	switch route.Kind {
	case RouteAskCore, RouteAskConstraints:
		var question string
		if route.Kind == RouteAskCore {
			question, err = e.questioner.AskCore(ctx, work, route.MissingField)
		} else {
			work.AskedForConstraints = true
			question, err = e.questioner.AskConstraints(ctx, work)
		}
		if err != nil {
			logx.Error().Err(err).Str("session_id", sessionID).Msg("question generation failed")
			return TurnResult{}, errx.New(fmt.Errorf("next question: %w", err), http.StatusBadGateway, errx.ExtractionErrorMessage)
		}

		work.AppendTurn(model.RoleAssistant, question)
		if err := e.repo.Save(ctx, work); err != nil {
			return TurnResult{}, err
		}
		return TurnResult{Stage: StageChatting, Reply: question, SessionID: sessionID}, nil

	case RouteProceed:
		result, err := e.planner.Run(ctx, work)
		if err != nil {
			// Persist the retry counter and feedback so a retried call
			// resumes the loop instead of restarting it.
			if saveErr := e.repo.Save(ctx, work); saveErr != nil {
				logx.Error().Err(saveErr).Str("session_id", sessionID).Msg("failed to persist planning progress")
			}
			return TurnResult{}, err
		}

		work.AppendTurn(model.RoleAssistant, BlueprintReadyReply)
		if err := e.repo.Save(ctx, work); err != nil {
			return TurnResult{}, err
		}
		return TurnResult{
			Stage:     StageBlueprintReady,
			Reply:     BlueprintReadyReply,
			Blueprint: result.Blueprint,
			Forced:    result.Forced,
			SessionID: sessionID,
		}, nil
	}

	return TurnResult{}, errx.New(fmt.Errorf("unhandled route kind %d", route.Kind), http.StatusInternalServerError, errx.SystemErrorMessage)
}

// StartPlanning seeds the session fields directly, bypassing
// elicitation, and dispatches the planning loop as a detached
// background task. The call returns immediately; GetStatus is the only
// way to observe the outcome.
func (e *Engine) StartPlanning(ctx context.Context, sessionID, topic, experience, goal, constraints string) (PlanAck, error) {
	if sessionID == "" {
		return PlanAck{}, errx.NewInvalidRequest("session id is required")
	}
	if topic == "" || experience == "" || goal == "" {
		return PlanAck{}, errx.NewInvalidRequest("topic, experience and goal are required")
	}

	state, err := e.loadOrCreate(ctx, sessionID)
	if err != nil {
		return PlanAck{}, err
	}

	state.Topic = topic
	state.Experience = experience
	state.Goal = goal
	state.Constraints = constraints

	// A kickoff starts a fresh planning run.
	state.Blueprint = nil
	state.MacroRetryCount = 0
	state.MacroCriticFeedback = model.NoFeedback

	if err := e.repo.Save(ctx, state); err != nil {
		return PlanAck{}, err
	}

	e.registry.Set(sessionID, StatusEntry{Status: StatusProcessing})

	go e.runDetachedPlanning(state)

	return PlanAck{Status: StatusProcessing, SessionID: sessionID}, nil
}

// runDetachedPlanning executes the loop outside the request/response
// cycle. It deliberately uses a fresh context: the triggering request
// has already returned and must not cancel the run.
func (e *Engine) runDetachedPlanning(state *model.SessionState) {
	ctx := context.Background()

	result, err := e.planner.Run(ctx, state)
	if err != nil {
		if saveErr := e.repo.Save(ctx, state); saveErr != nil {
			logx.Error().Err(saveErr).Str("session_id", state.ID).Msg("failed to persist planning progress")
		}
		e.registry.Set(state.ID, StatusEntry{Status: StatusError, Message: errx.MessageOf(err)})
		return
	}

	state.AppendTurn(model.RoleAssistant, BlueprintReadyReply)
	if err := e.repo.Save(ctx, state); err != nil {
		logx.Error().Err(err).Str("session_id", state.ID).Msg("failed to persist completed planning run")
		e.registry.Set(state.ID, StatusEntry{Status: StatusError, Message: errx.MessageOf(err)})
		return
	}

	e.registry.Set(state.ID, StatusEntry{
		Status:    StatusCompleted,
		Blueprint: result.Blueprint,
		Forced:    result.Forced,
	})
}

// GetStatus is a non-blocking poll of the in-memory registry. The
// registry is not persisted, so after a restart entries report unknown.
func (e *Engine) GetStatus(sessionID string) StatusEntry {
	return e.registry.Get(sessionID)
}

func (e *Engine) loadOrCreate(ctx context.Context, sessionID string) (*model.SessionState, error) {
	state, err := e.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		logx.Debug().Str("session_id", sessionID).Msg("creating new session")
		state = model.NewSessionState(sessionID)
	}
	return state, nil
}
