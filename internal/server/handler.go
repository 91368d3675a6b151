// Package server exposes the workflow engine over HTTP.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	errx "github.com/skilltree-core-poc/server/internal/core/error"
	"github.com/skilltree-core-poc/server/internal/workflow"
	"github.com/skilltree-core-poc/server/internal/workflow/model"
	logx "github.com/skilltree-core-poc/server/pkg/logger"
)

// Handler holds the engine behind the HTTP endpoints.
type Handler struct {
	engine *workflow.Engine
}

func NewHandler(engine *workflow.Engine) *Handler {
	return &Handler{engine: engine}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Stage     workflow.Stage   `json:"stage"`
	Reply     string           `json:"reply,omitempty"`
	Blueprint *model.Blueprint `json:"blueprint,omitempty"`
	Forced    bool             `json:"forced,omitempty"`
	SessionID string           `json:"session_id"`
}

// Chat handles one synchronous conversation turn. A request without a
// session id starts a new session; the minted id is returned so the
// client can pass it back on the next turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	result, err := h.engine.HandleTurn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		logx.Error().Err(err).Str("session_id", req.SessionID).Msg("chat turn failed")
		Error(w, errx.StatusOf(err), errx.MessageOf(err))
		return
	}

	JSON(w, http.StatusOK, chatResponse{
		Stage:     result.Stage,
		Reply:     result.Reply,
		Blueprint: result.Blueprint,
		Forced:    result.Forced,
		SessionID: result.SessionID,
	})
}

type planRequest struct {
	SessionID   string `json:"session_id"`
	Topic       string `json:"topic"`
	Experience  string `json:"experience"`
	Goal        string `json:"goal"`
	Constraints string `json:"constraints"`
}

type planAckResponse struct {
	Status    workflow.Status `json:"status"`
	SessionID string          `json:"session_id"`
}

// StartPlan kicks off an asynchronous planning run and returns
// immediately; the result is retrieved through PlanStatus.
func (h *Handler) StartPlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	ack, err := h.engine.StartPlanning(r.Context(), req.SessionID, req.Topic, req.Experience, req.Goal, req.Constraints)
	if err != nil {
		logx.Error().Err(err).Str("session_id", req.SessionID).Msg("planning kickoff failed")
		Error(w, errx.StatusOf(err), errx.MessageOf(err))
		return
	}

	JSON(w, http.StatusAccepted, planAckResponse{Status: ack.Status, SessionID: ack.SessionID})
}

// PlanStatus polls the in-memory registry for the session's planning
// run. Sessions without an entry, including all sessions after a
// process restart, report unknown.
func (h *Handler) PlanStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		Error(w, http.StatusBadRequest, "session id is required")
		return
	}
	JSON(w, http.StatusOK, h.engine.GetStatus(sessionID))
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
