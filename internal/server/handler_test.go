package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilltree-core-poc/server/internal/workflow"
	"github.com/skilltree-core-poc/server/internal/workflow/model"
)

type stubRepo struct {
	mu    sync.Mutex
	snaps map[string]*model.SessionState
}

func (r *stubRepo) Load(_ context.Context, id string) (*model.SessionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.snaps[id]; ok {
		return s.Clone(), nil
	}
	return nil, nil
}

func (r *stubRepo) Save(_ context.Context, state *model.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps[state.ID] = state.Clone()
	return nil
}

func (r *stubRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snaps, id)
	return nil
}

type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, _ *model.SessionState, _ string) (model.ExtractedFields, error) {
	topic := "Python"
	return model.ExtractedFields{Topic: &topic}, nil
}

type stubQuestioner struct{}

func (stubQuestioner) AskCore(_ context.Context, _ *model.SessionState, missing model.FieldName) (string, error) {
	return "What is your " + string(missing) + "?", nil
}

func (stubQuestioner) AskConstraints(_ context.Context, _ *model.SessionState) (string, error) {
	return "Any constraints?", nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, _ *model.SessionState) (model.GenerationResult, error) {
	return model.GenerationResult{
		Blueprint: &model.Blueprint{Nodes: []model.PlanNode{{NodeID: "basics", Title: "Basics"}}},
		Approved:  true,
	}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	engine := workflow.NewEngine(
		&stubRepo{snaps: make(map[string]*model.SessionState)},
		stubExtractor{},
		stubQuestioner{},
		workflow.NewPlanningLoop(stubGenerator{}, 3),
		workflow.NewStatusRegistry(),
	)
	srv := httptest.NewServer(NewRouter(NewHandler(engine), "http://localhost:3000"))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestChatEndpointMintsSessionID(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/chat", map[string]string{"message": "I want to learn Python"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[map[string]any](t, resp)
	assert.Equal(t, "chatting", out["stage"])
	assert.NotEmpty(t, out["session_id"])
	assert.Equal(t, "What is your experience?", out["reply"])
}

func TestChatEndpointRequiresMessage(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/chat", map[string]string{"session_id": "s1"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlanEndpointAcknowledgesAndCompletes(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/plan", map[string]string{
		"session_id": "s1",
		"topic":      "Python",
		"experience": "beginner",
		"goal":       "automate tasks",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	ack := decode[map[string]any](t, resp)
	assert.Equal(t, "processing", ack["status"])
	assert.Equal(t, "s1", ack["session_id"])

	require.Eventually(t, func() bool {
		statusResp, err := http.Get(srv.URL + "/api/plan/status/s1")
		if err != nil {
			return false
		}
		entry := decode[map[string]any](t, statusResp)
		return entry["status"] == "completed"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestPlanStatusUnknownSession(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/plan/status/never-seen")
	require.NoError(t, err)
	entry := decode[map[string]any](t, resp)
	assert.Equal(t, "unknown", entry["status"])
}

func TestPlanEndpointRejectsMissingCoreFields(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/plan", map[string]string{"session_id": "s1", "topic": "Python"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	out := decode[map[string]string](t, resp)
	assert.Equal(t, "healthy", out["status"])
}
