package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNewSessionStateDefaults(t *testing.T) {
	s := NewSessionState("s1")

	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, NoFeedback, s.MacroCriticFeedback)
	assert.Zero(t, s.MacroRetryCount)
	assert.False(t, s.AskedForConstraints)
	assert.Nil(t, s.Blueprint)
	assert.Empty(t, s.ChatHistory)
}

func TestMergeNeverOverwritesResolvedFields(t *testing.T) {
	s := NewSessionState("s1")
	s.Merge(ExtractedFields{Topic: strPtr("Python"), Experience: strPtr("beginner")})

	require.Equal(t, "Python", s.Topic)
	require.Equal(t, "beginner", s.Experience)

	// Later extractions must not replace resolved values, and nil
	// pointers mean "no new information".
	s.Merge(ExtractedFields{Topic: strPtr("Rust"), Experience: nil, Goal: strPtr("build a web app")})

	assert.Equal(t, "Python", s.Topic)
	assert.Equal(t, "beginner", s.Experience)
	assert.Equal(t, "build a web app", s.Goal)
}

func TestMergeIgnoresEmptyAndWhitespaceValues(t *testing.T) {
	s := NewSessionState("s1")
	s.Merge(ExtractedFields{Topic: strPtr("  "), Goal: strPtr("")})

	assert.Empty(t, s.Topic)
	assert.Empty(t, s.Goal)
}

func TestMergeAppendsConstraintFragmentsInOrder(t *testing.T) {
	s := NewSessionState("s1")

	s.Merge(ExtractedFields{Constraints: strPtr("only 1 hour a day")})
	s.Merge(ExtractedFields{Constraints: strPtr("prefers videos")})
	s.Merge(ExtractedFields{Constraints: strPtr("   ")})
	s.Merge(ExtractedFields{Constraints: strPtr("no paid courses")})

	assert.Equal(t, "only 1 hour a day; prefers videos; no paid courses", s.Constraints)
}

func TestMissingCoreFieldPriorityOrder(t *testing.T) {
	s := NewSessionState("s1")
	assert.Equal(t, FieldTopic, s.MissingCoreField())

	s.Topic = "Go"
	assert.Equal(t, FieldExperience, s.MissingCoreField())

	s.Experience = "intermediate"
	assert.Equal(t, FieldGoal, s.MissingCoreField())

	s.Goal = "ship a CLI"
	assert.Equal(t, FieldName(""), s.MissingCoreField())
}

func TestAppendTurnPreservesOrder(t *testing.T) {
	s := NewSessionState("s1")
	s.AppendTurn(RoleUser, "hi")
	s.AppendTurn(RoleAssistant, "hello")
	s.AppendTurn(RoleUser, "I want to learn Go")

	require.Len(t, s.ChatHistory, 3)
	assert.Equal(t, ChatTurn{Role: RoleUser, Content: "hi"}, s.ChatHistory[0])
	assert.Equal(t, ChatTurn{Role: RoleAssistant, Content: "hello"}, s.ChatHistory[1])
	assert.Equal(t, ChatTurn{Role: RoleUser, Content: "I want to learn Go"}, s.ChatHistory[2])
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewSessionState("s1")
	s.AppendTurn(RoleUser, "hi")
	s.Blueprint = &Blueprint{Nodes: []PlanNode{{NodeID: "a", Title: "A"}}}

	cp := s.Clone()
	cp.AppendTurn(RoleAssistant, "hello")
	cp.Blueprint.Nodes[0].Title = "changed"
	cp.Topic = "Rust"

	assert.Len(t, s.ChatHistory, 1)
	assert.Equal(t, "A", s.Blueprint.Nodes[0].Title)
	assert.Empty(t, s.Topic)
}

func TestSnapshotHydrateRoundTrip(t *testing.T) {
	s := NewSessionState("s1")
	s.Topic = "Python"
	s.Constraints = "only 1 hour a day"
	s.AskedForConstraints = true
	s.AppendTurn(RoleUser, "hi")
	s.MacroRetryCount = 2
	s.MacroCriticFeedback = "too shallow"

	b, err := s.Snapshot()
	require.NoError(t, err)

	got, err := HydrateSession(b)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestHydrateRejectsUnknownFields(t *testing.T) {
	_, err := HydrateSession([]byte(`{"id":"s1","legacy_field":"x"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hydrate session snapshot")
}

func TestHydrateRejectsMissingID(t *testing.T) {
	_, err := HydrateSession([]byte(`{"topic":"Go"}`))
	require.Error(t, err)
}

func TestHydrateRestoresFeedbackSentinel(t *testing.T) {
	got, err := HydrateSession([]byte(`{"id":"s1"}`))
	require.NoError(t, err)
	assert.Equal(t, NoFeedback, got.MacroCriticFeedback)
}
