package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skilltree-core-poc/server/internal/workflow/model"
)

func TestRouteSessionAsksCoreFieldsInPriorityOrder(t *testing.T) {
	s := model.NewSessionState("s1")

	r := RouteSession(s)
	assert.Equal(t, RouteAskCore, r.Kind)
	assert.Equal(t, model.FieldTopic, r.MissingField)

	s.Topic = "Python"
	r = RouteSession(s)
	assert.Equal(t, RouteAskCore, r.Kind)
	assert.Equal(t, model.FieldExperience, r.MissingField)

	s.Experience = "beginner"
	r = RouteSession(s)
	assert.Equal(t, RouteAskCore, r.Kind)
	assert.Equal(t, model.FieldGoal, r.MissingField)
}

func TestRouteSessionAsksConstraintsOnceCoreResolved(t *testing.T) {
	s := model.NewSessionState("s1")
	s.Topic = "Python"
	s.Experience = "beginner"
	s.Goal = "automate tasks"

	r := RouteSession(s)
	assert.Equal(t, RouteAskConstraints, r.Kind)
}

func TestRouteSessionProceedsAfterConstraintsAsked(t *testing.T) {
	s := model.NewSessionState("s1")
	s.Topic = "Python"
	s.Experience = "beginner"
	s.Goal = "automate tasks"
	s.AskedForConstraints = true

	// Constraints count as resolved once asked, whatever the answer was.
	r := RouteSession(s)
	assert.Equal(t, RouteProceed, r.Kind)
}

func TestRouteSessionIsDeterministic(t *testing.T) {
	s := model.NewSessionState("s1")
	s.Topic = "Go"

	first := RouteSession(s)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, RouteSession(s))
	}
}
