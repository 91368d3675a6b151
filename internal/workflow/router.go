package workflow

import "github.com/skilltree-core-poc/server/internal/workflow/model"

// RouteKind tags the elicitation routing decision.
type RouteKind int

const (
	// RouteAskCore means a required field is still unresolved.
	RouteAskCore RouteKind = iota
	// RouteAskConstraints means core fields are resolved but the
	// optional-constraints question has not been issued yet.
	RouteAskConstraints
	// RouteProceed means all required information is gathered and the
	// session can advance to planning.
	RouteProceed
)

// Route is the typed routing decision. MissingField is set only for
// RouteAskCore.
type Route struct {
	Kind         RouteKind
	MissingField model.FieldName
}

// RouteSession decides the next elicitation stage for the session.
// Pure function of the state: same state in, same decision out. Core
// fields are asked in the fixed priority order topic, experience,
// goal; constraints are considered resolved once asked about,
// regardless of answer content.
func RouteSession(state *model.SessionState) Route {
	if missing := state.MissingCoreField(); missing != "" {
		return Route{Kind: RouteAskCore, MissingField: missing}
	}
	if !state.AskedForConstraints {
		return Route{Kind: RouteAskConstraints}
	}
	return Route{Kind: RouteProceed}
}
