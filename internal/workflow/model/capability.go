package model

import "context"

// FieldExtractor infers structured session fields from a free-form
// user message. Absent fields in the result mean "no new information";
// the engine applies the additive merge rules, never the extractor.
type FieldExtractor interface {
	Extract(ctx context.Context, known *SessionState, message string) (ExtractedFields, error)
}

// QuestionGenerator produces the next question to put to the user.
type QuestionGenerator interface {
	// AskCore asks for one named missing required field.
	AskCore(ctx context.Context, state *SessionState, missing FieldName) (string, error)

	// AskConstraints asks the single optional-constraints question,
	// given the full core-field context.
	AskConstraints(ctx context.Context, state *SessionState) (string, error)
}

// GenerationResult is one blueprint attempt plus the critic's verdict.
// Feedback is meaningful only when Approved is false.
type GenerationResult struct {
	Blueprint *Blueprint
	Approved  bool
	Feedback  string
}

// BlueprintGenerator drafts a learning blueprint and evaluates it.
// It is an opaque, potentially slow and unreliable remote capability;
// the planning loop owns retry and termination, not the generator.
type BlueprintGenerator interface {
	Generate(ctx context.Context, state *SessionState) (GenerationResult, error)
}

// SessionRepository is the persistence contract for session snapshots.
type SessionRepository interface {
	// Load returns the stored session, or (nil, nil) when no snapshot
	// exists for the id.
	Load(ctx context.Context, sessionID string) (*SessionState, error)

	// Save overwrites the full snapshot for the session (last-write-wins).
	Save(ctx context.Context, state *SessionState) error

	// Delete removes the stored snapshot.
	Delete(ctx context.Context, sessionID string) error
}
