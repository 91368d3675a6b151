package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FieldName identifies one of the elicited session fields.
type FieldName string

const (
	FieldTopic          FieldName = "topic"
	FieldExperience     FieldName = "experience"
	FieldGoal           FieldName = "goal"
	FieldConstraints    FieldName = "constraints"
	FieldTimeCommitment FieldName = "time_commitment"
	FieldPreference     FieldName = "preference"
)

// CoreFields lists the required fields in question-priority order.
// The order is a contract: the router always asks for the first unset
// field, so question ordering is deterministic across turns.
var CoreFields = []FieldName{FieldTopic, FieldExperience, FieldGoal}

// NoFeedback is the sentinel carried in MacroCriticFeedback before any
// rejection has produced real feedback.
const NoFeedback = "None"

// ChatTurn is one entry in the ordered conversation transcript.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SessionState is the durable record of one conversation/planning
// session. It is pure data; the engine owns all mutation and persists
// the full snapshot after every transition.
type SessionState struct {
	ID string `json:"id"`

	Topic          string `json:"topic"`
	Experience     string `json:"experience"`
	Goal           string `json:"goal"`
	Constraints    string `json:"constraints"`
	TimeCommitment string `json:"time_commitment"`
	Preference     string `json:"preference"`

	AskedForConstraints bool       `json:"asked_for_constraints"`
	ChatHistory         []ChatTurn `json:"chat_history"`

	Blueprint           *Blueprint `json:"blueprint"`
	MacroCriticFeedback string     `json:"macro_critic_feedback"`
	MacroRetryCount     int        `json:"macro_retry_count"`

	// Scratch field for the message being processed; overwritten each turn.
	LatestUserMessage string `json:"latest_user_message"`
}

// NewSessionState returns a fresh session with all fields at defaults.
func NewSessionState(id string) *SessionState {
	return &SessionState{
		ID:                  id,
		MacroCriticFeedback: NoFeedback,
	}
}

// ExtractedFields is a partial field update produced by a FieldExtractor.
// A nil pointer means "no new information" for that field.
type ExtractedFields struct {
	Topic          *string `json:"topic,omitempty"`
	Experience     *string `json:"experience,omitempty"`
	Goal           *string `json:"goal,omitempty"`
	Constraints    *string `json:"constraints,omitempty"`
	TimeCommitment *string `json:"time_commitment,omitempty"`
	Preference     *string `json:"preference,omitempty"`
}

// Merge applies a partial extraction to the session. Resolved fields
// are never overwritten; constraints are append-only, so every
// non-empty fragment ever extracted survives in call order.
func (s *SessionState) Merge(u ExtractedFields) {
	setIfUnset(&s.Topic, u.Topic)
	setIfUnset(&s.Experience, u.Experience)
	setIfUnset(&s.Goal, u.Goal)
	setIfUnset(&s.TimeCommitment, u.TimeCommitment)
	setIfUnset(&s.Preference, u.Preference)

	if u.Constraints != nil {
		if fragment := strings.TrimSpace(*u.Constraints); fragment != "" {
			if s.Constraints == "" {
				s.Constraints = fragment
			} else {
				s.Constraints = s.Constraints + "; " + fragment
			}
		}
	}
}

func setIfUnset(dst *string, src *string) {
	if *dst != "" || src == nil {
		return
	}
	if v := strings.TrimSpace(*src); v != "" {
		*dst = v
	}
}

// FieldValue returns the current value of a named elicited field.
func (s *SessionState) FieldValue(f FieldName) string {
	switch f {
	case FieldTopic:
		return s.Topic
	case FieldExperience:
		return s.Experience
	case FieldGoal:
		return s.Goal
	case FieldConstraints:
		return s.Constraints
	case FieldTimeCommitment:
		return s.TimeCommitment
	case FieldPreference:
		return s.Preference
	}
	return ""
}

// MissingCoreField returns the first unresolved core field in priority
// order, or "" when all core fields are resolved.
func (s *SessionState) MissingCoreField() FieldName {
	for _, f := range CoreFields {
		if s.FieldValue(f) == "" {
			return f
		}
	}
	return ""
}

// AppendTurn records one transcript entry. The transcript is
// append-only and never reordered.
func (s *SessionState) AppendTurn(role Role, content string) {
	s.ChatHistory = append(s.ChatHistory, ChatTurn{Role: role, Content: content})
}

// Clone returns a deep copy so a stage can be attempted without
// committing mutations to the loaded snapshot.
func (s *SessionState) Clone() *SessionState {
	cp := *s
	cp.ChatHistory = make([]ChatTurn, len(s.ChatHistory))
	copy(cp.ChatHistory, s.ChatHistory)
	if s.Blueprint != nil {
		bp := s.Blueprint.Clone()
		cp.Blueprint = bp
	}
	return &cp
}

// Snapshot serializes the session for storage.
func (s *SessionState) Snapshot() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session %s: %w", s.ID, err)
	}
	return b, nil
}

// HydrateSession decodes a stored snapshot. Decoding is schema-strict:
// unknown fields fail loudly instead of being silently dropped, so a
// stale or foreign snapshot is surfaced rather than half-loaded.
func HydrateSession(data []byte) (*SessionState, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var s SessionState
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("hydrate session snapshot: %w", err)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("hydrate session snapshot: missing id")
	}
	if s.MacroCriticFeedback == "" {
		s.MacroCriticFeedback = NoFeedback
	}
	return &s, nil
}
