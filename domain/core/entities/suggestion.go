package entities

import (
	"time"
)

// SnippetSource records whether a response snippet came from the
// generation collaborator or was typed by the author
type SnippetSource string

const (
	SnippetSourceAI     SnippetSource = "ai"
	SnippetSourceManual SnippetSource = "manual"
)

// SuggestionStatus is the per-suggestion state machine. A suggestion
// starts as suggested and ends as selected or rejected; both end
// states are terminal.
type SuggestionStatus string

const (
	StatusSuggested SuggestionStatus = "suggested"
	StatusSelected  SuggestionStatus = "selected"
	StatusRejected  SuggestionStatus = "rejected"
)

// ResponseSnippet is a short reaction attached to a card. Committed
// snippets live in the card's responses; AI output awaiting a decision
// lives in the reaction stage until promoted.
type ResponseSnippet struct {
	ID        string           `json:"id"`
	Text      string           `json:"text"`
	Pinned    bool             `json:"pinned"`
	Source    SnippetSource    `json:"source"`
	Status    SuggestionStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
}

// ConclusionCandidate is one AI-proposed corrected-framing statement
type ConclusionCandidate struct {
	ID     string           `json:"id"`
	Text   string           `json:"text"`
	Status SuggestionStatus `json:"status"`
}

// ScriptureCandidate is one AI-recommended reflection for the
// scripture-support section
type ScriptureCandidate struct {
	ReflectionID string           `json:"reflectionId"`
	Reason       string           `json:"reason"`
	Similarity   float64          `json:"similarity"`
	Status       SuggestionStatus `json:"status"`
}

// StagePhase is the lifecycle of one generation stage
type StagePhase string

const (
	StageIdle      StagePhase = "idle"
	StageLoading   StagePhase = "loading"
	StageSuggested StagePhase = "suggested"
	StageFailed    StagePhase = "failed"
)

// ReactionStage holds the state of the reaction generation stage.
// A completed generation always replaces Suggestions wholesale; a
// failed generation keeps whatever was suggested before.
type ReactionStage struct {
	Phase       StagePhase        `json:"phase"`
	Suggestions []ResponseSnippet `json:"suggestions,omitempty"`
	Reason      string            `json:"reason,omitempty"`
}

// ConclusionStage holds the state of the conclusion generation stage
type ConclusionStage struct {
	Phase      StagePhase            `json:"phase"`
	Candidates []ConclusionCandidate `json:"candidates,omitempty"`
	Reason     string                `json:"reason,omitempty"`
}

// ScriptureStage holds the state of the scripture recommendation stage
type ScriptureStage struct {
	Phase      StagePhase           `json:"phase"`
	Candidates []ScriptureCandidate `json:"candidates,omitempty"`
	Reason     string               `json:"reason,omitempty"`
}
