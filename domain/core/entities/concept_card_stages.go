package entities

import (
	"time"

	"github.com/eunyuson/GRACE-sub002/domain/core/valueobjects"
	"github.com/eunyuson/GRACE-sub002/domain/events"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"
	"github.com/google/uuid"
)

// Stage state machines for the three generation stages. Every stage
// call either replaces its whole suggestion list or changes nothing;
// a failure keeps whatever was suggested before the call.

// ReactionStage returns the current reaction stage state
func (c *ConceptCard) ReactionStage() ReactionStage {
	return cloneReactionStage(c.reactionStage)
}

// ConclusionStage returns the current conclusion stage state
func (c *ConceptCard) ConclusionStage() ConclusionStage {
	return cloneConclusionStage(c.conclusionStage)
}

// ScriptureStage returns the current scripture stage state
func (c *ConceptCard) ScriptureStage() ScriptureStage {
	return cloneScriptureStage(c.scriptureStage)
}

// Stage A — reactions

// StartReactionGeneration checks the stage preconditions and moves it
// to loading. Requires at least one linked news item.
func (c *ConceptCard) StartReactionGeneration() error {
	if c.reactionStage.Phase == StageLoading {
		return pkgerrors.NewConflictError("reaction generation already in progress")
	}
	if !c.HasLink(LinkKindRecent, valueobjects.SourceTypeNews) {
		return pkgerrors.NewPreconditionError("link a news item before generating reactions")
	}
	c.reactionStage.Phase = StageLoading
	c.reactionStage.Reason = ""
	return nil
}

// CompleteReactionGeneration replaces the reaction suggestion list
// wholesale with freshly generated snippets
func (c *ConceptCard) CompleteReactionGeneration(texts []string) {
	now := time.Now()
	suggestions := make([]ResponseSnippet, 0, len(texts))
	for _, text := range texts {
		if text == "" {
			continue
		}
		suggestions = append(suggestions, ResponseSnippet{
			ID:        uuid.New().String(),
			Text:      text,
			Pinned:    false,
			Source:    SnippetSourceAI,
			Status:    StatusSuggested,
			CreatedAt: now,
		})
	}
	c.reactionStage = ReactionStage{Phase: StageSuggested, Suggestions: suggestions}
	c.touch(now)
}

// FailReactionGeneration records a stage-scoped error without touching
// the previous suggestions
func (c *ConceptCard) FailReactionGeneration(reason string) {
	c.reactionStage.Phase = StageFailed
	c.reactionStage.Reason = reason
}

// SelectReactionSuggestion promotes one suggested reaction into the
// committed responses as selected and pinned, and drops it from the
// suggestion list
func (c *ConceptCard) SelectReactionSuggestion(suggestionID string) error {
	for i, s := range c.reactionStage.Suggestions {
		if s.ID != suggestionID {
			continue
		}
		if s.Status != StatusSuggested {
			return pkgerrors.NewConflictError("suggestion already decided")
		}

		promoted := s
		promoted.Status = StatusSelected
		promoted.Pinned = true
		c.responses = append(c.responses, promoted)

		c.reactionStage.Suggestions = append(
			c.reactionStage.Suggestions[:i],
			c.reactionStage.Suggestions[i+1:]...,
		)
		c.touch(time.Now())
		return nil
	}
	return pkgerrors.NewNotFoundError("reaction suggestion")
}

// RejectReactionSuggestion drops one suggested reaction
func (c *ConceptCard) RejectReactionSuggestion(suggestionID string) error {
	for i, s := range c.reactionStage.Suggestions {
		if s.ID != suggestionID {
			continue
		}
		if s.Status != StatusSuggested {
			return pkgerrors.NewConflictError("suggestion already decided")
		}
		c.reactionStage.Suggestions = append(
			c.reactionStage.Suggestions[:i],
			c.reactionStage.Suggestions[i+1:]...,
		)
		c.touch(time.Now())
		return nil
	}
	return pkgerrors.NewNotFoundError("reaction suggestion")
}

// Stage B — conclusions

// StartConclusionGeneration checks the stage preconditions and moves
// it to loading. Requires at least one pinned committed response.
func (c *ConceptCard) StartConclusionGeneration() error {
	if c.conclusionStage.Phase == StageLoading {
		return pkgerrors.NewConflictError("conclusion generation already in progress")
	}
	if len(c.PinnedResponses()) == 0 {
		return pkgerrors.NewPreconditionError("pin at least one response before generating conclusions")
	}
	c.conclusionStage.Phase = StageLoading
	c.conclusionStage.Reason = ""
	return nil
}

// CompleteConclusionGeneration replaces the candidate list wholesale
func (c *ConceptCard) CompleteConclusionGeneration(texts []string) {
	candidates := make([]ConclusionCandidate, 0, len(texts))
	for _, text := range texts {
		if text == "" {
			continue
		}
		candidates = append(candidates, ConclusionCandidate{
			ID:     uuid.New().String(),
			Text:   text,
			Status: StatusSuggested,
		})
	}
	c.conclusionStage = ConclusionStage{Phase: StageSuggested, Candidates: candidates}
	c.touch(time.Now())
}

// FailConclusionGeneration records a stage-scoped error without
// touching the previous candidates
func (c *ConceptCard) FailConclusionGeneration(reason string) {
	c.conclusionStage.Phase = StageFailed
	c.conclusionStage.Reason = reason
}

// SelectConclusionCandidate sets the card's conclusion to the chosen
// candidate's text, marks it selected and every sibling rejected. The
// pick is mutually exclusive.
func (c *ConceptCard) SelectConclusionCandidate(candidateID string) error {
	found := false
	for _, cand := range c.conclusionStage.Candidates {
		if cand.ID == candidateID {
			if cand.Status != StatusSuggested {
				return pkgerrors.NewConflictError("candidate already decided")
			}
			found = true
			break
		}
	}
	if !found {
		return pkgerrors.NewNotFoundError("conclusion candidate")
	}

	now := time.Now()
	for i := range c.conclusionStage.Candidates {
		if c.conclusionStage.Candidates[i].ID == candidateID {
			c.conclusionStage.Candidates[i].Status = StatusSelected
			c.conclusion = c.conclusionStage.Candidates[i].Text
		} else {
			c.conclusionStage.Candidates[i].Status = StatusRejected
		}
	}
	c.touch(now)
	c.addEvent(events.NewConclusionSet(c.id.String(), c.conclusion, now))
	return nil
}

// Stage C — scripture support

// StartScriptureGeneration checks the stage preconditions and moves it
// to loading. Requires a non-empty conclusion.
func (c *ConceptCard) StartScriptureGeneration() error {
	if c.scriptureStage.Phase == StageLoading {
		return pkgerrors.NewConflictError("scripture recommendation already in progress")
	}
	if c.conclusion == "" {
		return pkgerrors.NewPreconditionError("finalize a conclusion before requesting scripture support")
	}
	c.scriptureStage.Phase = StageLoading
	c.scriptureStage.Reason = ""
	return nil
}

// CompleteScriptureGeneration replaces the candidate list wholesale
func (c *ConceptCard) CompleteScriptureGeneration(candidates []ScriptureCandidate) {
	kept := make([]ScriptureCandidate, 0, len(candidates))
	for _, cand := range candidates {
		if cand.ReflectionID == "" {
			continue
		}
		cand.Status = StatusSuggested
		kept = append(kept, cand)
	}
	c.scriptureStage = ScriptureStage{Phase: StageSuggested, Candidates: kept}
	c.touch(time.Now())
}

// FailScriptureGeneration records a stage-scoped error without
// touching the previous candidates
func (c *ConceptCard) FailScriptureGeneration(reason string) {
	c.scriptureStage.Phase = StageFailed
	c.scriptureStage.Reason = reason
}

// PinScriptureSuggestion converts a recommended reflection into a
// pinned scripture-support link and drops it from the suggestion list
func (c *ConceptCard) PinScriptureSuggestion(reflectionID, sourcePath string) error {
	for i, cand := range c.scriptureStage.Candidates {
		if cand.ReflectionID != reflectionID {
			continue
		}

		ref, err := valueobjects.NewSourceRef(valueobjects.SourceTypeReflection, reflectionID, sourcePath)
		if err != nil {
			return err
		}
		if err := c.AddLink(LinkKindScripture, ref); err != nil {
			return err
		}
		// manual-confirmation semantics: pinned, full confidence
		for j := range c.links {
			if c.links[j].Kind == LinkKindScripture && c.links[j].Ref.ID() == reflectionID {
				c.links[j].Pinned = true
				c.links[j].Confidence = 1.0
			}
		}

		c.scriptureStage.Candidates = append(
			c.scriptureStage.Candidates[:i],
			c.scriptureStage.Candidates[i+1:]...,
		)
		c.touch(time.Now())
		return nil
	}
	return pkgerrors.NewNotFoundError("scripture suggestion")
}

// RejectScriptureSuggestion drops one recommended reflection
func (c *ConceptCard) RejectScriptureSuggestion(reflectionID string) error {
	for i, cand := range c.scriptureStage.Candidates {
		if cand.ReflectionID != reflectionID {
			continue
		}
		c.scriptureStage.Candidates = append(
			c.scriptureStage.Candidates[:i],
			c.scriptureStage.Candidates[i+1:]...,
		)
		c.touch(time.Now())
		return nil
	}
	return pkgerrors.NewNotFoundError("scripture suggestion")
}

func cloneReactionStage(s ReactionStage) ReactionStage {
	out := ReactionStage{Phase: s.Phase, Reason: s.Reason}
	if s.Suggestions != nil {
		out.Suggestions = make([]ResponseSnippet, len(s.Suggestions))
		copy(out.Suggestions, s.Suggestions)
	}
	return out
}

func cloneConclusionStage(s ConclusionStage) ConclusionStage {
	out := ConclusionStage{Phase: s.Phase, Reason: s.Reason}
	if s.Candidates != nil {
		out.Candidates = make([]ConclusionCandidate, len(s.Candidates))
		copy(out.Candidates, s.Candidates)
	}
	return out
}

func cloneScriptureStage(s ScriptureStage) ScriptureStage {
	out := ScriptureStage{Phase: s.Phase, Reason: s.Reason}
	if s.Candidates != nil {
		out.Candidates = make([]ScriptureCandidate, len(s.Candidates))
		copy(out.Candidates, s.Candidates)
	}
	return out
}
