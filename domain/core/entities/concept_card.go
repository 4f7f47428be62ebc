package entities

import (
	"fmt"
	"time"

	"github.com/eunyuson/GRACE-sub002/domain/config"
	"github.com/eunyuson/GRACE-sub002/domain/core/valueobjects"
	"github.com/eunyuson/GRACE-sub002/domain/events"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"
	"github.com/google/uuid"
)

// ConceptCard is the aggregate capturing a recurring question and its
// evolving answer: the linked evidence, the author's responses, the
// finalized conclusion and its scripture support. A card is a draft
// until the store assigns it an identity; while draft, every mutation
// accumulates locally and flushes in one write on save.
type ConceptCard struct {
	id          valueobjects.CardID
	conceptName string
	question    valueobjects.Question

	// aStatement is the naive worldly framing; conclusion is the
	// corrected framing that answers it
	aStatement string
	conclusion string

	links     []Link
	responses []ResponseSnippet

	reactionStage   ReactionStage
	conclusionStage ConclusionStage
	scriptureStage  ScriptureStage

	userID   string
	userName string

	createdAt time.Time
	updatedAt time.Time

	// dirty is set on every mutation and cleared once the store
	// acknowledges the corresponding write
	dirty bool

	events []events.DomainEvent
}

// NewConceptCard creates a draft card with full business rule validation
func NewConceptCard(userID, userName, conceptName string, question valueobjects.Question) (*ConceptCard, error) {
	return NewConceptCardWithConfig(userID, userName, conceptName, question, config.DefaultDomainConfig())
}

// NewConceptCardWithConfig creates a draft card with configuration
func NewConceptCardWithConfig(userID, userName, conceptName string, question valueobjects.Question, cfg *config.DomainConfig) (*ConceptCard, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if conceptName == "" {
		return nil, pkgerrors.NewValidationError("concept name cannot be empty")
	}
	if question.IsEmpty() {
		return nil, pkgerrors.NewValidationError("question cannot be empty")
	}

	now := time.Now()
	return &ConceptCard{
		id:              valueobjects.NewDraftCardID(),
		conceptName:     conceptName,
		question:        question,
		links:           []Link{},
		responses:       []ResponseSnippet{},
		reactionStage:   ReactionStage{Phase: StageIdle},
		conclusionStage: ConclusionStage{Phase: StageIdle},
		scriptureStage:  ScriptureStage{Phase: StageIdle},
		userID:          userID,
		userName:        userName,
		createdAt:       now,
		updatedAt:       now,
		dirty:           true,
		events:          []events.DomainEvent{},
	}, nil
}

// ReconstructConceptCard rebuilds a card from repository data with
// preserved timestamps. Stage state is rebuilt as stored; a stage that
// was loading when the document was written comes back idle because an
// in-flight call never survives a restart.
func ReconstructConceptCard(
	id valueobjects.CardID,
	userID, userName, conceptName string,
	question valueobjects.Question,
	aStatement, conclusion string,
	links []Link,
	responses []ResponseSnippet,
	reactionStage ReactionStage,
	conclusionStage ConclusionStage,
	scriptureStage ScriptureStage,
	createdAt, updatedAt time.Time,
) (*ConceptCard, error) {
	if id.IsDraft() {
		return nil, pkgerrors.NewValidationError("cannot reconstruct a card without identity")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}

	if reactionStage.Phase == StageLoading || reactionStage.Phase == "" {
		reactionStage.Phase = StageIdle
	}
	if conclusionStage.Phase == StageLoading || conclusionStage.Phase == "" {
		conclusionStage.Phase = StageIdle
	}
	if scriptureStage.Phase == StageLoading || scriptureStage.Phase == "" {
		scriptureStage.Phase = StageIdle
	}

	if links == nil {
		links = []Link{}
	}
	if responses == nil {
		responses = []ResponseSnippet{}
	}

	return &ConceptCard{
		id:              id,
		conceptName:     conceptName,
		question:        question,
		aStatement:      aStatement,
		conclusion:      conclusion,
		links:           links,
		responses:       responses,
		reactionStage:   reactionStage,
		conclusionStage: conclusionStage,
		scriptureStage:  scriptureStage,
		userID:          userID,
		userName:        userName,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
		events:          []events.DomainEvent{},
	}, nil
}

// ID returns the card's identity, which may still be a draft
func (c *ConceptCard) ID() valueobjects.CardID {
	return c.id
}

// AssignIdentity promotes a draft card to a persisted identity.
// The first successful create call goes through here; all mutations
// accumulated while draft flush with that write.
func (c *ConceptCard) AssignIdentity() error {
	if !c.id.IsDraft() {
		return pkgerrors.NewConflictError("card already has an identity")
	}
	c.id = c.id.AssignIdentity()
	c.addEvent(events.NewCardCreated(c.id.String(), c.userID, c.conceptName, c.question.String(), time.Now()))
	return nil
}

// ConceptName returns the card's concept name
func (c *ConceptCard) ConceptName() string {
	return c.conceptName
}

// Question returns the card's question
func (c *ConceptCard) Question() valueobjects.Question {
	return c.question
}

// AStatement returns the author's worldly-framing statement, if any
func (c *ConceptCard) AStatement() string {
	return c.aStatement
}

// SetAStatement records the author's worldly-framing statement
func (c *ConceptCard) SetAStatement(text string) {
	if c.aStatement == text {
		return
	}
	c.aStatement = text
	c.touch(time.Now())
}

// Conclusion returns the finalized corrected-framing statement, if any
func (c *ConceptCard) Conclusion() string {
	return c.conclusion
}

// UserID returns the owner's ID
func (c *ConceptCard) UserID() string {
	return c.userID
}

// UserName returns the owner's display name
func (c *ConceptCard) UserName() string {
	return c.userName
}

// CreatedAt returns when the card was created
func (c *ConceptCard) CreatedAt() time.Time {
	return c.createdAt
}

// UpdatedAt returns when the card was last updated
func (c *ConceptCard) UpdatedAt() time.Time {
	return c.updatedAt
}

// IsDirty reports whether the card has mutations the store has not acknowledged
func (c *ConceptCard) IsDirty() bool {
	return c.dirty
}

// MarkClean records that the store acknowledged the current state
func (c *ConceptCard) MarkClean() {
	c.dirty = false
}

// Linking

// AddLink attaches a source document to the given section. Re-adding a
// document already present in that section is a no-op.
func (c *ConceptCard) AddLink(kind LinkKind, ref valueobjects.SourceRef) error {
	return c.AddLinkWithSlot(kind, ref, SlotNone)
}

// AddLinkWithSlot attaches a source document and records the legacy
// evidence slot on the same link record. The A/B panel is derived from
// it, never written separately.
func (c *ConceptCard) AddLinkWithSlot(kind LinkKind, ref valueobjects.SourceRef, slot EvidenceSlot) error {
	return c.addLinkWithConfig(kind, ref, slot, config.DefaultDomainConfig())
}

func (c *ConceptCard) addLinkWithConfig(kind LinkKind, ref valueobjects.SourceRef, slot EvidenceSlot, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if kind != LinkKindRecent && kind != LinkKindScripture {
		return pkgerrors.NewValidationError("unknown link kind")
	}
	switch slot {
	case SlotNone, SlotWorldly, SlotCorrected:
	default:
		return pkgerrors.NewValidationError("unknown evidence slot")
	}

	for _, l := range c.links {
		if l.Kind == kind && l.Ref.SameDocument(ref) {
			return nil // already linked
		}
	}

	if c.countLinks(kind) >= cfg.MaxLinksPerSection {
		return fmt.Errorf("maximum links reached: %d", cfg.MaxLinksPerSection)
	}

	now := time.Now()
	c.links = append(c.links, Link{
		Ref:        ref,
		Kind:       kind,
		Slot:       slot,
		Pinned:     false,
		Confidence: cfg.ManualLinkConfidence,
		AddedAt:    now,
	})
	c.touch(now)

	c.addEvent(events.NewLinkAdded(c.id.String(), string(kind), string(ref.Type()), ref.ID(), string(slot), now))
	return nil
}

// RemoveLink detaches a source document from the given section.
// Removing a document that is not linked is a no-op.
func (c *ConceptCard) RemoveLink(kind LinkKind, sourceID string) {
	kept := c.links[:0]
	removed := false
	for _, l := range c.links {
		if l.Kind == kind && l.Ref.ID() == sourceID {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	c.links = kept

	if removed {
		now := time.Now()
		c.touch(now)
		c.addEvent(events.NewLinkRemoved(c.id.String(), string(kind), sourceID, now))
	}
}

// TogglePin flips the pinned flag on the matching link only; ordering
// is unchanged.
func (c *ConceptCard) TogglePin(kind LinkKind, sourceID string) error {
	for i := range c.links {
		if c.links[i].Kind == kind && c.links[i].Ref.ID() == sourceID {
			c.links[i].Pinned = !c.links[i].Pinned
			now := time.Now()
			c.touch(now)
			c.addEvent(events.NewLinkPinToggled(c.id.String(), string(kind), sourceID, c.links[i].Pinned, now))
			return nil
		}
	}
	return pkgerrors.NewNotFoundError("link")
}

// HasLink reports whether a document of the given source type is
// linked in the given section
func (c *ConceptCard) HasLink(kind LinkKind, sourceType valueobjects.SourceType) bool {
	for _, l := range c.links {
		if l.Kind == kind && l.Ref.Type() == sourceType {
			return true
		}
	}
	return false
}

// FirstLink returns the oldest link of the given kind and source type
func (c *ConceptCard) FirstLink(kind LinkKind, sourceType valueobjects.SourceType) (Link, bool) {
	for _, l := range c.links {
		if l.Kind == kind && l.Ref.Type() == sourceType {
			return l, true
		}
	}
	return Link{}, false
}

// Links returns a copy of all normalized link records
func (c *ConceptCard) Links() []Link {
	links := make([]Link, len(c.links))
	copy(links, c.links)
	return links
}

// SequenceView projects the links of one section into the new model's shape
func (c *ConceptCard) SequenceView(kind LinkKind) []SequenceItem {
	items := []SequenceItem{}
	for _, l := range c.links {
		if l.Kind == kind {
			items = append(items, l.toSequenceItem())
		}
	}
	return items
}

// BridgeView projects slotted links into the legacy A/B evidence panel
func (c *ConceptCard) BridgeView() BridgeData {
	bridge := BridgeData{
		AEvidence: []EvidenceItem{},
		BEvidence: []EvidenceItem{},
	}
	for _, l := range c.links {
		switch l.Slot {
		case SlotWorldly:
			bridge.AEvidence = append(bridge.AEvidence, l.toEvidenceItem())
		case SlotCorrected:
			bridge.BEvidence = append(bridge.BEvidence, l.toEvidenceItem())
		}
	}
	return bridge
}

// Responses

// Responses returns a copy of the committed response snippets
func (c *ConceptCard) Responses() []ResponseSnippet {
	responses := make([]ResponseSnippet, len(c.responses))
	copy(responses, c.responses)
	return responses
}

// PinnedResponses returns the committed snippets marked as confirmed
func (c *ConceptCard) PinnedResponses() []ResponseSnippet {
	pinned := []ResponseSnippet{}
	for _, r := range c.responses {
		if r.Pinned {
			pinned = append(pinned, r)
		}
	}
	return pinned
}

// AddManualResponse commits an author-typed snippet directly
func (c *ConceptCard) AddManualResponse(text string) error {
	if text == "" {
		return pkgerrors.NewValidationError("response text cannot be empty")
	}
	now := time.Now()
	c.responses = append(c.responses, ResponseSnippet{
		ID:        uuid.New().String(),
		Text:      text,
		Pinned:    false,
		Source:    SnippetSourceManual,
		Status:    StatusSelected,
		CreatedAt: now,
	})
	c.touch(now)
	return nil
}

// ToggleResponsePin flips the pinned flag of a committed snippet
func (c *ConceptCard) ToggleResponsePin(snippetID string) error {
	for i := range c.responses {
		if c.responses[i].ID == snippetID {
			c.responses[i].Pinned = !c.responses[i].Pinned
			c.touch(time.Now())
			return nil
		}
	}
	return pkgerrors.NewNotFoundError("response")
}

// internals

func (c *ConceptCard) countLinks(kind LinkKind) int {
	n := 0
	for _, l := range c.links {
		if l.Kind == kind {
			n++
		}
	}
	return n
}

func (c *ConceptCard) touch(now time.Time) {
	c.updatedAt = now
	c.dirty = true
}

// GetUncommittedEvents returns all uncommitted domain events
func (c *ConceptCard) GetUncommittedEvents() []events.DomainEvent {
	return c.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (c *ConceptCard) MarkEventsAsCommitted() {
	c.events = []events.DomainEvent{}
}

func (c *ConceptCard) addEvent(event events.DomainEvent) {
	c.events = append(c.events, event)
}
