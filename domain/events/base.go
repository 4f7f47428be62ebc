package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// Card events

// CardCreated is raised when a draft card receives its durable identity
type CardCreated struct {
	BaseEvent
	UserID      string `json:"user_id"`
	ConceptName string `json:"concept_name"`
	Question    string `json:"question"`
}

// NewCardCreated creates a CardCreated event
func NewCardCreated(cardID, userID, conceptName, question string, timestamp time.Time) CardCreated {
	return CardCreated{
		BaseEvent: BaseEvent{
			AggregateID: cardID,
			EventType:   "card.created",
			Timestamp:   timestamp,
		},
		UserID:      userID,
		ConceptName: conceptName,
		Question:    question,
	}
}

// LinkAdded is raised when a source document is attached to a card
type LinkAdded struct {
	BaseEvent
	Kind       string `json:"kind"`
	SourceType string `json:"source_type"`
	SourceID   string `json:"source_id"`
	Slot       string `json:"slot,omitempty"`
}

// NewLinkAdded creates a LinkAdded event
func NewLinkAdded(cardID, kind, sourceType, sourceID, slot string, timestamp time.Time) LinkAdded {
	return LinkAdded{
		BaseEvent: BaseEvent{
			AggregateID: cardID,
			EventType:   "card.link_added",
			Timestamp:   timestamp,
		},
		Kind:       kind,
		SourceType: sourceType,
		SourceID:   sourceID,
		Slot:       slot,
	}
}

// LinkRemoved is raised when a source document is detached from a card
type LinkRemoved struct {
	BaseEvent
	Kind     string `json:"kind"`
	SourceID string `json:"source_id"`
}

// NewLinkRemoved creates a LinkRemoved event
func NewLinkRemoved(cardID, kind, sourceID string, timestamp time.Time) LinkRemoved {
	return LinkRemoved{
		BaseEvent: BaseEvent{
			AggregateID: cardID,
			EventType:   "card.link_removed",
			Timestamp:   timestamp,
		},
		Kind:     kind,
		SourceID: sourceID,
	}
}

// LinkPinToggled is raised when a link's pinned flag is flipped
type LinkPinToggled struct {
	BaseEvent
	Kind     string `json:"kind"`
	SourceID string `json:"source_id"`
	Pinned   bool   `json:"pinned"`
}

// NewLinkPinToggled creates a LinkPinToggled event
func NewLinkPinToggled(cardID, kind, sourceID string, pinned bool, timestamp time.Time) LinkPinToggled {
	return LinkPinToggled{
		BaseEvent: BaseEvent{
			AggregateID: cardID,
			EventType:   "card.link_pin_toggled",
			Timestamp:   timestamp,
		},
		Kind:     kind,
		SourceID: sourceID,
		Pinned:   pinned,
	}
}

// ConclusionSet is raised when the card's conclusion is finalized
type ConclusionSet struct {
	BaseEvent
	Conclusion string `json:"conclusion"`
}

// NewConclusionSet creates a ConclusionSet event
func NewConclusionSet(cardID, conclusion string, timestamp time.Time) ConclusionSet {
	return ConclusionSet{
		BaseEvent: BaseEvent{
			AggregateID: cardID,
			EventType:   "card.conclusion_set",
			Timestamp:   timestamp,
		},
		Conclusion: conclusion,
	}
}
