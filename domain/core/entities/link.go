package entities

import (
	"time"

	"github.com/eunyuson/GRACE-sub002/domain/core/valueobjects"
)

// LinkKind selects which section of a card a link belongs to
type LinkKind string

const (
	// LinkKindRecent holds the items an author attached while browsing
	LinkKindRecent LinkKind = "recent"
	// LinkKindScripture holds reflections supporting the conclusion
	LinkKindScripture LinkKind = "scripture"
)

// EvidenceSlot is the legacy two-bucket classification of a link
type EvidenceSlot string

const (
	SlotNone EvidenceSlot = ""
	// SlotWorldly marks evidence for the naive worldly framing
	SlotWorldly EvidenceSlot = "A"
	// SlotCorrected marks evidence for the corrected framing
	SlotCorrected EvidenceSlot = "B"
)

// Link is the one normalized record of a card-to-source connection.
// Both the sequence view and the legacy evidence view are derived from
// it, so a single mutation can never leave the two out of sync.
type Link struct {
	Ref        valueobjects.SourceRef
	Kind       LinkKind
	Slot       EvidenceSlot
	Pinned     bool
	Confidence float64
	AddedAt    time.Time
}

// SequenceItem is the persisted and rendered shape of a link
type SequenceItem struct {
	SourceType string    `json:"sourceType"`
	SourceID   string    `json:"sourceId"`
	SourcePath string    `json:"sourcePath,omitempty"`
	Pinned     bool      `json:"pinned"`
	Confidence float64   `json:"confidence"`
	AddedAt    time.Time `json:"addedAt"`
}

// EvidenceItem is the legacy shape of a link in the A/B bridge view
type EvidenceItem struct {
	SourceType string `json:"sourceType"`
	SourceID   string `json:"sourceId"`
	SourcePath string `json:"sourcePath,omitempty"`
}

// BridgeData is the legacy two-bucket evidence panel, derived per read
type BridgeData struct {
	AEvidence []EvidenceItem `json:"aEvidence"`
	BEvidence []EvidenceItem `json:"bEvidence"`
}

// toSequenceItem projects a link into the new model's shape
func (l Link) toSequenceItem() SequenceItem {
	return SequenceItem{
		SourceType: string(l.Ref.Type()),
		SourceID:   l.Ref.ID(),
		SourcePath: l.Ref.Path(),
		Pinned:     l.Pinned,
		Confidence: l.Confidence,
		AddedAt:    l.AddedAt,
	}
}

// toEvidenceItem projects a link into the legacy panel's shape
func (l Link) toEvidenceItem() EvidenceItem {
	return EvidenceItem{
		SourceType: string(l.Ref.Type()),
		SourceID:   l.Ref.ID(),
		SourcePath: l.Ref.Path(),
	}
}
