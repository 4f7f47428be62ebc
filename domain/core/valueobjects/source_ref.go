package valueobjects

import (
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"
)

// SourceType identifies which collection a linked document lives in
type SourceType string

const (
	SourceTypeNews       SourceType = "news"
	SourceTypeReflection SourceType = "reflection"
)

// SourceRef is a reference to a document in another collection.
// Referential integrity is not store-enforced; resolution happens at
// read time and unresolved references are dropped from rendering.
type SourceRef struct {
	sourceType SourceType
	id         string
	path       string // optional parent path, reflections only
}

// NewSourceRef creates a validated source reference
func NewSourceRef(sourceType SourceType, id, path string) (SourceRef, error) {
	switch sourceType {
	case SourceTypeNews, SourceTypeReflection:
	default:
		return SourceRef{}, pkgerrors.NewValidationError("unknown source type")
	}
	if id == "" {
		return SourceRef{}, pkgerrors.NewValidationError("source ID cannot be empty")
	}
	return SourceRef{sourceType: sourceType, id: id, path: path}, nil
}

// Type returns the source collection kind
func (r SourceRef) Type() SourceType {
	return r.sourceType
}

// ID returns the referenced document ID
func (r SourceRef) ID() string {
	return r.id
}

// Path returns the optional parent path of the referenced document
func (r SourceRef) Path() string {
	return r.path
}

// SameDocument checks identity on (type, id) only; the path is
// location metadata and does not participate in uniqueness.
func (r SourceRef) SameDocument(other SourceRef) bool {
	return r.sourceType == other.sourceType && r.id == other.id
}
