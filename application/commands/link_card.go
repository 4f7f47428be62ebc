package commands

import (
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"
)

// AddLinkCommand attaches a source document to one section of a card.
// Slot is set only by the legacy evidence entry point; the A/B panel
// is derived from the same link record.
type AddLinkCommand struct {
	CardID     string `json:"card_id"`
	UserID     string `json:"user_id"`
	Kind       string `json:"kind"`
	SourceType string `json:"source_type"`
	SourceID   string `json:"source_id"`
	SourcePath string `json:"source_path,omitempty"`
	Slot       string `json:"slot,omitempty"`
}

// Validate validates the command
func (c *AddLinkCommand) Validate() error {
	if c.CardID == "" {
		return pkgerrors.NewValidationError("card ID is required")
	}
	if c.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if c.Kind != "recent" && c.Kind != "scripture" {
		return pkgerrors.NewValidationError("kind must be recent or scripture")
	}
	if c.SourceType != "news" && c.SourceType != "reflection" {
		return pkgerrors.NewValidationError("source type must be news or reflection")
	}
	if c.SourceID == "" {
		return pkgerrors.NewValidationError("source ID is required")
	}
	switch c.Slot {
	case "", "A", "B":
	default:
		return pkgerrors.NewValidationError("slot must be A or B")
	}
	return nil
}

// RemoveLinkCommand detaches a source document from one section
type RemoveLinkCommand struct {
	CardID   string `json:"card_id"`
	UserID   string `json:"user_id"`
	Kind     string `json:"kind"`
	SourceID string `json:"source_id"`
}

// Validate validates the command
func (c *RemoveLinkCommand) Validate() error {
	if c.CardID == "" {
		return pkgerrors.NewValidationError("card ID is required")
	}
	if c.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if c.Kind != "recent" && c.Kind != "scripture" {
		return pkgerrors.NewValidationError("kind must be recent or scripture")
	}
	if c.SourceID == "" {
		return pkgerrors.NewValidationError("source ID is required")
	}
	return nil
}

// TogglePinCommand flips the pinned flag on one link
type TogglePinCommand struct {
	CardID   string `json:"card_id"`
	UserID   string `json:"user_id"`
	Kind     string `json:"kind"`
	SourceID string `json:"source_id"`
}

// Validate validates the command
func (c *TogglePinCommand) Validate() error {
	if c.CardID == "" {
		return pkgerrors.NewValidationError("card ID is required")
	}
	if c.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if c.Kind != "recent" && c.Kind != "scripture" {
		return pkgerrors.NewValidationError("kind must be recent or scripture")
	}
	if c.SourceID == "" {
		return pkgerrors.NewValidationError("source ID is required")
	}
	return nil
}
