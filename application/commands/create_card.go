package commands

import (
	"unicode/utf8"

	"github.com/eunyuson/GRACE-sub002/domain/config"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"
)

// LinkInput is one link carried by a draft card at creation time
type LinkInput struct {
	Kind       string `json:"kind"`
	SourceType string `json:"sourceType"`
	SourceID   string `json:"sourceId"`
	SourcePath string `json:"sourcePath,omitempty"`
	Slot       string `json:"slot,omitempty"`
}

// CreateCardCommand persists a draft card. Links accumulated while the
// card was draft flush with this one write.
type CreateCardCommand struct {
	UserID      string      `json:"user_id"`
	UserName    string      `json:"user_name,omitempty"`
	ConceptName string      `json:"concept_name"`
	Question    string      `json:"question"`
	AStatement  string      `json:"a_statement,omitempty"`
	Links       []LinkInput `json:"links,omitempty"`

	// CardID receives the assigned identity after the handler runs
	CardID string `json:"-"`
}

// Validate validates the command
func (c *CreateCardCommand) Validate() error {
	cfg := config.DefaultDomainConfig()

	if c.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if c.ConceptName == "" {
		return pkgerrors.NewValidationError("concept name is required")
	}
	if c.Question == "" {
		return pkgerrors.NewValidationError("question is required")
	}
	if utf8.RuneCountInString(c.Question) > cfg.MaxQuestionLength {
		return pkgerrors.NewValidationError("question is too long")
	}
	return nil
}

// UpdateCardCommand updates the authored statements of a card
type UpdateCardCommand struct {
	CardID     string  `json:"card_id"`
	UserID     string  `json:"user_id"`
	AStatement *string `json:"a_statement,omitempty"`
	Response   *string `json:"response,omitempty"` // manual response snippet to append
}

// Validate validates the command
func (c *UpdateCardCommand) Validate() error {
	if c.CardID == "" {
		return pkgerrors.NewValidationError("card ID is required")
	}
	if c.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if c.AStatement == nil && c.Response == nil {
		return pkgerrors.NewValidationError("nothing to update")
	}
	return nil
}
