package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/eunyuson/GRACE-sub002/domain/config"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"
)

// Question is a value object for the free-text question of a concept card
type Question struct {
	text string
}

// NewQuestion creates a question with validation using default configuration
func NewQuestion(text string) (Question, error) {
	return NewQuestionWithConfig(text, config.DefaultDomainConfig())
}

// NewQuestionWithConfig creates a question with validation and configuration
func NewQuestionWithConfig(text string, cfg *config.DomainConfig) (Question, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Question{}, pkgerrors.NewValidationError("question cannot be empty")
	}

	if utf8.RuneCountInString(text) > cfg.MaxQuestionLength {
		return Question{}, fmt.Errorf("question exceeds maximum length of %d characters", cfg.MaxQuestionLength)
	}

	return Question{text: text}, nil
}

// String returns the question text
func (q Question) String() string {
	return q.text
}

// IsEmpty reports whether the question has no text
func (q Question) IsEmpty() bool {
	return q.text == ""
}

// Equals checks if two questions have identical text
func (q Question) Equals(other Question) bool {
	return q.text == other.text
}
