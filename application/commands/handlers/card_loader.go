package handlers

import (
	"context"

	"github.com/eunyuson/GRACE-sub002/application/ports"
	"github.com/eunyuson/GRACE-sub002/domain/core/entities"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"
)

// CardLoader fetches a card and enforces ownership. A card owned by
// another user reads as not found rather than forbidden, so card IDs
// cannot be probed.
type CardLoader struct {
	cards ports.CardRepository
}

// NewCardLoader creates a new card loader
func NewCardLoader(cards ports.CardRepository) *CardLoader {
	return &CardLoader{cards: cards}
}

// Load fetches the card and checks it belongs to userID
func (l *CardLoader) Load(ctx context.Context, userID, cardID string) (*entities.ConceptCard, error) {
	card, err := l.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil || card.UserID() != userID {
		return nil, pkgerrors.NewNotFoundError("card not found: " + cardID)
	}
	return card, nil
}
