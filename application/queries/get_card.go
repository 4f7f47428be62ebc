package queries

import (
	"context"
	"time"

	"github.com/eunyuson/GRACE-sub002/application/ports"
	"github.com/eunyuson/GRACE-sub002/domain/core/entities"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"
)

// SequenceView is the rendered shape of the question-to-conclusion flow
type SequenceView struct {
	Recent                  []entities.SequenceItem    `json:"recent"`
	Responses               []entities.ResponseSnippet `json:"responses"`
	AStatement              string                     `json:"aStatement,omitempty"`
	AIReactionSuggestions   *entities.ReactionStage    `json:"aiReactionSuggestions,omitempty"`
	AIConclusionSuggestions *entities.ConclusionStage  `json:"aiConclusionSuggestions,omitempty"`
	ScriptureSupport        []entities.SequenceItem    `json:"scriptureSupport"`
	AIScriptureSuggestions  *entities.ScriptureStage   `json:"aiScriptureSuggestions,omitempty"`
}

// CardView is the full read model of one concept card. The bridge
// panel is derived from slotted links at render time; it is never
// stored separately.
type CardView struct {
	ID          string               `json:"id"`
	ConceptName string               `json:"conceptName"`
	Question    string               `json:"question"`
	Conclusion  string               `json:"conclusion,omitempty"`
	Sequence    SequenceView         `json:"sequence"`
	Bridge      *entities.BridgeData `json:"bridge,omitempty"`
	UserID      string               `json:"userId"`
	UserName    string               `json:"userName,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// NewCardView projects an aggregate into its rendered shape
func NewCardView(card *entities.ConceptCard) *CardView {
	view := &CardView{
		ID:          card.ID().String(),
		ConceptName: card.ConceptName(),
		Question:    card.Question().String(),
		Conclusion:  card.Conclusion(),
		UserID:      card.UserID(),
		UserName:    card.UserName(),
		CreatedAt:   card.CreatedAt(),
		UpdatedAt:   card.UpdatedAt(),
		Sequence: SequenceView{
			Recent:           card.SequenceView(entities.LinkKindRecent),
			Responses:        card.Responses(),
			AStatement:       card.AStatement(),
			ScriptureSupport: card.SequenceView(entities.LinkKindScripture),
		},
	}

	if stage := card.ReactionStage(); stage.Phase != entities.StageIdle {
		view.Sequence.AIReactionSuggestions = &stage
	}
	if stage := card.ConclusionStage(); stage.Phase != entities.StageIdle {
		view.Sequence.AIConclusionSuggestions = &stage
	}
	if stage := card.ScriptureStage(); stage.Phase != entities.StageIdle {
		view.Sequence.AIScriptureSuggestions = &stage
	}

	bridge := card.BridgeView()
	if len(bridge.AEvidence) > 0 || len(bridge.BEvidence) > 0 {
		view.Bridge = &bridge
	}

	return view
}

// GetCardQuery fetches one card by ID
type GetCardQuery struct {
	UserID string `json:"user_id"`
	CardID string `json:"card_id"`
}

// Validate validates the query
func (q *GetCardQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if q.CardID == "" {
		return pkgerrors.NewValidationError("card ID is required")
	}
	return nil
}

// GetCardHandler handles card reads
type GetCardHandler struct {
	cards ports.CardRepository
}

// NewGetCardHandler creates a new get card handler
func NewGetCardHandler(cards ports.CardRepository) *GetCardHandler {
	return &GetCardHandler{cards: cards}
}

// Handle fetches the card and projects it into its rendered shape
func (h *GetCardHandler) Handle(ctx context.Context, query *GetCardQuery) (*CardView, error) {
	card, err := h.cards.GetByID(ctx, query.CardID)
	if err != nil {
		return nil, err
	}
	if card == nil || card.UserID() != query.UserID {
		return nil, pkgerrors.NewNotFoundError("card not found: " + query.CardID)
	}
	return NewCardView(card), nil
}
