package queries

import (
	"context"
	"sort"
	"time"

	"github.com/eunyuson/GRACE-sub002/application/ports"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"
)

// CardSummary is the list-view projection of a card
type CardSummary struct {
	ID            string    `json:"id"`
	ConceptName   string    `json:"conceptName"`
	Question      string    `json:"question"`
	Conclusion    string    `json:"conclusion,omitempty"`
	LinkCount     int       `json:"linkCount"`
	ResponseCount int       `json:"responseCount"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ListCardsQuery fetches a page of the user's cards, newest first
type ListCardsQuery struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// Validate validates the query
func (q *ListCardsQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return pkgerrors.NewValidationError("pagination values cannot be negative")
	}
	return nil
}

// ListCardsResult is one page of card summaries
type ListCardsResult struct {
	Cards   []CardSummary `json:"cards"`
	Total   int           `json:"total"`
	HasMore bool          `json:"hasMore"`
}

// ListCardsHandler handles card list reads
type ListCardsHandler struct {
	cards ports.CardRepository
}

// NewListCardsHandler creates a new list cards handler
func NewListCardsHandler(cards ports.CardRepository) *ListCardsHandler {
	return &ListCardsHandler{cards: cards}
}

// Handle fetches the user's cards and pages them newest first
func (h *ListCardsHandler) Handle(ctx context.Context, query *ListCardsQuery) (*ListCardsResult, error) {
	cards, err := h.cards.GetByUserID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	summaries := make([]CardSummary, 0, len(cards))
	for _, card := range cards {
		summaries = append(summaries, CardSummary{
			ID:            card.ID().String(),
			ConceptName:   card.ConceptName(),
			Question:      card.Question().String(),
			Conclusion:    card.Conclusion(),
			LinkCount:     len(card.Links()),
			ResponseCount: len(card.Responses()),
			UpdatedAt:     card.UpdatedAt(),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})

	total := len(summaries)
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}
	start := query.Offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &ListCardsResult{
		Cards:   summaries[start:end],
		Total:   total,
		HasMore: end < total,
	}, nil
}
