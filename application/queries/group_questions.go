package queries

import (
	"context"

	"github.com/eunyuson/GRACE-sub002/application/ports"
	"github.com/eunyuson/GRACE-sub002/domain/config"
	"github.com/eunyuson/GRACE-sub002/domain/similarity"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"
)

// GroupQuestionsQuery finds the user's cards whose question reads like
// the given one, so near-duplicate phrasings land on the same card.
type GroupQuestionsQuery struct {
	UserID    string  `json:"user_id"`
	Question  string  `json:"question"`
	Threshold float64 `json:"threshold,omitempty"`
}

// Validate validates the query
func (q *GroupQuestionsQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if q.Question == "" {
		return pkgerrors.NewValidationError("question is required")
	}
	if q.Threshold < 0 || q.Threshold > 1 {
		return pkgerrors.NewValidationError("threshold must be between 0 and 1")
	}
	return nil
}

// QuestionMatch is one card ranked against the probe question
type QuestionMatch struct {
	CardID      string  `json:"cardId"`
	ConceptName string  `json:"conceptName"`
	Question    string  `json:"question"`
	Score       float64 `json:"score"`
}

// GroupQuestionsHandler handles question grouping reads
type GroupQuestionsHandler struct {
	cards   ports.CardRepository
	matcher *similarity.Matcher
}

// NewGroupQuestionsHandler creates a new group questions handler
func NewGroupQuestionsHandler(cards ports.CardRepository) *GroupQuestionsHandler {
	return &GroupQuestionsHandler{
		cards:   cards,
		matcher: similarity.NewMatcher(),
	}
}

// Handle ranks the user's cards against the probe question
func (h *GroupQuestionsHandler) Handle(ctx context.Context, query *GroupQuestionsQuery) ([]QuestionMatch, error) {
	cards, err := h.cards.GetByUserID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]string, len(cards))
	candidates := make([]similarity.Candidate, 0, len(cards))
	for _, card := range cards {
		id := card.ID().String()
		byID[id] = card.ConceptName()
		candidates = append(candidates, similarity.Candidate{
			ID:       id,
			Question: card.Question().String(),
		})
	}

	threshold := query.Threshold
	if threshold == 0 {
		threshold = config.DefaultDomainConfig().SimilarityThreshold
	}

	matches := h.matcher.Group(query.Question, candidates, threshold)
	results := make([]QuestionMatch, 0, len(matches))
	for _, m := range matches {
		results = append(results, QuestionMatch{
			CardID:      m.Candidate.ID,
			ConceptName: byID[m.Candidate.ID],
			Question:    m.Candidate.Question,
			Score:       m.Score,
		})
	}
	return results, nil
}
