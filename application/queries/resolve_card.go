package queries

import (
	"context"

	"github.com/eunyuson/GRACE-sub002/application/ports"
	"github.com/eunyuson/GRACE-sub002/domain/core/entities"
	"github.com/eunyuson/GRACE-sub002/domain/core/valueobjects"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"

	"go.uber.org/zap"
)

// ResolvedSource is one linked document fetched in full for rendering
type ResolvedSource struct {
	SourceType string `json:"sourceType"`
	SourceID   string `json:"sourceId"`
	Title      string `json:"title,omitempty"`
	Excerpt    string `json:"excerpt,omitempty"`
	BibleRef   string `json:"bibleRef,omitempty"`
	Pinned     bool   `json:"pinned"`
}

// ResolvedCardView is a card with its linked documents hydrated
type ResolvedCardView struct {
	Card      *CardView        `json:"card"`
	Recent    []ResolvedSource `json:"recent"`
	Scripture []ResolvedSource `json:"scripture"`
}

// ResolveCardQuery fetches a card and hydrates its links. References
// that no longer resolve are dropped from the result, not errors; the
// store does not enforce referential integrity.
type ResolveCardQuery struct {
	UserID string `json:"user_id"`
	CardID string `json:"card_id"`
}

// Validate validates the query
func (q *ResolveCardQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if q.CardID == "" {
		return pkgerrors.NewValidationError("card ID is required")
	}
	return nil
}

// ResolveCardHandler handles hydrated card reads
type ResolveCardHandler struct {
	cards   ports.CardRepository
	sources ports.SourceReader
	logger  *zap.Logger
}

// NewResolveCardHandler creates a new resolve card handler
func NewResolveCardHandler(cards ports.CardRepository, sources ports.SourceReader, logger *zap.Logger) *ResolveCardHandler {
	return &ResolveCardHandler{
		cards:   cards,
		sources: sources,
		logger:  logger,
	}
}

// Handle fetches the card and resolves each linked document
func (h *ResolveCardHandler) Handle(ctx context.Context, query *ResolveCardQuery) (*ResolvedCardView, error) {
	card, err := h.cards.GetByID(ctx, query.CardID)
	if err != nil {
		return nil, err
	}
	if card == nil || card.UserID() != query.UserID {
		return nil, pkgerrors.NewNotFoundError("card not found: " + query.CardID)
	}

	view := &ResolvedCardView{
		Card:      NewCardView(card),
		Recent:    []ResolvedSource{},
		Scripture: []ResolvedSource{},
	}

	for _, link := range card.Links() {
		resolved, ok := h.resolve(ctx, link)
		if !ok {
			h.logger.Debug("dropping unresolved link",
				zap.String("cardID", query.CardID),
				zap.String("sourceID", link.Ref.ID()),
			)
			continue
		}
		switch link.Kind {
		case entities.LinkKindRecent:
			view.Recent = append(view.Recent, resolved)
		case entities.LinkKindScripture:
			view.Scripture = append(view.Scripture, resolved)
		}
	}

	return view, nil
}

func (h *ResolveCardHandler) resolve(ctx context.Context, link entities.Link) (ResolvedSource, bool) {
	switch link.Ref.Type() {
	case valueobjects.SourceTypeNews:
		news, err := h.sources.GetNewsItem(ctx, link.Ref.ID())
		if err != nil {
			return ResolvedSource{}, false
		}
		return ResolvedSource{
			SourceType: string(valueobjects.SourceTypeNews),
			SourceID:   news.ID,
			Title:      news.Title,
			Excerpt:    excerpt(news.Body),
			Pinned:     link.Pinned,
		}, true
	case valueobjects.SourceTypeReflection:
		reflection, err := h.sources.GetReflection(ctx, link.Ref.ID(), link.Ref.Path())
		if err != nil {
			return ResolvedSource{}, false
		}
		return ResolvedSource{
			SourceType: string(valueobjects.SourceTypeReflection),
			SourceID:   reflection.ID,
			Title:      reflection.ParentTitle,
			Excerpt:    excerpt(reflection.Content),
			BibleRef:   reflection.BibleRef,
			Pinned:     link.Pinned,
		}, true
	}
	return ResolvedSource{}, false
}

const excerptRunes = 160

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptRunes {
		return text
	}
	return string(runes[:excerptRunes]) + "…"
}
