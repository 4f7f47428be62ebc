package handlers

import (
	"context"
	"net/http"

	"github.com/eunyuson/GRACE-sub002/application/queries"
	"github.com/eunyuson/GRACE-sub002/application/services"
	"github.com/eunyuson/GRACE-sub002/domain/core/entities"
	"github.com/eunyuson/GRACE-sub002/pkg/auth"
	"github.com/eunyuson/GRACE-sub002/pkg/common"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SuggestionHandler exposes the three generation stages and the
// author's decisions on their suggestions
type SuggestionHandler struct {
	suggestions *services.SuggestionService
	errors      *pkgerrors.ErrorHandler
	logger      *zap.Logger
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(
	suggestions *services.SuggestionService,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *SuggestionHandler {
	return &SuggestionHandler{
		suggestions: suggestions,
		errors:      errors,
		logger:      logger,
	}
}

// GenerateReactions handles POST /cards/{cardID}/reactions/generate
func (h *SuggestionHandler) GenerateReactions(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.suggestions.GenerateReactions)
}

// GenerateConclusions handles POST /cards/{cardID}/conclusions/generate
func (h *SuggestionHandler) GenerateConclusions(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.suggestions.GenerateConclusions)
}

// RecommendScriptures handles POST /cards/{cardID}/scriptures/generate
func (h *SuggestionHandler) RecommendScriptures(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.suggestions.RecommendScriptures)
}

// SelectReaction handles POST /cards/{cardID}/reactions/{suggestionID}/select
func (h *SuggestionHandler) SelectReaction(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "suggestionID", h.suggestions.SelectReaction)
}

// RejectReaction handles POST /cards/{cardID}/reactions/{suggestionID}/reject
func (h *SuggestionHandler) RejectReaction(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "suggestionID", h.suggestions.RejectReaction)
}

// SelectConclusion handles POST /cards/{cardID}/conclusions/{candidateID}/select
func (h *SuggestionHandler) SelectConclusion(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "candidateID", h.suggestions.SelectConclusion)
}

// PinScripture handles POST /cards/{cardID}/scriptures/{reflectionID}/pin
func (h *SuggestionHandler) PinScripture(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "reflectionID", h.suggestions.PinScripture)
}

// RejectScripture handles POST /cards/{cardID}/scriptures/{reflectionID}/reject
func (h *SuggestionHandler) RejectScripture(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "reflectionID", h.suggestions.RejectScripture)
}

func (h *SuggestionHandler) run(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, userID, cardID string) (*entities.ConceptCard, error),
) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	card, err := op(r.Context(), userCtx.UserID, chi.URLParam(r, "cardID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, queries.NewCardView(card))
}

func (h *SuggestionHandler) decide(
	w http.ResponseWriter,
	r *http.Request,
	param string,
	op func(ctx context.Context, userID, cardID, itemID string) (*entities.ConceptCard, error),
) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	itemID := chi.URLParam(r, param)
	if itemID == "" {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(param+" is required"))
		return
	}

	card, err := op(r.Context(), userCtx.UserID, chi.URLParam(r, "cardID"), itemID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, queries.NewCardView(card))
}
