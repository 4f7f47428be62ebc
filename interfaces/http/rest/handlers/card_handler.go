package handlers

import (
	"net/http"

	"github.com/eunyuson/GRACE-sub002/application/commands"
	"github.com/eunyuson/GRACE-sub002/application/commands/bus"
	"github.com/eunyuson/GRACE-sub002/application/queries"
	querybus "github.com/eunyuson/GRACE-sub002/application/queries/bus"
	"github.com/eunyuson/GRACE-sub002/pkg/auth"
	"github.com/eunyuson/GRACE-sub002/pkg/common"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"
	"github.com/eunyuson/GRACE-sub002/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CardHandler handles concept card HTTP requests
type CardHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewCardHandler creates a new card handler
func NewCardHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *CardHandler {
	return &CardHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errors,
		logger:     logger,
	}
}

// CreateCardRequest represents the request body for creating a card.
// Links carried here are the ones accumulated while the card was a
// local draft; they land in the store with this single write.
type CreateCardRequest struct {
	ConceptName string               `json:"conceptName" validate:"required,max=80"`
	Question    string               `json:"question" validate:"required"`
	AStatement  string               `json:"aStatement,omitempty" validate:"omitempty,max=500"`
	Links       []commands.LinkInput `json:"links,omitempty"`
}

// UpdateCardRequest represents the request body for updating a card
type UpdateCardRequest struct {
	AStatement *string `json:"aStatement,omitempty" validate:"omitempty,max=500"`
	Response   *string `json:"response,omitempty" validate:"omitempty,max=500"`
}

// CreateCard handles POST /cards
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req CreateCardRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := &commands.CreateCardCommand{
		UserID:      userCtx.UserID,
		UserName:    userCtx.UserName,
		ConceptName: req.ConceptName,
		Question:    req.Question,
		AStatement:  req.AStatement,
		Links:       req.Links,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]string{
		"id": cmd.CardID,
	})
}

// GetCard handles GET /cards/{cardID}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), &queries.GetCardQuery{
		UserID: userCtx.UserID,
		CardID: chi.URLParam(r, "cardID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GetResolvedCard handles GET /cards/{cardID}/resolved
func (h *CardHandler) GetResolvedCard(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), &queries.ResolveCardQuery{
		UserID: userCtx.UserID,
		CardID: chi.URLParam(r, "cardID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// ListCards handles GET /cards
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	pagination := common.ExtractPaginationParams(r)
	result, err := h.queryBus.Ask(r.Context(), &queries.ListCardsQuery{
		UserID: userCtx.UserID,
		Limit:  pagination.PageSize,
		Offset: (pagination.Page - 1) * pagination.PageSize,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// UpdateCard handles PATCH /cards/{cardID}
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req UpdateCardRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := &commands.UpdateCardCommand{
		CardID:     chi.URLParam(r, "cardID"),
		UserID:     userCtx.UserID,
		AStatement: req.AStatement,
		Response:   req.Response,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondCard(w, r, userCtx.UserID, cmd.CardID)
}

// respondCard re-reads the card and writes its rendered view
func (h *CardHandler) respondCard(w http.ResponseWriter, r *http.Request, userID, cardID string) {
	result, err := h.queryBus.Ask(r.Context(), &queries.GetCardQuery{
		UserID: userID,
		CardID: cardID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
