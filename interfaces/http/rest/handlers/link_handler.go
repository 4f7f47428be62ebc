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

// LinkHandler handles link mutations on a card. The legacy evidence
// entry point writes through the same command; only the slot differs.
type LinkHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errors,
		logger:     logger,
	}
}

// AddLinkRequest represents the request body for attaching a link
type AddLinkRequest struct {
	Kind       string `json:"kind" validate:"required,oneof=recent scripture"`
	SourceType string `json:"sourceType" validate:"required,oneof=news reflection"`
	SourceID   string `json:"sourceId" validate:"required"`
	SourcePath string `json:"sourcePath,omitempty"`
	Slot       string `json:"slot,omitempty" validate:"omitempty,oneof=A B"`
}

// RemoveLinkRequest represents the request body for detaching a link
type RemoveLinkRequest struct {
	Kind     string `json:"kind" validate:"required,oneof=recent scripture"`
	SourceID string `json:"sourceId" validate:"required"`
}

// AddLink handles POST /cards/{cardID}/links
func (h *LinkHandler) AddLink(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req AddLinkRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := &commands.AddLinkCommand{
		CardID:     chi.URLParam(r, "cardID"),
		UserID:     userCtx.UserID,
		Kind:       req.Kind,
		SourceType: req.SourceType,
		SourceID:   req.SourceID,
		SourcePath: req.SourcePath,
		Slot:       req.Slot,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondCard(w, r, userCtx.UserID, cmd.CardID)
}

// RemoveLink handles DELETE /cards/{cardID}/links
func (h *LinkHandler) RemoveLink(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req RemoveLinkRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := &commands.RemoveLinkCommand{
		CardID:   chi.URLParam(r, "cardID"),
		UserID:   userCtx.UserID,
		Kind:     req.Kind,
		SourceID: req.SourceID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondCard(w, r, userCtx.UserID, cmd.CardID)
}

// TogglePin handles POST /cards/{cardID}/links/pin
func (h *LinkHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req RemoveLinkRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := &commands.TogglePinCommand{
		CardID:   chi.URLParam(r, "cardID"),
		UserID:   userCtx.UserID,
		Kind:     req.Kind,
		SourceID: req.SourceID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondCard(w, r, userCtx.UserID, cmd.CardID)
}

func (h *LinkHandler) respondCard(w http.ResponseWriter, r *http.Request, userID, cardID string) {
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
