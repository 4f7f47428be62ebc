package handlers

import (
	"context"

	"github.com/eunyuson/GRACE-sub002/application/commands"
	"github.com/eunyuson/GRACE-sub002/application/services"
	"github.com/eunyuson/GRACE-sub002/domain/core/entities"
	"github.com/eunyuson/GRACE-sub002/domain/core/valueobjects"

	"go.uber.org/zap"
)

// AddLinkHandler attaches a source document to a persisted card
type AddLinkHandler struct {
	loader *CardLoader
	outbox *services.CardOutbox
	logger *zap.Logger
}

// NewAddLinkHandler creates a new add link handler
func NewAddLinkHandler(loader *CardLoader, outbox *services.CardOutbox, logger *zap.Logger) *AddLinkHandler {
	return &AddLinkHandler{
		loader: loader,
		outbox: outbox,
		logger: logger,
	}
}

// Handle adds the link and settles the write
func (h *AddLinkHandler) Handle(ctx context.Context, cmd *commands.AddLinkCommand) error {
	card, err := h.loader.Load(ctx, cmd.UserID, cmd.CardID)
	if err != nil {
		return err
	}

	ref, err := valueobjects.NewSourceRef(valueobjects.SourceType(cmd.SourceType), cmd.SourceID, cmd.SourcePath)
	if err != nil {
		return err
	}

	if err := card.AddLinkWithSlot(entities.LinkKind(cmd.Kind), ref, entities.EvidenceSlot(cmd.Slot)); err != nil {
		return err
	}

	h.logger.Debug("link added",
		zap.String("cardID", cmd.CardID),
		zap.String("kind", cmd.Kind),
		zap.String("sourceID", cmd.SourceID),
	)

	return h.outbox.Save(ctx, card)
}

// RemoveLinkHandler detaches a source document from a card. Removing
// a link that is not there succeeds without a write.
type RemoveLinkHandler struct {
	loader *CardLoader
	outbox *services.CardOutbox
	logger *zap.Logger
}

// NewRemoveLinkHandler creates a new remove link handler
func NewRemoveLinkHandler(loader *CardLoader, outbox *services.CardOutbox, logger *zap.Logger) *RemoveLinkHandler {
	return &RemoveLinkHandler{
		loader: loader,
		outbox: outbox,
		logger: logger,
	}
}

// Handle removes the link and settles the write if anything changed
func (h *RemoveLinkHandler) Handle(ctx context.Context, cmd *commands.RemoveLinkCommand) error {
	card, err := h.loader.Load(ctx, cmd.UserID, cmd.CardID)
	if err != nil {
		return err
	}

	card.RemoveLink(entities.LinkKind(cmd.Kind), cmd.SourceID)
	if !card.IsDirty() {
		return nil
	}

	return h.outbox.Save(ctx, card)
}

// TogglePinHandler flips the pinned flag on one link
type TogglePinHandler struct {
	loader *CardLoader
	outbox *services.CardOutbox
	logger *zap.Logger
}

// NewTogglePinHandler creates a new toggle pin handler
func NewTogglePinHandler(loader *CardLoader, outbox *services.CardOutbox, logger *zap.Logger) *TogglePinHandler {
	return &TogglePinHandler{
		loader: loader,
		outbox: outbox,
		logger: logger,
	}
}

// Handle toggles the pin and settles the write
func (h *TogglePinHandler) Handle(ctx context.Context, cmd *commands.TogglePinCommand) error {
	card, err := h.loader.Load(ctx, cmd.UserID, cmd.CardID)
	if err != nil {
		return err
	}

	if err := card.TogglePin(entities.LinkKind(cmd.Kind), cmd.SourceID); err != nil {
		return err
	}

	return h.outbox.Save(ctx, card)
}
