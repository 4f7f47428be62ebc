package handlers

import (
	"context"

	"github.com/eunyuson/GRACE-sub002/application/commands"
	"github.com/eunyuson/GRACE-sub002/application/services"
	"github.com/eunyuson/GRACE-sub002/domain/core/entities"
	"github.com/eunyuson/GRACE-sub002/domain/core/valueobjects"

	"go.uber.org/zap"
)

// CreateCardHandler persists draft cards. Identity is assigned here,
// in the same write that flushes any links accumulated while the card
// was draft.
type CreateCardHandler struct {
	outbox *services.CardOutbox
	logger *zap.Logger
}

// NewCreateCardHandler creates a new create card handler
func NewCreateCardHandler(outbox *services.CardOutbox, logger *zap.Logger) *CreateCardHandler {
	return &CreateCardHandler{
		outbox: outbox,
		logger: logger,
	}
}

// Handle builds the aggregate, assigns identity, and settles the write
func (h *CreateCardHandler) Handle(ctx context.Context, cmd *commands.CreateCardCommand) error {
	question, err := valueobjects.NewQuestion(cmd.Question)
	if err != nil {
		return err
	}

	card, err := entities.NewConceptCard(cmd.UserID, cmd.UserName, cmd.ConceptName, question)
	if err != nil {
		return err
	}

	if cmd.AStatement != "" {
		card.SetAStatement(cmd.AStatement)
	}

	for _, input := range cmd.Links {
		ref, err := valueobjects.NewSourceRef(valueobjects.SourceType(input.SourceType), input.SourceID, input.SourcePath)
		if err != nil {
			return err
		}
		if err := card.AddLinkWithSlot(entities.LinkKind(input.Kind), ref, entities.EvidenceSlot(input.Slot)); err != nil {
			return err
		}
	}

	if err := card.AssignIdentity(); err != nil {
		return err
	}

	if err := h.outbox.Save(ctx, card); err != nil {
		return err
	}

	h.logger.Debug("card created",
		zap.String("cardID", card.ID().String()),
		zap.String("userID", cmd.UserID),
		zap.Int("links", len(cmd.Links)),
	)

	cmd.CardID = card.ID().String()
	return nil
}

// UpdateCardHandler applies authored statement edits to a card
type UpdateCardHandler struct {
	loader *CardLoader
	outbox *services.CardOutbox
	logger *zap.Logger
}

// NewUpdateCardHandler creates a new update card handler
func NewUpdateCardHandler(loader *CardLoader, outbox *services.CardOutbox, logger *zap.Logger) *UpdateCardHandler {
	return &UpdateCardHandler{
		loader: loader,
		outbox: outbox,
		logger: logger,
	}
}

// Handle applies the edits and settles the write
func (h *UpdateCardHandler) Handle(ctx context.Context, cmd *commands.UpdateCardCommand) error {
	card, err := h.loader.Load(ctx, cmd.UserID, cmd.CardID)
	if err != nil {
		return err
	}

	if cmd.AStatement != nil {
		card.SetAStatement(*cmd.AStatement)
	}
	if cmd.Response != nil {
		if err := card.AddManualResponse(*cmd.Response); err != nil {
			return err
		}
	}

	return h.outbox.Save(ctx, card)
}
