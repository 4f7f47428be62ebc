package services

import (
	"context"
	"time"

	"github.com/eunyuson/GRACE-sub002/application/ports"
	"github.com/eunyuson/GRACE-sub002/domain/core/entities"
	"github.com/eunyuson/GRACE-sub002/domain/core/valueobjects"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"

	"go.uber.org/zap"
)

// reflectionPoolTTL bounds how long a user's reflection pool is served
// from cache before the store is consulted again.
const reflectionPoolTTL = 300

// conclusionFollowupDelay is how long after a conclusion is picked the
// scripture stage fires on its own.
const conclusionFollowupDelay = 800 * time.Millisecond

// SuggestionService drives the three generation stages and applies the
// author's decisions on suggested items. Each stage transition is
// committed through the outbox before and after the generator call, so
// a crash mid-generation never leaves half a suggestion set behind.
type SuggestionService struct {
	cards     ports.CardRepository
	sources   ports.SourceReader
	generator ports.TextGenerator
	cache     ports.Cache
	outbox    *CardOutbox
	logger    *zap.Logger

	// followUp is swappable so tests can trigger the scripture stage
	// synchronously instead of waiting on a timer
	followUp func(cardID, userID string)
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(
	cards ports.CardRepository,
	sources ports.SourceReader,
	generator ports.TextGenerator,
	cache ports.Cache,
	outbox *CardOutbox,
	logger *zap.Logger,
) *SuggestionService {
	s := &SuggestionService{
		cards:     cards,
		sources:   sources,
		generator: generator,
		cache:     cache,
		outbox:    outbox,
		logger:    logger,
	}
	s.followUp = s.scheduleScriptureGeneration
	return s
}

func (s *SuggestionService) loadOwned(ctx context.Context, userID, cardID string) (*entities.ConceptCard, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil || card.UserID() != userID {
		return nil, pkgerrors.NewNotFoundError("card not found: " + cardID)
	}
	return card, nil
}

func (s *SuggestionService) requireGenerator() error {
	if s.generator == nil || !s.generator.IsEnabled() {
		return pkgerrors.NewUnavailableError("text generation")
	}
	return nil
}

// GenerateReactions runs the first stage: reaction snippets drafted
// from the card's first linked news item.
func (s *SuggestionService) GenerateReactions(ctx context.Context, userID, cardID string) (*entities.ConceptCard, error) {
	if err := s.requireGenerator(); err != nil {
		return nil, err
	}

	card, err := s.loadOwned(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	if err := card.StartReactionGeneration(); err != nil {
		return nil, err
	}
	if err := s.outbox.Save(ctx, card); err != nil {
		return nil, err
	}

	link, _ := card.FirstLink(entities.LinkKindRecent, valueobjects.SourceTypeNews)
	news, err := s.sources.GetNewsItem(ctx, link.Ref.ID())
	if err != nil {
		return s.failReactions(ctx, card, "linked news item could not be loaded", err)
	}

	texts, err := s.generator.GenerateReactionSnippets(ctx, news.Title, news.Body, card.ConceptName())
	if err != nil {
		return s.failReactions(ctx, card, "reaction generation failed", err)
	}

	card.CompleteReactionGeneration(texts)
	if err := s.outbox.Save(ctx, card); err != nil {
		return nil, err
	}

	s.logger.Info("reaction suggestions generated",
		zap.String("cardID", cardID),
		zap.Int("count", len(texts)),
	)
	return card, nil
}

func (s *SuggestionService) failReactions(ctx context.Context, card *entities.ConceptCard, reason string, cause error) (*entities.ConceptCard, error) {
	card.FailReactionGeneration(reason)
	if err := s.outbox.Save(ctx, card); err != nil {
		return nil, err
	}
	return nil, pkgerrors.NewExternalError(reason, cause)
}

// GenerateConclusions runs the second stage: one-line conclusion
// candidates synthesized from the pinned reactions.
func (s *SuggestionService) GenerateConclusions(ctx context.Context, userID, cardID string) (*entities.ConceptCard, error) {
	if err := s.requireGenerator(); err != nil {
		return nil, err
	}

	card, err := s.loadOwned(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	if err := card.StartConclusionGeneration(); err != nil {
		return nil, err
	}
	if err := s.outbox.Save(ctx, card); err != nil {
		return nil, err
	}

	pinned := card.PinnedResponses()
	texts := make([]string, 0, len(pinned))
	for _, r := range pinned {
		texts = append(texts, r.Text)
	}

	candidates, err := s.generator.GenerateConclusionCandidates(ctx, texts, card.ConceptName(), card.Question().String())
	if err != nil {
		card.FailConclusionGeneration("conclusion generation failed")
		if saveErr := s.outbox.Save(ctx, card); saveErr != nil {
			return nil, saveErr
		}
		return nil, pkgerrors.NewExternalError("conclusion generation failed", err)
	}

	card.CompleteConclusionGeneration(candidates)
	if err := s.outbox.Save(ctx, card); err != nil {
		return nil, err
	}

	s.logger.Info("conclusion candidates generated",
		zap.String("cardID", cardID),
		zap.Int("count", len(candidates)),
	)
	return card, nil
}

// RecommendScriptures runs the third stage: reflections from the
// user's own pool ranked against the picked conclusion.
func (s *SuggestionService) RecommendScriptures(ctx context.Context, userID, cardID string) (*entities.ConceptCard, error) {
	if err := s.requireGenerator(); err != nil {
		return nil, err
	}

	card, err := s.loadOwned(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	if err := card.StartScriptureGeneration(); err != nil {
		return nil, err
	}
	if err := s.outbox.Save(ctx, card); err != nil {
		return nil, err
	}

	pool, err := s.reflectionPool(ctx, userID)
	if err != nil {
		card.FailScriptureGeneration("reflection pool could not be loaded")
		if saveErr := s.outbox.Save(ctx, card); saveErr != nil {
			return nil, saveErr
		}
		return nil, err
	}

	recs, err := s.generator.RecommendScriptures(ctx, card.Conclusion(), pool)
	if err != nil {
		card.FailScriptureGeneration("scripture recommendation failed")
		if saveErr := s.outbox.Save(ctx, card); saveErr != nil {
			return nil, saveErr
		}
		return nil, pkgerrors.NewExternalError("scripture recommendation failed", err)
	}

	candidates := make([]entities.ScriptureCandidate, 0, len(recs))
	for _, rec := range recs {
		candidates = append(candidates, entities.ScriptureCandidate{
			ReflectionID: rec.ReflectionID,
			Reason:       rec.Reason,
			Similarity:   rec.Similarity,
			Status:       entities.StatusSuggested,
		})
	}

	card.CompleteScriptureGeneration(candidates)
	if err := s.outbox.Save(ctx, card); err != nil {
		return nil, err
	}

	s.logger.Info("scripture recommendations generated",
		zap.String("cardID", cardID),
		zap.Int("count", len(candidates)),
	)
	return card, nil
}

// reflectionPool serves the user's full reflection list, read through
// the cache.
func (s *SuggestionService) reflectionPool(ctx context.Context, userID string) ([]ports.Reflection, error) {
	key := "reflections:" + userID
	if cached, ok := s.cache.Get(ctx, key); ok {
		if pool, ok := cached.([]ports.Reflection); ok {
			return pool, nil
		}
	}

	pool, err := s.sources.ListReflections(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, pool, reflectionPoolTTL); err != nil {
		s.logger.Warn("failed to cache reflection pool", zap.Error(err))
	}
	return pool, nil
}

// SelectReaction promotes a suggested reaction into the card's
// committed responses, pinned.
func (s *SuggestionService) SelectReaction(ctx context.Context, userID, cardID, suggestionID string) (*entities.ConceptCard, error) {
	card, err := s.loadOwned(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	if err := card.SelectReactionSuggestion(suggestionID); err != nil {
		return nil, err
	}
	if err := s.outbox.Save(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// RejectReaction drops a suggested reaction
func (s *SuggestionService) RejectReaction(ctx context.Context, userID, cardID, suggestionID string) (*entities.ConceptCard, error) {
	card, err := s.loadOwned(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	if err := card.RejectReactionSuggestion(suggestionID); err != nil {
		return nil, err
	}
	if err := s.outbox.Save(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// SelectConclusion picks one conclusion candidate as the card's
// conclusion and rejects its siblings. The scripture stage is kicked
// off shortly after, so the panel fills without another author action.
func (s *SuggestionService) SelectConclusion(ctx context.Context, userID, cardID, candidateID string) (*entities.ConceptCard, error) {
	card, err := s.loadOwned(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	if err := card.SelectConclusionCandidate(candidateID); err != nil {
		return nil, err
	}
	if err := s.outbox.Save(ctx, card); err != nil {
		return nil, err
	}

	if s.generator != nil && s.generator.IsEnabled() {
		s.followUp(cardID, userID)
	}
	return card, nil
}

func (s *SuggestionService) scheduleScriptureGeneration(cardID, userID string) {
	time.AfterFunc(conclusionFollowupDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		if _, err := s.RecommendScriptures(ctx, userID, cardID); err != nil {
			s.logger.Warn("scheduled scripture recommendation failed",
				zap.String("cardID", cardID),
				zap.Error(err),
			)
		}
	})
}

// PinScripture accepts a scripture recommendation: the reflection is
// linked into the scripture section, pinned, and the suggestion is
// consumed. The reflection's parent path is resolved from the pool.
func (s *SuggestionService) PinScripture(ctx context.Context, userID, cardID, reflectionID string) (*entities.ConceptCard, error) {
	card, err := s.loadOwned(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	sourcePath := ""
	if pool, err := s.reflectionPool(ctx, userID); err == nil {
		for _, r := range pool {
			if r.ID == reflectionID {
				sourcePath = r.ParentPath
				break
			}
		}
	}

	if err := card.PinScriptureSuggestion(reflectionID, sourcePath); err != nil {
		return nil, err
	}
	if err := s.outbox.Save(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// RejectScripture drops a scripture recommendation
func (s *SuggestionService) RejectScripture(ctx context.Context, userID, cardID, reflectionID string) (*entities.ConceptCard, error) {
	card, err := s.loadOwned(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	if err := card.RejectScriptureSuggestion(reflectionID); err != nil {
		return nil, err
	}
	if err := s.outbox.Save(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}
