package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/eunyuson/GRACE-sub002/application/commands"
	"github.com/eunyuson/GRACE-sub002/application/commands/bus"
	"github.com/eunyuson/GRACE-sub002/application/ports"
	"github.com/eunyuson/GRACE-sub002/application/queries"
	"github.com/eunyuson/GRACE-sub002/application/services"
	"github.com/eunyuson/GRACE-sub002/domain/core/entities"
	"github.com/eunyuson/GRACE-sub002/infrastructure/di"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryCardStore is an in-memory stand-in for the DynamoDB card table
type memoryCardStore struct {
	mu    sync.Mutex
	cards map[string]*entities.ConceptCard
}

func newMemoryCardStore() *memoryCardStore {
	return &memoryCardStore{cards: make(map[string]*entities.ConceptCard)}
}

func (s *memoryCardStore) Save(ctx context.Context, card *entities.ConceptCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[card.ID().String()] = card
	return nil
}

func (s *memoryCardStore) GetByID(ctx context.Context, id string) (*entities.ConceptCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if card, ok := s.cards[id]; ok {
		return card, nil
	}
	return nil, pkgerrors.NewNotFoundError("card not found: " + id)
}

func (s *memoryCardStore) GetByUserID(ctx context.Context, userID string) ([]*entities.ConceptCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.ConceptCard
	for _, c := range s.cards {
		if c.UserID() == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

type stubSources struct {
	news        map[string]*ports.NewsItem
	reflections []ports.Reflection
}

func (s *stubSources) GetNewsItem(ctx context.Context, id string) (*ports.NewsItem, error) {
	if item, ok := s.news[id]; ok {
		return item, nil
	}
	return nil, pkgerrors.NewNotFoundError("news item not found: " + id)
}

func (s *stubSources) GetReflection(ctx context.Context, id, parentPath string) (*ports.Reflection, error) {
	for _, r := range s.reflections {
		if r.ID == id {
			ref := r
			return &ref, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("reflection not found: " + id)
}

func (s *stubSources) ListReflections(ctx context.Context, userID string) ([]ports.Reflection, error) {
	return s.reflections, nil
}

type scriptedGenerator struct{}

func (g *scriptedGenerator) IsEnabled() bool { return true }

func (g *scriptedGenerator) GenerateReactionSnippets(ctx context.Context, title, body, conceptName string) ([]string, error) {
	return []string{"마음이 무거워진다.", "숫자보다 사람이 먼저라는 생각이 든다."}, nil
}

func (g *scriptedGenerator) GenerateConclusionCandidates(ctx context.Context, pinned []string, conceptName, question string) ([]string, error) {
	return []string{"돈은 섬김의 도구다.", "돈이 주인이 되게 두지 않는다."}, nil
}

func (g *scriptedGenerator) RecommendScriptures(ctx context.Context, conclusion string, pool []ports.Reflection) ([]ports.ScriptureRecommendation, error) {
	return []ports.ScriptureRecommendation{
		{ReflectionID: pool[0].ID, Reason: "같은 주제를 묵상함", Similarity: 0.77},
	}, nil
}

type testEnv struct {
	store       *memoryCardStore
	commandBus  *bus.CommandBus
	suggestions *services.SuggestionService
	getCards    *queries.GetCardHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	store := newMemoryCardStore()
	sources := &stubSources{
		news: map[string]*ports.NewsItem{
			"news-1": {ID: "news-1", Title: "최저임금 논쟁", Body: "올해도 인상 폭을 두고 맞섰다."},
		},
		reflections: []ports.Reflection{
			{ID: "ref-1", Content: "두 주인을 섬길 수 없다", BibleRef: "마 6:24", ParentPath: "2026/07"},
		},
	}

	outbox := services.NewCardOutbox(store, logger)
	suggestions := services.NewSuggestionService(store, sources, &scriptedGenerator{}, di.NewInMemoryCache(), outbox, logger)

	commandBus, err := di.ProvideCommandBus(store, outbox, logger)
	require.NoError(t, err)

	return &testEnv{
		store:       store,
		commandBus:  commandBus,
		suggestions: suggestions,
		getCards:    queries.NewGetCardHandler(store),
	}
}

func TestCardWorkflow_DraftToConclusion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Create the card with the link accumulated while drafting
	createCmd := &commands.CreateCardCommand{
		UserID:      "user-1",
		UserName:    "은혜",
		ConceptName: "돈",
		Question:    "돈은 우리에게 무엇인가?",
		Links: []commands.LinkInput{
			{Kind: "recent", SourceType: "news", SourceID: "news-1"},
		},
	}
	require.NoError(t, env.commandBus.Send(ctx, createCmd))
	require.NotEmpty(t, createCmd.CardID)
	cardID := createCmd.CardID

	// The stored card carries the flushed link
	view, err := env.getCards.Handle(ctx, &queries.GetCardQuery{UserID: "user-1", CardID: cardID})
	require.NoError(t, err)
	require.Len(t, view.Sequence.Recent, 1)
	assert.Equal(t, "news-1", view.Sequence.Recent[0].SourceID)

	// Stage A: generate and accept one reaction
	card, err := env.suggestions.GenerateReactions(ctx, "user-1", cardID)
	require.NoError(t, err)
	suggestions := card.ReactionStage().Suggestions
	require.Len(t, suggestions, 2)

	card, err = env.suggestions.SelectReaction(ctx, "user-1", cardID, suggestions[0].ID)
	require.NoError(t, err)
	require.Len(t, card.PinnedResponses(), 1)
	assert.Equal(t, entities.StatusSelected, card.PinnedResponses()[0].Status)

	// Stage B: generate conclusions and pick one
	card, err = env.suggestions.GenerateConclusions(ctx, "user-1", cardID)
	require.NoError(t, err)
	candidates := card.ConclusionStage().Candidates
	require.Len(t, candidates, 2)

	card, err = env.suggestions.SelectConclusion(ctx, "user-1", cardID, candidates[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "돈은 섬김의 도구다.", card.Conclusion())

	// Stage C: recommend and pin a scripture
	card, err = env.suggestions.RecommendScriptures(ctx, "user-1", cardID)
	require.NoError(t, err)
	require.Len(t, card.ScriptureStage().Candidates, 1)

	card, err = env.suggestions.PinScripture(ctx, "user-1", cardID, "ref-1")
	require.NoError(t, err)

	view, err = env.getCards.Handle(ctx, &queries.GetCardQuery{UserID: "user-1", CardID: cardID})
	require.NoError(t, err)
	require.Len(t, view.Sequence.ScriptureSupport, 1)
	assert.True(t, view.Sequence.ScriptureSupport[0].Pinned)
	assert.Equal(t, 1.0, view.Sequence.ScriptureSupport[0].Confidence)
}

func TestCardWorkflow_LegacyEvidencePanelStaysDerived(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	createCmd := &commands.CreateCardCommand{
		UserID:      "user-1",
		ConceptName: "돈",
		Question:    "돈은 우리에게 무엇인가?",
	}
	require.NoError(t, env.commandBus.Send(ctx, createCmd))
	cardID := createCmd.CardID

	// Legacy entry point: slotted links
	require.NoError(t, env.commandBus.Send(ctx, &commands.AddLinkCommand{
		CardID: cardID, UserID: "user-1",
		Kind: "recent", SourceType: "news", SourceID: "news-1", Slot: "A",
	}))
	require.NoError(t, env.commandBus.Send(ctx, &commands.AddLinkCommand{
		CardID: cardID, UserID: "user-1",
		Kind: "scripture", SourceType: "reflection", SourceID: "ref-1", SourcePath: "2026/07", Slot: "B",
	}))

	view, err := env.getCards.Handle(ctx, &queries.GetCardQuery{UserID: "user-1", CardID: cardID})
	require.NoError(t, err)
	require.NotNil(t, view.Bridge)
	require.Len(t, view.Bridge.AEvidence, 1)
	require.Len(t, view.Bridge.BEvidence, 1)

	// Removing through the new model empties the legacy panel too
	require.NoError(t, env.commandBus.Send(ctx, &commands.RemoveLinkCommand{
		CardID: cardID, UserID: "user-1", Kind: "recent", SourceID: "news-1",
	}))

	view, err = env.getCards.Handle(ctx, &queries.GetCardQuery{UserID: "user-1", CardID: cardID})
	require.NoError(t, err)
	require.NotNil(t, view.Bridge)
	assert.Empty(t, view.Bridge.AEvidence)
	require.Len(t, view.Bridge.BEvidence, 1)
}

func TestCardWorkflow_TogglePinRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	createCmd := &commands.CreateCardCommand{
		UserID:      "user-1",
		ConceptName: "돈",
		Question:    "돈은 우리에게 무엇인가?",
		Links: []commands.LinkInput{
			{Kind: "recent", SourceType: "news", SourceID: "news-1"},
		},
	}
	require.NoError(t, env.commandBus.Send(ctx, createCmd))
	cardID := createCmd.CardID

	pin := &commands.TogglePinCommand{CardID: cardID, UserID: "user-1", Kind: "recent", SourceID: "news-1"}
	require.NoError(t, env.commandBus.Send(ctx, pin))

	view, err := env.getCards.Handle(ctx, &queries.GetCardQuery{UserID: "user-1", CardID: cardID})
	require.NoError(t, err)
	assert.True(t, view.Sequence.Recent[0].Pinned)

	require.NoError(t, env.commandBus.Send(ctx, pin))
	view, err = env.getCards.Handle(ctx, &queries.GetCardQuery{UserID: "user-1", CardID: cardID})
	require.NoError(t, err)
	assert.False(t, view.Sequence.Recent[0].Pinned)
}
