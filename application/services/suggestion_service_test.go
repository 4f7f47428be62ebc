package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/eunyuson/GRACE-sub002/application/ports"
	"github.com/eunyuson/GRACE-sub002/domain/core/entities"
	"github.com/eunyuson/GRACE-sub002/domain/core/valueobjects"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryCardRepo struct {
	mu    sync.Mutex
	cards map[string]*entities.ConceptCard
}

func newMemoryCardRepo() *memoryCardRepo {
	return &memoryCardRepo{cards: make(map[string]*entities.ConceptCard)}
}

func (r *memoryCardRepo) Save(ctx context.Context, card *entities.ConceptCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards[card.ID().String()] = card
	return nil
}

func (r *memoryCardRepo) GetByID(ctx context.Context, id string) (*entities.ConceptCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	card, ok := r.cards[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("card not found: " + id)
	}
	return card, nil
}

func (r *memoryCardRepo) GetByUserID(ctx context.Context, userID string) ([]*entities.ConceptCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.ConceptCard
	for _, c := range r.cards {
		if c.UserID() == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeSourceReader struct {
	news        map[string]*ports.NewsItem
	reflections []ports.Reflection
	listCalls   int
}

func (f *fakeSourceReader) GetNewsItem(ctx context.Context, id string) (*ports.NewsItem, error) {
	item, ok := f.news[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("news item not found: " + id)
	}
	return item, nil
}

func (f *fakeSourceReader) GetReflection(ctx context.Context, id, parentPath string) (*ports.Reflection, error) {
	for _, r := range f.reflections {
		if r.ID == id {
			ref := r
			return &ref, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("reflection not found: " + id)
}

func (f *fakeSourceReader) ListReflections(ctx context.Context, userID string) ([]ports.Reflection, error) {
	f.listCalls++
	return f.reflections, nil
}

type fakeGenerator struct {
	enabled     bool
	reactions   []string
	conclusions []string
	scriptures  []ports.ScriptureRecommendation
	err         error
}

func (f *fakeGenerator) IsEnabled() bool { return f.enabled }

func (f *fakeGenerator) GenerateReactionSnippets(ctx context.Context, title, body, conceptName string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.reactions, nil
}

func (f *fakeGenerator) GenerateConclusionCandidates(ctx context.Context, pinned []string, conceptName, question string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.conclusions, nil
}

func (f *fakeGenerator) RecommendScriptures(ctx context.Context, conclusion string, pool []ports.Reflection) ([]ports.ScriptureRecommendation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.scriptures, nil
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]interface{})}
}

func (c *memoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

type serviceFixture struct {
	service   *SuggestionService
	repo      *memoryCardRepo
	sources   *fakeSourceReader
	generator *fakeGenerator
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	repo := newMemoryCardRepo()
	sources := &fakeSourceReader{
		news: map[string]*ports.NewsItem{
			"news-1": {ID: "news-1", Title: "금리 인상", Body: "기준 금리가 다시 올랐다."},
		},
		reflections: []ports.Reflection{
			{ID: "ref-1", Content: "마음의 보물", BibleRef: "마 6:21", ParentPath: "2026/08"},
			{ID: "ref-2", Content: "염려하지 말라", BibleRef: "마 6:34", ParentPath: "2026/08"},
		},
	}
	generator := &fakeGenerator{
		enabled:     true,
		reactions:   []string{"돈이 전부가 아니라는 생각이 든다.", "불안이 먼저 올라온다."},
		conclusions: []string{"돈은 수단이지 목적이 아니다.", "돈보다 마음이 먼저다."},
		scriptures: []ports.ScriptureRecommendation{
			{ReflectionID: "ref-1", Reason: "보물이 있는 곳에 마음이 있다", Similarity: 0.82},
		},
	}
	outbox := NewCardOutbox(repo, zap.NewNop())
	service := NewSuggestionService(repo, sources, generator, newMemoryCache(), outbox, zap.NewNop())
	// fire follow-up stages inline for deterministic assertions
	service.followUp = func(cardID, userID string) {
		_, _ = service.RecommendScriptures(context.Background(), userID, cardID)
	}

	return &serviceFixture{service: service, repo: repo, sources: sources, generator: generator}
}

func (f *serviceFixture) seedCard(t *testing.T, withNews bool) *entities.ConceptCard {
	t.Helper()
	question, err := valueobjects.NewQuestion("돈은 우리에게 무엇인가?")
	require.NoError(t, err)
	card, err := entities.NewConceptCard("user-1", "tester", "돈", question)
	require.NoError(t, err)
	if withNews {
		ref, err := valueobjects.NewSourceRef(valueobjects.SourceTypeNews, "news-1", "")
		require.NoError(t, err)
		require.NoError(t, card.AddLink(entities.LinkKindRecent, ref))
	}
	require.NoError(t, card.AssignIdentity())
	require.NoError(t, f.repo.Save(context.Background(), card))
	card.MarkClean()
	card.MarkEventsAsCommitted()
	return card
}

func TestSuggestionService_GenerateReactions(t *testing.T) {
	f := newServiceFixture(t)
	card := f.seedCard(t, true)

	result, err := f.service.GenerateReactions(context.Background(), "user-1", card.ID().String())
	require.NoError(t, err)

	stage := result.ReactionStage()
	assert.Equal(t, entities.StageSuggested, stage.Phase)
	require.Len(t, stage.Suggestions, 2)
	for _, s := range stage.Suggestions {
		assert.Equal(t, entities.StatusSuggested, s.Status)
		assert.Equal(t, entities.SnippetSourceAI, s.Source)
	}
}

func TestSuggestionService_GenerateReactionsDisabled(t *testing.T) {
	f := newServiceFixture(t)
	f.generator.enabled = false
	card := f.seedCard(t, true)

	_, err := f.service.GenerateReactions(context.Background(), "user-1", card.ID().String())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
}

func TestSuggestionService_GenerateReactionsWithoutNewsLink(t *testing.T) {
	f := newServiceFixture(t)
	card := f.seedCard(t, false)

	_, err := f.service.GenerateReactions(context.Background(), "user-1", card.ID().String())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypePrecondition))
}

func TestSuggestionService_GeneratorFailureKeepsPriorSuggestions(t *testing.T) {
	f := newServiceFixture(t)
	card := f.seedCard(t, true)
	cardID := card.ID().String()

	_, err := f.service.GenerateReactions(context.Background(), "user-1", cardID)
	require.NoError(t, err)

	f.generator.err = errors.New("model overloaded")
	_, err = f.service.GenerateReactions(context.Background(), "user-1", cardID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))

	stored, err := f.repo.GetByID(context.Background(), cardID)
	require.NoError(t, err)
	stage := stored.ReactionStage()
	assert.Equal(t, entities.StageFailed, stage.Phase)
	assert.Len(t, stage.Suggestions, 2, "earlier suggestions survive the failure")
}

func TestSuggestionService_SelectConclusionTriggersScriptureStage(t *testing.T) {
	f := newServiceFixture(t)
	card := f.seedCard(t, true)
	cardID := card.ID().String()
	ctx := context.Background()

	_, err := f.service.GenerateReactions(ctx, "user-1", cardID)
	require.NoError(t, err)

	stored, err := f.repo.GetByID(ctx, cardID)
	require.NoError(t, err)
	require.NoError(t, stored.SelectReactionSuggestion(stored.ReactionStage().Suggestions[0].ID))
	require.NoError(t, f.repo.Save(ctx, stored))

	result, err := f.service.GenerateConclusions(ctx, "user-1", cardID)
	require.NoError(t, err)
	candidates := result.ConclusionStage().Candidates
	require.Len(t, candidates, 2)

	result, err = f.service.SelectConclusion(ctx, "user-1", cardID, candidates[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "돈은 수단이지 목적이 아니다.", result.Conclusion())

	// inline follow-up already ran the scripture stage
	stored, err = f.repo.GetByID(ctx, cardID)
	require.NoError(t, err)
	stage := stored.ScriptureStage()
	assert.Equal(t, entities.StageSuggested, stage.Phase)
	require.Len(t, stage.Candidates, 1)
	assert.Equal(t, "ref-1", stage.Candidates[0].ReflectionID)
}

func TestSuggestionService_PinScriptureResolvesParentPath(t *testing.T) {
	f := newServiceFixture(t)
	card := f.seedCard(t, true)
	cardID := card.ID().String()
	ctx := context.Background()

	_, err := f.service.GenerateReactions(ctx, "user-1", cardID)
	require.NoError(t, err)

	stored, err := f.repo.GetByID(ctx, cardID)
	require.NoError(t, err)
	require.NoError(t, stored.SelectReactionSuggestion(stored.ReactionStage().Suggestions[0].ID))
	require.NoError(t, f.repo.Save(ctx, stored))

	_, err = f.service.GenerateConclusions(ctx, "user-1", cardID)
	require.NoError(t, err)
	stored, _ = f.repo.GetByID(ctx, cardID)
	require.NoError(t, err)
	candidateID := stored.ConclusionStage().Candidates[0].ID

	result, err := f.service.SelectConclusion(ctx, "user-1", cardID, candidateID)
	require.NoError(t, err)
	require.Equal(t, entities.StageSuggested, result.ScriptureStage().Phase)

	result, err = f.service.PinScripture(ctx, "user-1", cardID, "ref-1")
	require.NoError(t, err)

	link, ok := result.FirstLink(entities.LinkKindScripture, valueobjects.SourceTypeReflection)
	require.True(t, ok)
	assert.Equal(t, "ref-1", link.Ref.ID())
	assert.Equal(t, "2026/08", link.Ref.Path())
	assert.True(t, link.Pinned)
	assert.Equal(t, 1.0, link.Confidence)
	assert.Empty(t, result.ScriptureStage().Candidates, "pinned suggestion is consumed")
}

func TestSuggestionService_ReflectionPoolIsCached(t *testing.T) {
	f := newServiceFixture(t)
	card := f.seedCard(t, true)
	cardID := card.ID().String()
	ctx := context.Background()

	_, err := f.service.GenerateReactions(ctx, "user-1", cardID)
	require.NoError(t, err)

	stored, err := f.repo.GetByID(ctx, cardID)
	require.NoError(t, err)
	require.NoError(t, stored.SelectReactionSuggestion(stored.ReactionStage().Suggestions[0].ID))
	require.NoError(t, f.repo.Save(ctx, stored))

	_, err = f.service.GenerateConclusions(ctx, "user-1", cardID)
	require.NoError(t, err)
	stored, _ = f.repo.GetByID(ctx, cardID)
	candidateID := stored.ConclusionStage().Candidates[0].ID

	_, err = f.service.SelectConclusion(ctx, "user-1", cardID, candidateID)
	require.NoError(t, err)
	require.Equal(t, 1, f.sources.listCalls)

	// pinning goes back to the pool for the parent path; cache absorbs it
	_, err = f.service.PinScripture(ctx, "user-1", cardID, "ref-1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.sources.listCalls)
}

func TestSuggestionService_OtherUsersCardReadsAsNotFound(t *testing.T) {
	f := newServiceFixture(t)
	card := f.seedCard(t, true)

	_, err := f.service.GenerateReactions(context.Background(), "user-2", card.ID().String())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
}
