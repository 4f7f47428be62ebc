package queries

import (
	"context"
	"testing"
	"time"

	"github.com/eunyuson/GRACE-sub002/application/ports"
	"github.com/eunyuson/GRACE-sub002/domain/core/entities"
	"github.com/eunyuson/GRACE-sub002/domain/core/valueobjects"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCardRepo struct {
	cards []*entities.ConceptCard
}

func (r *stubCardRepo) Save(ctx context.Context, card *entities.ConceptCard) error {
	r.cards = append(r.cards, card)
	return nil
}

func (r *stubCardRepo) GetByID(ctx context.Context, id string) (*entities.ConceptCard, error) {
	for _, c := range r.cards {
		if c.ID().String() == id {
			return c, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("card not found: " + id)
}

func (r *stubCardRepo) GetByUserID(ctx context.Context, userID string) ([]*entities.ConceptCard, error) {
	var out []*entities.ConceptCard
	for _, c := range r.cards {
		if c.UserID() == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

type stubSourceReader struct {
	news        map[string]*ports.NewsItem
	reflections map[string]*ports.Reflection
}

func (s *stubSourceReader) GetNewsItem(ctx context.Context, id string) (*ports.NewsItem, error) {
	if item, ok := s.news[id]; ok {
		return item, nil
	}
	return nil, pkgerrors.NewNotFoundError("news item not found: " + id)
}

func (s *stubSourceReader) GetReflection(ctx context.Context, id, parentPath string) (*ports.Reflection, error) {
	if r, ok := s.reflections[id]; ok {
		return r, nil
	}
	return nil, pkgerrors.NewNotFoundError("reflection not found: " + id)
}

func (s *stubSourceReader) ListReflections(ctx context.Context, userID string) ([]ports.Reflection, error) {
	var out []ports.Reflection
	for _, r := range s.reflections {
		out = append(out, *r)
	}
	return out, nil
}

func buildCard(t *testing.T, userID, concept, questionText string) *entities.ConceptCard {
	t.Helper()
	question, err := valueobjects.NewQuestion(questionText)
	require.NoError(t, err)
	card, err := entities.NewConceptCard(userID, "tester", concept, question)
	require.NoError(t, err)
	require.NoError(t, card.AssignIdentity())
	return card
}

func TestGetCardHandler_ProjectsBridgeFromSlots(t *testing.T) {
	repo := &stubCardRepo{}
	card := buildCard(t, "user-1", "돈", "돈은 우리에게 무엇인가?")

	newsRef, err := valueobjects.NewSourceRef(valueobjects.SourceTypeNews, "news-1", "")
	require.NoError(t, err)
	require.NoError(t, card.AddLinkWithSlot(entities.LinkKindRecent, newsRef, entities.SlotWorldly))

	reflectionRef, err := valueobjects.NewSourceRef(valueobjects.SourceTypeReflection, "ref-1", "2026/08")
	require.NoError(t, err)
	require.NoError(t, card.AddLinkWithSlot(entities.LinkKindScripture, reflectionRef, entities.SlotCorrected))

	require.NoError(t, repo.Save(context.Background(), card))

	handler := NewGetCardHandler(repo)
	view, err := handler.Handle(context.Background(), &GetCardQuery{UserID: "user-1", CardID: card.ID().String()})
	require.NoError(t, err)

	require.NotNil(t, view.Bridge)
	require.Len(t, view.Bridge.AEvidence, 1)
	require.Len(t, view.Bridge.BEvidence, 1)
	assert.Equal(t, "news-1", view.Bridge.AEvidence[0].SourceID)
	assert.Equal(t, "ref-1", view.Bridge.BEvidence[0].SourceID)

	assert.Len(t, view.Sequence.Recent, 1)
	assert.Len(t, view.Sequence.ScriptureSupport, 1)
	assert.Nil(t, view.Sequence.AIReactionSuggestions, "idle stages stay out of the view")
}

func TestGetCardHandler_OtherUsersCardNotFound(t *testing.T) {
	repo := &stubCardRepo{}
	card := buildCard(t, "user-1", "돈", "돈은 우리에게 무엇인가?")
	require.NoError(t, repo.Save(context.Background(), card))

	handler := NewGetCardHandler(repo)
	_, err := handler.Handle(context.Background(), &GetCardQuery{UserID: "user-2", CardID: card.ID().String()})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
}

func TestListCardsHandler_PagesNewestFirst(t *testing.T) {
	repo := &stubCardRepo{}
	for _, q := range []string{"첫 번째 질문은?", "두 번째 질문은?", "세 번째 질문은?"} {
		card := buildCard(t, "user-1", "개념", q)
		require.NoError(t, repo.Save(context.Background(), card))
		time.Sleep(2 * time.Millisecond)
	}

	handler := NewListCardsHandler(repo)
	result, err := handler.Handle(context.Background(), &ListCardsQuery{UserID: "user-1", Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.True(t, result.HasMore)
	require.Len(t, result.Cards, 2)
	assert.Equal(t, "세 번째 질문은?", result.Cards[0].Question)

	result, err = handler.Handle(context.Background(), &ListCardsQuery{UserID: "user-1", Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.False(t, result.HasMore)
	require.Len(t, result.Cards, 1)
	assert.Equal(t, "첫 번째 질문은?", result.Cards[0].Question)
}

func TestGroupQuestionsHandler_RanksSimilarQuestions(t *testing.T) {
	repo := &stubCardRepo{}
	similar := buildCard(t, "user-1", "뉴스", "이 뉴스는 어떤 질문을 우리에게 던지나요?")
	unrelated := buildCard(t, "user-1", "다른", "완전히 관련 없는 주제입니다")
	require.NoError(t, repo.Save(context.Background(), similar))
	require.NoError(t, repo.Save(context.Background(), unrelated))

	handler := NewGroupQuestionsHandler(repo)
	matches, err := handler.Handle(context.Background(), &GroupQuestionsQuery{
		UserID:   "user-1",
		Question: "이 뉴스는 어떤 질문을 우리에게 던지는가?",
	})
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, similar.ID().String(), matches[0].CardID)
	assert.Greater(t, matches[0].Score, 0.3)
}

func TestResolveCardHandler_DropsMissingReferences(t *testing.T) {
	repo := &stubCardRepo{}
	card := buildCard(t, "user-1", "돈", "돈은 우리에게 무엇인가?")

	liveRef, err := valueobjects.NewSourceRef(valueobjects.SourceTypeNews, "news-1", "")
	require.NoError(t, err)
	require.NoError(t, card.AddLink(entities.LinkKindRecent, liveRef))

	deadRef, err := valueobjects.NewSourceRef(valueobjects.SourceTypeNews, "news-gone", "")
	require.NoError(t, err)
	require.NoError(t, card.AddLink(entities.LinkKindRecent, deadRef))

	scriptureRef, err := valueobjects.NewSourceRef(valueobjects.SourceTypeReflection, "ref-1", "2026/08")
	require.NoError(t, err)
	require.NoError(t, card.AddLink(entities.LinkKindScripture, scriptureRef))

	require.NoError(t, repo.Save(context.Background(), card))

	sources := &stubSourceReader{
		news: map[string]*ports.NewsItem{
			"news-1": {ID: "news-1", Title: "금리 인상", Body: "기준 금리가 다시 올랐다."},
		},
		reflections: map[string]*ports.Reflection{
			"ref-1": {ID: "ref-1", Content: "염려하지 말라", BibleRef: "마 6:34", ParentTitle: "8월 묵상", ParentPath: "2026/08"},
		},
	}

	handler := NewResolveCardHandler(repo, sources, zap.NewNop())
	view, err := handler.Handle(context.Background(), &ResolveCardQuery{UserID: "user-1", CardID: card.ID().String()})
	require.NoError(t, err)

	require.Len(t, view.Recent, 1, "missing news reference drops silently")
	assert.Equal(t, "news-1", view.Recent[0].SourceID)
	require.Len(t, view.Scripture, 1)
	assert.Equal(t, "마 6:34", view.Scripture[0].BibleRef)
	// the stored card still carries both recent links
	assert.Len(t, view.Card.Sequence.Recent, 2)
}
