package services

import (
	"context"
	"errors"
	"testing"

	"github.com/eunyuson/GRACE-sub002/domain/core/entities"
	"github.com/eunyuson/GRACE-sub002/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type flakyCardRepo struct {
	failures int
	saves    int
}

func (r *flakyCardRepo) Save(ctx context.Context, card *entities.ConceptCard) error {
	r.saves++
	if r.failures > 0 {
		r.failures--
		return errors.New("store unavailable")
	}
	return nil
}

func (r *flakyCardRepo) GetByID(ctx context.Context, id string) (*entities.ConceptCard, error) {
	return nil, errors.New("not implemented")
}

func (r *flakyCardRepo) GetByUserID(ctx context.Context, userID string) ([]*entities.ConceptCard, error) {
	return nil, errors.New("not implemented")
}

func newOutboxCard(t *testing.T) *entities.ConceptCard {
	t.Helper()
	question, err := valueobjects.NewQuestion("돈이란 무엇인가?")
	require.NoError(t, err)
	card, err := entities.NewConceptCard("user-1", "tester", "돈", question)
	require.NoError(t, err)
	require.NoError(t, card.AssignIdentity())
	return card
}

func TestCardOutbox_SaveSuccessSettles(t *testing.T) {
	repo := &flakyCardRepo{}
	outbox := NewCardOutbox(repo, zap.NewNop())

	card := newOutboxCard(t)
	assert.True(t, card.IsDirty())

	require.NoError(t, outbox.Save(context.Background(), card))

	assert.False(t, card.IsDirty())
	assert.Empty(t, card.GetUncommittedEvents())
	assert.Equal(t, 0, outbox.PendingCount())
}

func TestCardOutbox_SaveFailureKeepsMutationAndQueues(t *testing.T) {
	repo := &flakyCardRepo{failures: 1}
	outbox := NewCardOutbox(repo, zap.NewNop())

	card := newOutboxCard(t)
	require.NoError(t, outbox.Save(context.Background(), card))

	// mutation survives, write is pending
	assert.True(t, card.IsDirty())
	assert.Equal(t, 1, outbox.PendingCount())
}

func TestCardOutbox_RetrySettlesAfterRecovery(t *testing.T) {
	repo := &flakyCardRepo{failures: 1}
	outbox := NewCardOutbox(repo, zap.NewNop())
	outbox.baseBackoff = 0

	card := newOutboxCard(t)
	require.NoError(t, outbox.Save(context.Background(), card))
	require.Equal(t, 1, outbox.PendingCount())

	outbox.RetryPending(context.Background())

	assert.False(t, card.IsDirty())
	assert.Equal(t, 0, outbox.PendingCount())
	assert.Equal(t, 2, repo.saves)
}

func TestCardOutbox_AbandonsAfterMaxAttempts(t *testing.T) {
	repo := &flakyCardRepo{failures: 100}
	outbox := NewCardOutbox(repo, zap.NewNop())
	outbox.baseBackoff = 0
	outbox.maxAttempts = 3

	card := newOutboxCard(t)
	require.NoError(t, outbox.Save(context.Background(), card))

	for i := 0; i < 5; i++ {
		outbox.RetryPending(context.Background())
	}

	assert.Equal(t, 0, outbox.PendingCount())
	assert.True(t, card.IsDirty())
}
