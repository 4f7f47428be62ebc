package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eunyuson/GRACE-sub002/application/commands/bus"
	"github.com/eunyuson/GRACE-sub002/application/queries"
	querybus "github.com/eunyuson/GRACE-sub002/application/queries/bus"
	"github.com/eunyuson/GRACE-sub002/pkg/auth"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCardHandlerFixture(t *testing.T, qb *querybus.QueryBus) *CardHandler {
	t.Helper()
	return NewCardHandler(
		bus.NewCommandBus(),
		qb,
		pkgerrors.NewErrorHandler(zap.NewNop(), false),
		zap.NewNop(),
	)
}

func authedRequest(method, target string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{UserID: "user-1"})
	return r.WithContext(ctx)
}

func TestCardHandler_ListCardsTranslatesPagination(t *testing.T) {
	var captured *queries.ListCardsQuery

	qb := querybus.NewQueryBus()
	require.NoError(t, qb.Register(&queries.ListCardsQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, query querybus.Query) (interface{}, error) {
			captured = query.(*queries.ListCardsQuery)
			return &queries.ListCardsResult{Cards: []queries.CardSummary{}, Total: 0}, nil
		})))

	handler := newCardHandlerFixture(t, qb)
	w := httptest.NewRecorder()
	handler.ListCards(w, authedRequest(http.MethodGet, "/cards?page=3&page_size=10"))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-1", captured.UserID)
	assert.Equal(t, 10, captured.Limit)
	assert.Equal(t, 20, captured.Offset, "page 3 of 10 skips the first 20")
}

func TestCardHandler_ListCardsDefaultsToFirstPage(t *testing.T) {
	var captured *queries.ListCardsQuery

	qb := querybus.NewQueryBus()
	require.NoError(t, qb.Register(&queries.ListCardsQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, query querybus.Query) (interface{}, error) {
			captured = query.(*queries.ListCardsQuery)
			return &queries.ListCardsResult{Cards: []queries.CardSummary{}, Total: 0}, nil
		})))

	handler := newCardHandlerFixture(t, qb)
	w := httptest.NewRecorder()
	handler.ListCards(w, authedRequest(http.MethodGet, "/cards"))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, 20, captured.Limit)
	assert.Equal(t, 0, captured.Offset)

	var body struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
}

func TestCardHandler_ListCardsRequiresAuth(t *testing.T) {
	handler := newCardHandlerFixture(t, querybus.NewQueryBus())
	w := httptest.NewRecorder()
	handler.ListCards(w, httptest.NewRequest(http.MethodGet, "/cards", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
