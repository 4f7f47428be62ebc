package handlers

import (
	"net/http"
	"strconv"

	"github.com/eunyuson/GRACE-sub002/application/queries"
	querybus "github.com/eunyuson/GRACE-sub002/application/queries/bus"
	"github.com/eunyuson/GRACE-sub002/pkg/auth"
	"github.com/eunyuson/GRACE-sub002/pkg/common"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"

	"go.uber.org/zap"
)

// QuestionHandler handles question grouping requests
type QuestionHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(queryBus *querybus.QueryBus, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{
		queryBus: queryBus,
		errors:   errors,
		logger:   logger,
	}
}

// GroupQuestions handles GET /cards/group?question=...&threshold=...
func (h *QuestionHandler) GroupQuestions(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	question := r.URL.Query().Get("question")
	threshold := 0.0
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.errors.Handle(w, r, pkgerrors.NewValidationError("threshold must be a number"))
			return
		}
		threshold = parsed
	}

	result, err := h.queryBus.Ask(r.Context(), &queries.GroupQuestionsQuery{
		UserID:    userCtx.UserID,
		Question:  question,
		Threshold: threshold,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
