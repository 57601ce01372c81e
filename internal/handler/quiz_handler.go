package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/preptly/cbt-gateway/internal/middleware"
	"github.com/preptly/cbt-gateway/internal/model"
	"github.com/preptly/cbt-gateway/internal/response"
	"github.com/preptly/cbt-gateway/internal/session"
	"github.com/preptly/cbt-gateway/internal/validator"
)

// QuizHandler exposes the exam session lifecycle over HTTP. Every
// mutating endpoint responds with the fresh session snapshot so the
// client never has to re-poll after an action.
type QuizHandler struct {
	manager *session.Manager
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(manager *session.Manager) *QuizHandler {
	return &QuizHandler{manager: manager}
}

// Start godoc
// POST /api/v1/quiz/start
// Bootstraps a new exam session for the selected subjects.
func (h *QuizHandler) Start(c *gin.Context) {
	var req model.StartQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sel := session.Selection{
		Subjects: req.Subjects,
		Year:     req.Year,
		Kind:     session.KindFromFlag(req.Competition),
	}

	ctrl, err := h.manager.Start(c.Request.Context(), middleware.GetUserID(c), middleware.TokenSource(c), sel)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusCreated, ctrl.Snapshot())
}

// State godoc
// GET /api/v1/quiz/state
// Returns the full render-ready snapshot of the active session.
func (h *QuizHandler) State(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// Answer godoc
// POST /api/v1/quiz/answer
// Selects an option for a question of the active subject.
func (h *QuizHandler) Answer(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := ctrl.SelectAnswer(c.Request.Context(), req.QuestionID, req.Option); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// Next godoc
// POST /api/v1/quiz/next
func (h *QuizHandler) Next(c *gin.Context) {
	h.navigate(c, func(ctrl *session.Controller) error { return ctrl.Next() })
}

// Prev godoc
// POST /api/v1/quiz/prev
func (h *QuizHandler) Prev(c *gin.Context) {
	h.navigate(c, func(ctrl *session.Controller) error { return ctrl.Prev() })
}

// Jump godoc
// POST /api/v1/quiz/jump
// Navigates straight to a 1-based question index from the grid.
func (h *QuizHandler) Jump(c *gin.Context) {
	var req model.JumpRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.navigate(c, func(ctrl *session.Controller) error { return ctrl.Jump(req.Index) })
}

// Subject godoc
// POST /api/v1/quiz/subject
// Switches the active subject, keeping each subject's position.
func (h *QuizHandler) Subject(c *gin.Context) {
	var req model.SubjectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.navigate(c, func(ctrl *session.Controller) error { return ctrl.SwitchSubject(req.Subject) })
}

// Key godoc
// POST /api/v1/quiz/key
// Routes a keyboard shortcut (n, p, a-e) through the session.
func (h *QuizHandler) Key(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var req model.KeyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := ctrl.Key(c.Request.Context(), req.Key); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// Submit godoc
// POST /api/v1/quiz/submit
// Manually finalizes the session. On upstream failure the session
// returns to in-progress with every answer intact.
func (h *QuizHandler) Submit(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	if err := ctrl.Submit(c.Request.Context()); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// Review godoc
// POST /api/v1/quiz/review
// Switches a completed session into read-only review mode.
func (h *QuizHandler) Review(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	if err := ctrl.EnterReview(); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// Result godoc
// GET /api/v1/quiz/result
// Returns the final scores of a completed session.
func (h *QuizHandler) Result(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	result, err := ctrl.Result()
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"result":     result,
		"max_score":  result.MaxScore(),
		"percentage": result.Percentage(),
	})
}

// Rewrite godoc
// POST /api/v1/quiz/rewrite
// Starts a fresh attempt with the same selection and a full clock.
func (h *QuizHandler) Rewrite(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	if err := ctrl.Rewrite(c.Request.Context()); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// Reset godoc
// POST /api/v1/quiz/reset
// Abandons the session and clears every persisted answer.
func (h *QuizHandler) Reset(c *gin.Context) {
	userID := middleware.GetUserID(c)
	ctrl, ok := h.manager.Get(userID, middleware.TokenSource(c))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNoSession)
		return
	}

	if err := ctrl.Abandon(c.Request.Context()); err != nil {
		failSession(c, err)
		return
	}
	h.manager.Remove(userID)
	response.Success(c, http.StatusOK, gin.H{"status": "reset"})
}

func (h *QuizHandler) controller(c *gin.Context) (*session.Controller, bool) {
	ctrl, ok := h.manager.Get(middleware.GetUserID(c), middleware.TokenSource(c))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNoSession)
		return nil, false
	}
	return ctrl, true
}

func (h *QuizHandler) navigate(c *gin.Context, op func(*session.Controller) error) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	if err := op(ctrl); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// failSession maps session sentinels onto HTTP statuses and error codes.
func failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrEmptySubjects):
		response.Fail(c, http.StatusBadRequest, response.ErrNoSubjects)
	case errors.Is(err, session.ErrSubjectCount):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrSubjectLimit, err.Error())
	case errors.Is(err, session.ErrYearRequired):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, err.Error())
	case errors.Is(err, session.ErrUnknownSubject):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownSubject)
	case errors.Is(err, session.ErrNoQuestions):
		response.Fail(c, http.StatusNotFound, response.ErrNoQuestions)
	case errors.Is(err, session.ErrSubmitInFlight):
		response.Fail(c, http.StatusConflict, response.ErrSubmitInFlight)
	case errors.Is(err, session.ErrNotInProgress),
		errors.Is(err, session.ErrNotCompleted),
		errors.Is(err, session.ErrNoCorrections):
		response.Fail(c, http.StatusConflict, response.ErrSessionState)
	case errors.Is(err, session.ErrBootstrap):
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrBootstrapFailed, err.Error())
	case errors.Is(err, session.ErrFetch):
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrQuestionsFetch, err.Error())
	case errors.Is(err, session.ErrSubmit):
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrSubmission, err.Error())
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
