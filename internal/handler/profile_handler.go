package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/preptly/cbt-gateway/internal/gateway"
	"github.com/preptly/cbt-gateway/internal/history"
	"github.com/preptly/cbt-gateway/internal/middleware"
	"github.com/preptly/cbt-gateway/internal/response"
)

// ProfileHandler serves the caller's identity and attempt history.
type ProfileHandler struct {
	gw   *gateway.Client
	repo *history.Repository
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(gw *gateway.Client, repo *history.Repository) *ProfileHandler {
	return &ProfileHandler{gw: gw, repo: repo}
}

// GetMe godoc
// GET /api/v1/me
// Proxies the profile of the authenticated student from the exam API.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	profile, err := h.gw.GetMe(c.Request.Context(), middleware.TokenSource(c))
	if err != nil {
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrInternal, err.Error())
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": profile})
}

// GetAttempts godoc
// GET /api/v1/me/attempts
// Returns the caller's archived attempts, newest first.
func (h *ProfileHandler) GetAttempts(c *gin.Context) {
	attempts, err := h.repo.RecentByUser(c.Request.Context(), middleware.GetUserID(c), 10)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if attempts == nil {
		attempts = []history.Attempt{}
	}
	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}
