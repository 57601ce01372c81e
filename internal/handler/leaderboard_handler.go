package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/preptly/cbt-gateway/internal/history"
	"github.com/preptly/cbt-gateway/internal/response"
)

// LeaderboardHandler serves the ranked score list for competition mode.
type LeaderboardHandler struct {
	repo *history.Repository
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(repo *history.Repository) *LeaderboardHandler {
	return &LeaderboardHandler{repo: repo}
}

// GetLeaderboard godoc
// GET /api/v1/leaderboard?limit=20
// Best archived attempt per user, ranked by total score.
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, err := h.repo.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if entries == nil {
		entries = []history.LeaderboardEntry{}
	}
	response.Success(c, http.StatusOK, gin.H{"leaderboard": entries})
}
