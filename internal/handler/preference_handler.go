package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/preptly/cbt-gateway/internal/config"
	"github.com/preptly/cbt-gateway/internal/middleware"
	"github.com/preptly/cbt-gateway/internal/model"
	"github.com/preptly/cbt-gateway/internal/response"
	"github.com/preptly/cbt-gateway/internal/store"
	"github.com/preptly/cbt-gateway/internal/validator"
)

// PreferenceHandler stores per-user display preferences so they survive
// reloads and device switches.
type PreferenceHandler struct {
	st store.Store
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(st store.Store) *PreferenceHandler {
	return &PreferenceHandler{st: st}
}

// GetDarkMode godoc
// GET /api/v1/preferences/dark-mode
func (h *PreferenceHandler) GetDarkMode(c *gin.Context) {
	key := config.CacheKey.DarkModeKey(middleware.GetUserID(c))

	value, err := h.st.Get(c.Request.Context(), key)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enabled": value == "1"})
}

// SetDarkMode godoc
// PUT /api/v1/preferences/dark-mode
func (h *PreferenceHandler) SetDarkMode(c *gin.Context) {
	var req model.DarkModeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	value := "0"
	if *req.Enabled {
		value = "1"
	}

	key := config.CacheKey.DarkModeKey(middleware.GetUserID(c))
	if err := h.st.Set(c.Request.Context(), key, value); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enabled": *req.Enabled})
}
