package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/preptly/cbt-gateway/internal/config"
	"github.com/preptly/cbt-gateway/internal/handler"
	"github.com/preptly/cbt-gateway/internal/middleware"
	"github.com/preptly/cbt-gateway/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Quiz        *handler.QuizHandler
	Profile     *handler.ProfileHandler
	Leaderboard *handler.LeaderboardHandler
	Preference  *handler.PreferenceHandler
	Calculator  *handler.CalculatorHandler
	WS          *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1")
	{
		publicAPI.GET("/leaderboard", handlers.Leaderboard.GetLeaderboard)
		publicAPI.POST("/tools/calculate", handlers.Calculator.Calculate)
	}

	// ─── 2. Session Group (Exam API Token) ─────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireToken())
	{
		quiz := api.Group("/quiz")
		{
			quiz.POST("/start", handlers.Quiz.Start)
			quiz.GET("/state", handlers.Quiz.State)
			quiz.POST("/answer", handlers.Quiz.Answer)
			quiz.POST("/next", handlers.Quiz.Next)
			quiz.POST("/prev", handlers.Quiz.Prev)
			quiz.POST("/jump", handlers.Quiz.Jump)
			quiz.POST("/subject", handlers.Quiz.Subject)
			quiz.POST("/key", handlers.Quiz.Key)
			quiz.POST("/submit", handlers.Quiz.Submit)
			quiz.POST("/review", handlers.Quiz.Review)
			quiz.GET("/result", handlers.Quiz.Result)
			quiz.POST("/rewrite", handlers.Quiz.Rewrite)
			quiz.POST("/reset", handlers.Quiz.Reset)
		}

		api.GET("/me", handlers.Profile.GetMe)
		api.GET("/me/attempts", handlers.Profile.GetAttempts)

		api.GET("/preferences/dark-mode", handlers.Preference.GetDarkMode)
		api.PUT("/preferences/dark-mode", handlers.Preference.SetDarkMode)
	}

	// ─── 3. WebSocket Group (Token via query param) ────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireToken())
	{
		ws.GET("/quiz/stream", handlers.WS.SessionStream)
	}

	return router
}
