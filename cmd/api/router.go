package main

import (
	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/streamtube/internal/auth"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/config"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/middleware"
)

func setupRouter(api *API, cfg *config.Config, tokens *auth.TokenService) *gin.Engine {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	if cfg.Tracing.Enabled {
		router.Use(middleware.Tracing())
	}

	limiter := middleware.NewRateLimiter(10, 20)
	router.Use(middleware.RateLimit(limiter))

	// Health check
	router.GET("/health", api.healthCheck)

	// API routes
	users := router.Group("/api/v1/users")
	{
		users.POST("/register", api.register)
		users.POST("/login", api.login)
		users.POST("/refresh-token", api.refreshToken)

		secured := users.Group("")
		secured.Use(middleware.JWTAuth(tokens))
		{
			secured.POST("/logout", api.logout)
			secured.POST("/change-password", api.changePassword)
			secured.GET("/current-user", api.currentUser)
			secured.PATCH("/update-account", api.updateAccount)
			secured.PATCH("/avatar", api.updateAvatar)
			secured.PATCH("/cover-image", api.updateCoverImage)
			secured.GET("/history", api.watchHistory)
			secured.POST("/history/:videoId", api.recordWatch)
			secured.POST("/c/:username/subscribe", api.toggleSubscription)
		}

		// Channel profiles are public; a logged-in viewer gets their
		// subscription state resolved.
		users.GET("/c/:username", middleware.OptionalAuth(tokens), api.channelProfile)
	}

	return router
}
