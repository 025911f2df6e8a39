package http

import (
	"github.com/gin-gonic/gin"

	"github.com/layer-3/faucet/ports"
	"github.com/layer-3/faucet/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(auth *service.AuthService, faucet *service.FaucetService, tokenizer ports.Tokenizer, limiter ports.RateLimiter) *gin.Engine {
	router := gin.Default()

	handlers := NewFaucetHandlers(auth, faucet)

	// Auth routes
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/message", RateLimitMiddleware(limiter, ports.ScopeChallenge), handlers.Message)
		authGroup.POST("/signin", RateLimitMiddleware(limiter, ports.ScopeSignIn), handlers.SignIn)
	}

	// Protected faucet routes
	faucetGroup := router.Group("/faucet")
	faucetGroup.Use(AuthMiddleware(tokenizer))
	{
		faucetGroup.GET("/status/:address", handlers.Status)
		faucetGroup.POST("/claim", RateLimitMiddleware(limiter, ports.ScopeClaim), handlers.Claim)
	}

	return router
}
