package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

// ContextAddressKey is the gin context key holding the authenticated address.
const ContextAddressKey = "userAddress"

// AuthMiddleware creates middleware that validates bearer session tokens
func AuthMiddleware(tokenizer ports.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		// Check if the Authorization header is present and in correct format
		if len(auth) < 8 || auth[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthenticated",
				"message": core.ErrUnauthenticated.Error(),
			})
			return
		}

		session, err := tokenizer.TokenToSession(auth[7:])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthenticated",
				"message": err.Error(),
			})
			return
		}

		c.Set(ContextAddressKey, session.Address)

		c.Next()
	}
}

// RateLimitMiddleware gates a route behind the per-IP quota of the scope.
// A nil limiter disables the gate.
func RateLimitMiddleware(limiter ports.RateLimiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), scope, c.ClientIP())
		if err != nil {
			c.Next() // fail-open on limiter errors
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "RateLimited",
				"message": core.ErrRateLimited.Error(),
			})
			return
		}

		c.Next()
	}
}
