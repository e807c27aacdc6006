package identity

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	auth := r.Group("/auth")
	{
		// Login is the brute-force target, keep the limit tight.
		auth.POST("/login", middleware.RateLimitByIP(rate.Limit(1), 5), h.Login)
		auth.GET("/me", middleware.AuthMiddleware(), middleware.ExtractUserID(), h.Me)
	}
}
