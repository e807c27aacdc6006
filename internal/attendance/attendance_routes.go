package attendance

import (
	"go-hrms/internal/middleware"
	"go-hrms/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service, rdb *redis.Client) {
	attendances := r.Group("/attendances")
	attendances.Use(middleware.AuthMiddleware(), middleware.ExtractUserID())
	{
		attendances.GET("/state", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetState)
		attendances.GET("/summary", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetSummary)
		attendances.GET("", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetHistory)
		attendances.POST("/punch",
			middleware.RBACAuthorize(rbacService, "attendance", "create"),
			middleware.Idempotency(rdb),
			h.Punch,
		)
	}
}
