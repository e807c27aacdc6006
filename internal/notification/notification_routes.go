package notification

import (
	"go-hrms/internal/middleware"
	"go-hrms/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(), middleware.ExtractUserID())
	{
		notifications.GET("", middleware.RBACAuthorize(rbacService, "notification", "read"), h.GetAll)
		notifications.POST("/:id/read", middleware.RBACAuthorize(rbacService, "notification", "update"), h.MarkRead)
	}
}
