package app

import (
	"database/sql"
	"os"
	"time"

	"go-hrms/internal/attendance"
	"go-hrms/internal/geolocation"
	"go-hrms/internal/identity"
	"go-hrms/internal/leave"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/notification"
	"go-hrms/internal/rbac"
	"go-hrms/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	identityRepo := identity.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	rbacService, err := rbac.NewService()
	if err != nil {
		return err
	}

	// --- Geolocation ---
	var resolver geolocation.Resolver = geolocation.NopResolver{}
	if baseURL := os.Getenv("GEOCODE_BASE_URL"); baseURL != "" {
		resolver = geolocation.NewHTTPResolver(baseURL, rdb)
	}

	reportingTZ := time.UTC
	if tz := os.Getenv("REPORTING_TZ"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			reportingTZ = loc
		}
	}

	// --- Services ---
	identityService := identity.NewService(identityRepo)
	attendanceService := attendance.NewService(db, attendanceRepo, counterRepo, resolver, rdb, reportingTZ)
	leaveService := leave.NewServiceWithOutbox(db, leaveRepo, outboxRepo, rdb, leave.NewRulesFromEnv())
	notificationService := notification.NewService(notificationRepo)

	// --- Handlers ---
	identityHandler := identity.NewHandler(identityService)
	attendanceHandler := attendance.NewHandlerWithRedis(attendanceService, rdb)
	leaveHandler := leave.NewHandlerWithRedis(leaveService, rdb)
	notificationHandler := notification.NewHandler(notificationService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		identity.RegisterRoutes(api, identityHandler)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService, rdb)
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb)
		notification.RegisterRoutes(api, notificationHandler, rbacService)
	}

	return nil
}
