package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/cppla/membership/config"
	"github.com/cppla/membership/controllers"
	"github.com/cppla/membership/middleware"
	"github.com/cppla/membership/repository"
	"github.com/cppla/membership/services"
	"github.com/cppla/membership/utils"
)

// SetupRouter wires routes, middlewares, and controllers. rc may be nil to run without a cache.
func SetupRouter(cfg config.AppConfig, store repository.MembershipStore, rc *redis.Client) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	// access log goes to its own rolling file
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		utils.Sugar.Warnf("gin access log disabled path=%s err=%v", cfg.GinPath, err)
		r.Use(utils.RecoveryWithZap(utils.Logger, false))
	}

	ownerHeader := cfg.OwnerHeader
	if ownerHeader == "" {
		ownerHeader = "X-USER-ID"
	}
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", ownerHeader, utils.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", utils.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	points := services.NewRatePointCalculator(cfg.PointRate)
	service := services.NewMembershipService(store, points, utils.Logger)
	cache := utils.NewCache(rc, time.Duration(cfg.CacheTTLSeconds)*time.Second)

	membershipController := controllers.NewMembershipController(service, cache)
	configController := controllers.NewConfigController(points.Rate())

	api := r.Group("/api/v1")
	api.GET("/config/points", configController.GetPoints)

	protected := api.Group("")
	protected.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute), middleware.OwnerRequired(ownerHeader, cfg.JWTSecret))
	protected.POST("/memberships", membershipController.AddMembership)
	protected.GET("/memberships", membershipController.ListMemberships)
	protected.GET("/memberships/:id", membershipController.GetMembership)
	protected.DELETE("/memberships/:id", membershipController.RemoveMembership)
	protected.POST("/memberships/:id/accumulate", membershipController.AccumulatePoint)

	r.NoRoute(func(ctx *gin.Context) {
		utils.ErrorKind(ctx, http.StatusNotFound, 40400, "ROUTE_NOT_FOUND", "api route not found")
	})

	return r
}
