package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/akselna/utveksle.no-sub001/config"
	"github.com/akselna/utveksle.no-sub001/internal/api/handler"
	"github.com/akselna/utveksle.no-sub001/internal/api/middleware"
	"github.com/akselna/utveksle.no-sub001/internal/model"
	"github.com/akselna/utveksle.no-sub001/pkg/jwt"
	"github.com/akselna/utveksle.no-sub001/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：此时不限流、不检查 Token 黑名单
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	health *handler.HealthHandler,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if cfg.Trace.Enabled {
		r.Use(otelgin.Middleware(cfg.Trace.ServiceName))
	}
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", health.Health)

	loginLimit := middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, time.Minute, logger)
	optionalAuth := middleware.OptionalAuth(jwtMgr, rdb)
	requireAuth := middleware.JWTAuth(jwtMgr, rdb)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块
		auth := v1.Group("/auth")
		{
			auth.POST("/register", loginLimit, h.Auth.Register)
			auth.POST("/login", loginLimit, h.Auth.Login)
			auth.POST("/logout", requireAuth, h.Auth.Logout)
			auth.GET("/me", requireAuth, h.Auth.GetCurrentUser)
		}

		// 课程库（匿名可检索已审核记录）
		courses := v1.Group("/courses")
		{
			courses.GET("", optionalAuth, h.Course.SearchCourses)
			courses.GET("/filters", h.Course.GetFilterOptions)
			courses.GET("/:id", optionalAuth, h.Course.GetCourse)
			courses.POST("", requireAuth, h.Course.CreateCourse)
		}

		// 管理后台
		admin := v1.Group("/admin")
		admin.Use(requireAuth, middleware.RoleAuth(model.RoleAdmin))
		{
			adminCourses := admin.Group("/courses")
			{
				adminCourses.GET("/pending", h.Course.ListPending)
				adminCourses.GET("/export", h.Export.ExportCourses)
				adminCourses.PUT("/:id", h.Course.UpdateCourse)
				adminCourses.POST("/:id/approve", h.Course.ApproveCourse)
				adminCourses.DELETE("/:id", h.Course.DeleteCourse)
			}

			admin.PUT("/users/role", h.User.AssignRole)
		}
	}

	return r
}
