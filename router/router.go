package router

import (
	"gradebot/config"
	"gradebot/controllers"
	"gradebot/db"
	"gradebot/metrics"
	"gradebot/middleware"
	"gradebot/workers"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Deps are the long-lived components the handlers need.
type Deps struct {
	Grader   *workers.Grader
	Pool     *workers.Pool
	Activity *db.Activity
	Log      logrus.FieldLogger
}

// Initialize wires all routes and middlewares.
// Grading is public (students); the dashboard has no auth either, keep it
// behind the reverse proxy.
func Initialize(r *gin.Engine, cfg config.Configuration, deps Deps) *middleware.RateLimiter {
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst, deps.Log)

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger(deps.Log))
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", workers.SetGraderToContext(deps.Grader, deps.Pool), controllers.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	// Grading (students)
	api.POST("/grade",
		limiter.Handler(),
		workers.SetGraderToContext(deps.Grader, deps.Pool),
		controllers.Grade)

	// Instructor dashboard
	activity := api.Group("/activity")
	activity.Use(db.SetActivityToContext(deps.Activity))
	activity.GET("", controllers.GetActivity)
	activity.GET("/sessions", controllers.GetActivitySessions)
	activity.GET("/hourly", controllers.GetActivityHourly)
	activity.GET("/export", controllers.ExportActivity)
	activity.GET("/:id", controllers.GetActivityByID)

	deps.Log.Info("routes initialized")
	return limiter
}
