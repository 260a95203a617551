// Package router assembles the gin engine and the route table.
package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-period-api/internal/handler"
	"github.com/noah-isme/exam-period-api/internal/middleware"
	"github.com/noah-isme/exam-period-api/internal/models"
	"github.com/noah-isme/exam-period-api/internal/service"
	"github.com/noah-isme/exam-period-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-period-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-period-api/pkg/middleware/requestid"
)

// Options configure the engine.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Auth           middleware.TokenValidator
}

// Handlers are the mounted endpoint groups. Periods and Snapshots are nil
// when no database is configured and their routes are then omitted.
type Handlers struct {
	ExamPeriods *handler.ExamPeriodHandler
	Periods     *handler.PeriodHandler
	Snapshots   *handler.PlanSnapshotHandler
	Exports     *handler.ExportHandler
	System      *handler.MetricsHandler
}

// Setup builds the engine with middleware and routes.
func Setup(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	prefix := "/" + strings.Trim(opts.APIPrefix, "/")
	if prefix == "/" {
		prefix = ""
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics, "/health", "/ready", "/metrics"))
	r.Use(middleware.WithResponseMeta())

	if h.System != nil {
		r.GET("/health", h.System.Health)
		r.GET("/ready", h.System.Ready)
		r.GET("/metrics", h.System.Prometheus)
	}
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(prefix)
	api.Use(middleware.OptionalJWT(opts.Auth))
	admin := []gin.HandlerFunc{middleware.JWT(opts.Auth), middleware.RequireRoles(models.RoleAdmin)}

	if h.System != nil {
		api.GET("/metrics/summary", h.System.Summary)
	}

	if h.ExamPeriods != nil {
		api.GET("/exam-periods", h.ExamPeriods.Get)
		api.GET("/exam-periods/export", h.ExamPeriods.Export)
		api.GET("/holidays/:year", h.ExamPeriods.Holidays)
	}

	if h.Periods != nil {
		api.GET("/periods", h.Periods.List)
		api.PUT("/periods", withAudit(admin, log, "upsert", "semester_period", h.Periods.Upsert)...)
		api.POST("/periods/sync", withAudit(admin, log, "sync", "semester_period", h.Periods.Sync)...)
	}

	if h.Snapshots != nil {
		api.POST("/plan-snapshots", withAudit(admin, log, "create", "plan_snapshot", h.Snapshots.Create)...)
		api.GET("/plan-snapshots", h.Snapshots.List)
		api.GET("/plan-snapshots/:id", h.Snapshots.Get)
	}

	if h.Exports != nil {
		api.POST("/exports", h.Exports.Create)
		api.GET("/exports/download/:token", h.Exports.Download)
		api.GET("/exports/:id", h.Exports.Status)
	}

	return r
}

func withAudit(guards []gin.HandlerFunc, log *zap.Logger, action, resource string, final gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(guards)+2)
	chain = append(chain, guards...)
	chain = append(chain, middleware.Audit(log, action, resource), final)
	return chain
}
