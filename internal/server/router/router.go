package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apollostores/poplanner/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.PlanHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	{
		api.POST("/source", handler.UploadSource)
		api.POST("/source/url", handler.ImportSourceURL)
		api.GET("/plan", handler.GetPlan)
		api.GET("/plan/export", handler.ExportPlan)
		api.GET("/plan/deficit", handler.GetDeficits)
		api.PUT("/recipient", handler.SetRecipient)
		api.GET("/recipient", handler.GetRecipient)
		api.POST("/dispatch", handler.TriggerDispatch)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
